package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)

func TestStepClock_FirstReadingIsStart(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)
	assert.Equal(t, epoch, clock.Now())
}

func TestStepClock_AdvancesByStep(t *testing.T) {
	clock := NewStepClock(epoch, time.Minute)

	clock.Now()
	assert.Equal(t, epoch.Add(time.Minute), clock.Now())
	assert.Equal(t, epoch.Add(2*time.Minute), clock.Now())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, epoch, clock.Now())
}

func TestStepClock_ConcurrentReadingsAreUnique(t *testing.T) {
	clock := NewStepClock(epoch, time.Millisecond)

	const n = 100
	var wg sync.WaitGroup
	readings := make(chan time.Time, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			readings <- clock.Now()
		}()
	}
	wg.Wait()
	close(readings)

	seen := make(map[time.Time]bool)
	for r := range readings {
		require.False(t, seen[r], "duplicate reading %v", r)
		seen[r] = true
	}
	assert.Len(t, seen, n)
}

func TestSequenceIDs(t *testing.T) {
	ids := NewSequenceIDs("")
	assert.Equal(t, "run-0001", ids.NewID())
	assert.Equal(t, "run-0002", ids.NewID())

	custom := NewSequenceIDs("watch")
	assert.Equal(t, "watch-0001", custom.NewID())
}
