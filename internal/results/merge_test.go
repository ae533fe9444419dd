package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/iofimport/internal/iof"
)

func person(id int64, race int, status iof.ResultStatus, t *float64) Entry {
	return Entry{PersonID: id, Race: race, Status: status, Time: t}
}

func TestMerge_SnapshotThenDelta(t *testing.T) {
	lists := []List{
		{Status: iof.ResultListDelta, CreateTime: "2024-04-20T10:30:00.000Z", Entries: []Entry{
			person(2, 1, iof.StatusOK, seconds(2400)),
		}},
		{Status: iof.ResultListSnapshot, CreateTime: "2024-04-20T10:00:00.000Z", Entries: []Entry{
			person(1, 1, iof.StatusOK, seconds(2460)),
			person(2, 1, iof.StatusActive, nil),
		}},
	}

	got := Merge(lists)

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].PersonID)
	assert.Equal(t, iof.StatusOK, got[1].Status, "the delta replaces the running entry")
	assert.Equal(t, 2400.0, *got[1].Time)
}

func TestMerge_LatestSupersedingListWins(t *testing.T) {
	lists := []List{
		{Status: iof.ResultListSnapshot, CreateTime: "2024-04-20T10:00:00.000Z", Entries: []Entry{
			person(1, 1, iof.StatusOK, seconds(2460)),
			person(3, 1, iof.StatusOK, seconds(2999)),
		}},
		{Status: iof.ResultListDelta, CreateTime: "2024-04-20T10:30:00.000Z", Entries: []Entry{
			person(2, 1, iof.StatusOK, seconds(2400)),
		}},
		{Status: iof.ResultListComplete, CreateTime: "2024-04-20T12:00:00.000Z", Entries: []Entry{
			person(1, 1, iof.StatusOK, seconds(2461)),
			person(2, 1, iof.StatusDisqualified, seconds(2400)),
		}},
	}

	got := Merge(lists)

	require.Len(t, got, 2, "entries only in older lists are dropped")
	assert.Equal(t, 2461.0, *got[0].Time)
	assert.Equal(t, iof.StatusDisqualified, got[1].Status)
}

func TestMerge_DeltaBeforeBaseIsIgnored(t *testing.T) {
	lists := []List{
		{Status: iof.ResultListDelta, CreateTime: "2024-04-20T09:00:00.000Z", Entries: []Entry{
			person(9, 1, iof.StatusOK, seconds(1)),
		}},
		{Status: iof.ResultListComplete, CreateTime: "2024-04-20T12:00:00.000Z", Entries: []Entry{
			person(1, 1, iof.StatusOK, seconds(2460)),
		}},
	}

	got := Merge(lists)

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].PersonID)
}

func TestMerge_DeltasOnly(t *testing.T) {
	lists := []List{
		{Status: iof.ResultListDelta, CreateTime: "2024-04-20T10:00:00.000Z", Entries: []Entry{
			person(1, 1, iof.StatusActive, nil),
			person(1, 2, iof.StatusActive, nil),
		}},
		{Status: iof.ResultListDelta, CreateTime: "2024-04-20T11:00:00.000Z", Entries: []Entry{
			person(1, 2, iof.StatusOK, seconds(1800)),
			person(2, 1, iof.StatusOK, seconds(2000)),
		}},
	}

	got := Merge(lists)

	require.Len(t, got, 3)
	assert.Equal(t, iof.StatusActive, got[0].Status, "race 1 is keyed separately from race 2")
	assert.Equal(t, iof.StatusOK, got[1].Status)
	assert.Equal(t, 2, got[1].Race)
	assert.Equal(t, int64(2), got[2].PersonID)
}

func TestMerge_Empty(t *testing.T) {
	got := Merge(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
