package results

import (
	"math"
	"sort"

	"github.com/roach88/iofimport/internal/iof"
)

// ticks converts a time to whole resolution steps. The epsilon keeps values
// like 24.3 at resolution 0.1 from truncating to 242.
func ticks(t, resolution float64) int64 {
	return int64(math.Floor(t/resolution + 1e-9))
}

// Ranked reports whether an entry competes for a position.
func Ranked(e Entry) bool {
	return e.Status == iof.StatusOK && e.Time != nil
}

// Rank returns the entries of one class and race with positions and time
// behind recomputed. The input is not modified.
//
// Default mode orders placed entries by time, then unplaced entries in input
// order. Unordered assigns positions but keeps input order. UnorderedNoTimes
// clears positions and time behind.
func Rank(entries []Entry, mode iof.ResultListMode, resolution float64) []Entry {
	if resolution <= 0 {
		resolution = 1
	}

	out := make([]Entry, len(entries))
	copy(out, entries)
	for i := range out {
		out[i].Position = nil
		out[i].TimeBehind = nil
	}
	if mode == iof.ResultListModeUnorderedNoTimes {
		return out
	}

	var placed []int
	for i, e := range out {
		if Ranked(e) {
			placed = append(placed, i)
		}
	}
	sort.SliceStable(placed, func(a, b int) bool {
		ta := ticks(*out[placed[a]].Time, resolution)
		tb := ticks(*out[placed[b]].Time, resolution)
		if ta != tb {
			return ta < tb
		}
		return out[placed[a]].Name < out[placed[b]].Name
	})

	var winner int64
	for n, i := range placed {
		t := ticks(*out[i].Time, resolution)
		pos := n + 1
		if n > 0 {
			prev := out[placed[n-1]]
			if ticks(*prev.Time, resolution) == t {
				pos = *prev.Position
			}
		} else {
			winner = t
		}
		behind := roundTime(float64(t-winner) * resolution)
		out[i].Position = &pos
		out[i].TimeBehind = &behind
	}

	if mode == iof.ResultListModeUnordered {
		return out
	}

	ordered := make([]Entry, 0, len(out))
	seen := make([]bool, len(out))
	for _, i := range placed {
		ordered = append(ordered, out[i])
		seen[i] = true
	}
	for i, e := range out {
		if !seen[i] {
			ordered = append(ordered, e)
		}
	}
	return ordered
}

// roundTime drops floating point noise below a microsecond.
func roundTime(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
