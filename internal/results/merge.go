package results

import "sort"

// Merge returns the effective entries of one class across its result lists.
//
// Lists are considered in create-time order. The newest Complete or Snapshot
// list is the base; every Delta list published after it replaces the entries
// it carries, keyed by person and race, and appends new ones. Without a base
// list the deltas alone are merged. Deltas never remove entries.
func Merge(lists []List) []Entry {
	sorted := make([]List, len(lists))
	copy(sorted, lists)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreateTime < sorted[j].CreateTime
	})

	start := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Status.Supersedes() {
			start = i
			break
		}
	}

	var merged []Entry
	index := make(map[entryKey]int)
	for _, l := range sorted[start:] {
		for _, e := range l.Entries {
			if i, ok := index[e.key()]; ok {
				merged[i] = e
				continue
			}
			index[e.key()] = len(merged)
			merged = append(merged, e)
		}
	}
	if merged == nil {
		merged = []Entry{}
	}
	return merged
}
