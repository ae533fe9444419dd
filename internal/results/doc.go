// Package results computes standings from imported result lists.
//
// The functions in this package are pure: they take entries and return new
// entries, and never touch the store. Standings wires them to a store reader.
//
// # Ranking
//
// Rank orders the entries of one class and race. Only entries with status OK
// and a time are placed. Times are truncated to the class time resolution
// before comparison, so with a resolution of 1 second 2400.4 and 2400.9 tie.
// Tied entries share a position and the next position is skipped:
//
//	2400 → 1
//	2460 → 2
//	2460 → 2
//	2500 → 4
//
// # Merging
//
// Timing software publishes Complete and Snapshot lists, which replace every
// earlier list, and Delta lists, which only carry the entries that changed.
// Merge starts from the newest superseding list and overlays each later delta.
package results
