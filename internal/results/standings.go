package results

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/iofimport/internal/iof"
	"github.com/roach88/iofimport/internal/store"
)

// Reader is the part of the store standings are read from.
type Reader interface {
	ClassResultsForClass(ctx context.Context, eventClassID int64) ([]store.ClassResultRef, error)
	RaceResults(ctx context.Context, classResultID int64) ([]store.RaceResultRow, error)
	CourseForClass(ctx context.Context, eventClassID int64, race int) (store.Course, error)
}

// Standing is the effective result of a class in one race.
type Standing struct {
	Class      store.EventClass `json:"class"`
	Race       int              `json:"race"`
	Resolution float64          `json:"time_resolution"`
	Lists      int              `json:"lists"`
	Course     *store.Course    `json:"course,omitempty"`
	Entries    []Entry          `json:"entries"`
}

// Standings merges every list published for the class and ranks each race.
// The time resolution of the newest list applies. Races are returned in
// ascending order; a class without lists yields no standings.
func Standings(ctx context.Context, r Reader, class store.EventClass) ([]Standing, error) {
	refs, err := r.ClassResultsForClass(ctx, class.ID)
	if err != nil {
		return nil, fmt.Errorf("standings for %s: %w", class.Name, err)
	}
	if len(refs) == 0 {
		return []Standing{}, nil
	}

	lists := make([]List, 0, len(refs))
	for _, ref := range refs {
		rows, err := r.RaceResults(ctx, ref.ClassResult.ID)
		if err != nil {
			return nil, fmt.Errorf("standings for %s: %w", class.Name, err)
		}
		status, err := iof.ParseResultListStatus(ref.List.Status)
		if err != nil {
			return nil, fmt.Errorf("standings for %s: list %d: %w", class.Name, ref.List.ID, err)
		}
		l := List{Status: status, CreateTime: ref.List.CreateTime, Entries: make([]Entry, 0, len(rows))}
		for _, row := range rows {
			l.Entries = append(l.Entries, FromRow(row))
		}
		lists = append(lists, l)
	}
	resolution := refs[len(refs)-1].ClassResult.TimeResolution

	mode, err := iof.ParseResultListMode(class.ResultListMode)
	if err != nil {
		return nil, fmt.Errorf("standings for %s: %w", class.Name, err)
	}

	byRace := make(map[int][]Entry)
	var races []int
	for _, e := range Merge(lists) {
		if _, ok := byRace[e.Race]; !ok {
			races = append(races, e.Race)
		}
		byRace[e.Race] = append(byRace[e.Race], e)
	}
	sort.Ints(races)

	standings := make([]Standing, 0, len(races))
	for _, race := range races {
		st := Standing{
			Class:      class,
			Race:       race,
			Resolution: resolution,
			Lists:      len(lists),
			Entries:    Rank(byRace[race], mode, resolution),
		}
		course, err := r.CourseForClass(ctx, class.ID, race)
		switch {
		case err == nil:
			st.Course = &course
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("standings for %s: %w", class.Name, err)
		}
		standings = append(standings, st)
	}
	return standings, nil
}
