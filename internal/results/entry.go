package results

import (
	"github.com/roach88/iofimport/internal/iof"
	"github.com/roach88/iofimport/internal/store"
)

// Entry is one competitor's result in one race of a class.
type Entry struct {
	PersonID     int64            `json:"person_id"`
	Name         string           `json:"name"`
	Organisation string           `json:"organisation,omitempty"`
	Race         int              `json:"race"`
	Bib          string           `json:"bib,omitempty"`
	Status       iof.ResultStatus `json:"status"`
	Time         *float64         `json:"time,omitempty"`
	TimeBehind   *float64         `json:"time_behind,omitempty"`
	Position     *int             `json:"position,omitempty"`
	Splits       []Split          `json:"splits,omitempty"`
}

// Split is one control passage, Time counted from the start.
type Split struct {
	ControlCode string              `json:"control_code"`
	Status      iof.SplitTimeStatus `json:"status"`
	Time        *float64            `json:"time,omitempty"`
}

// List is the entries one result list published for a class.
type List struct {
	Status     iof.ResultListStatus
	CreateTime string
	Entries    []Entry
}

// Course is the part of a course the split checks need.
type Course struct {
	NumberOfControls *int
}

type entryKey struct {
	person int64
	race   int
}

func (e Entry) key() entryKey {
	return entryKey{person: e.PersonID, race: e.Race}
}

// FromRow converts a stored race result.
func FromRow(row store.RaceResultRow) Entry {
	e := Entry{
		PersonID:     row.Person.ID,
		Name:         row.Person.FullName(),
		Organisation: row.Organisation,
		Race:         row.Result.RaceNumber,
		Bib:          row.Result.BibNumber,
		Status:       iof.ResultStatus(row.Result.Status),
		Time:         row.Result.Time,
		TimeBehind:   row.Result.TimeBehind,
		Position:     row.Result.Position,
	}
	for _, st := range row.Splits {
		e.Splits = append(e.Splits, Split{
			ControlCode: st.ControlCode,
			Status:      iof.SplitTimeStatus(st.Status),
			Time:        st.Time,
		})
	}
	return e
}

// FromIOF converts one race result of a decoded person result. Statuses that
// do not parse are kept verbatim; the document validator reports them.
func FromIOF(pr iof.PersonResult, r iof.PersonRaceResult) Entry {
	status, err := iof.ParseResultStatus(r.Status)
	if err != nil {
		status = iof.ResultStatus(r.Status)
	}
	e := Entry{
		Name:       store.Person{Family: iof.CleanText(pr.Person.Name.Family), Given: iof.CleanText(pr.Person.Name.Given)}.FullName(),
		Race:       r.Race(),
		Bib:        r.BibNumber,
		Status:     status,
		Time:       r.Time,
		TimeBehind: r.TimeBehind,
		Position:   r.Position,
	}
	if pr.Organisation != nil {
		e.Organisation = iof.CleanText(pr.Organisation.Name)
	}
	for _, st := range r.SplitTimes {
		sts, err := iof.ParseSplitTimeStatus(st.Status)
		if err != nil {
			sts = iof.SplitTimeStatus(st.Status)
		}
		e.Splits = append(e.Splits, Split{ControlCode: st.ControlCode, Status: sts, Time: st.Time})
	}
	return e
}
