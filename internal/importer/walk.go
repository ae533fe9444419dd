package importer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/iofimport/internal/iof"
	"github.com/roach88/iofimport/internal/results"
	"github.com/roach88/iofimport/internal/store"
)

// writer walks one document top-down inside a transaction:
//
//	Organiser → Event → ResultList → ClassResult
//	  EventClass → Course → ClassResult
//	  PersonResult: Organisation → Person → PersonResult
//	    Result: PersonRaceResult → SplitTimes
//
// Every level is found or created by its natural key before its children are
// written, so each child can reference its parent's id.
type writer struct {
	tx        *store.Tx
	log       *zap.Logger
	doc       *iof.ResultList
	rep       *Report
	recompute bool

	listStatus       iof.ResultListStatus
	eventID          int64
	listID           int64
	firstWarningPath string
}

func (w *writer) write(ctx context.Context) error {
	status, err := iof.ParseResultListStatus(w.doc.Status)
	if err != nil {
		return &ImportError{Code: CodeInvalidDocument, Message: "bad list status", Err: err}
	}
	w.listStatus = status
	w.rep.ListStatus = string(status)

	if err := w.writeEvent(ctx); err != nil {
		return err
	}
	if err := w.writeResultList(ctx); err != nil {
		return err
	}
	for i := range w.doc.ClassResults {
		path := fmt.Sprintf("ClassResult[%d]", i+1)
		if err := w.writeClassResult(ctx, path, &w.doc.ClassResults[i]); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) writeEvent(ctx context.Context) error {
	ev := w.doc.Event

	var organiserID *int64
	for i, org := range ev.Organisers {
		id, created, err := w.tx.FindOrCreateOrganisation(ctx, toOrganisation(org))
		if err != nil {
			return storeFailure(fmt.Sprintf("Event/Organiser[%d]", i+1), err)
		}
		w.rep.Organisations.add(created)
		if organiserID == nil {
			organiserID = &id
		}
	}

	e := store.Event{
		Name:           ev.Name,
		IOFID:          strings.TrimSpace(ev.ID),
		Status:         ev.Status,
		Classification: ev.Classification,
		Form:           strings.Join(ev.Forms, ","),
		OrganisationID: organiserID,
	}
	if ev.StartTime != nil && ev.StartTime.Date != "" {
		date, err := iof.ParseDate(ev.StartTime.Date)
		if err != nil {
			return &ImportError{Code: CodeInvalidDocument, Path: "Event/StartTime", Message: "bad date", Err: err}
		}
		e.StartDate = date
	}

	id, created, err := w.tx.FindOrCreateEvent(ctx, e)
	if err != nil {
		return storeFailure("Event", err)
	}
	w.rep.Events.add(created)
	w.eventID = id
	w.rep.EventID = id
	return nil
}

func (w *writer) writeResultList(ctx context.Context) error {
	createTime, err := formatDateTime(w.doc.CreateTime)
	if err != nil {
		return &ImportError{Code: CodeInvalidDocument, Message: "bad createTime", Err: err}
	}
	id, created, err := w.tx.FindOrCreateResultList(ctx, store.ResultList{
		EventID:    w.eventID,
		Status:     string(w.listStatus),
		Creator:    iof.CleanText(w.doc.Creator),
		CreateTime: createTime,
		IOFVersion: strings.TrimSpace(w.doc.IOFVersion),
	})
	if err != nil {
		return storeFailure("ResultList", err)
	}
	w.rep.ResultLists.add(created)
	w.listID = id
	w.rep.ResultListID = id
	return nil
}

// personEntry is one person result after its person has been stored.
type personEntry struct {
	path           string
	pr             *iof.PersonResult
	personID       int64
	personResultID int64
}

func (w *writer) writeClassResult(ctx context.Context, path string, cr *iof.ClassResult) error {
	class := cr.Class
	// Validate has already rejected unknown values.
	mode, _ := iof.ParseResultListMode(class.ResultListMode)
	classStatus, _ := iof.ParseEventClassStatus(class.Status)
	minSize, maxSize := class.TeamSize()

	classID, created, err := w.tx.FindOrCreateEventClass(ctx, store.EventClass{
		EventID:        w.eventID,
		Name:           class.Name,
		ShortName:      iof.CleanText(class.ShortName),
		ResultListMode: string(mode),
		Status:         string(classStatus),
		Sex:            class.Sex,
		MinTeamMembers: minSize,
		MaxTeamMembers: maxSize,
	})
	if err != nil {
		return storeFailure(path+"/Class", err)
	}
	w.rep.EventClasses.add(created)

	for i, c := range cr.Courses {
		_, created, err := w.tx.FindOrCreateCourse(ctx, store.Course{
			EventClassID:     classID,
			RaceNumber:       c.Race(),
			Name:             iof.CleanText(c.Name),
			CourseID:         strings.TrimSpace(c.ID),
			CourseFamily:     iof.CleanText(c.CourseFamily),
			Length:           c.Length,
			Climb:            c.Climb,
			NumberOfControls: c.NumberOfControls,
		})
		if err != nil {
			return storeFailure(fmt.Sprintf("%s/Course[%d]", path, i+1), err)
		}
		w.rep.Courses.add(created)
	}

	classResultID, created, err := w.tx.FindOrCreateClassResult(ctx, store.ClassResult{
		ResultListID:   w.listID,
		EventClassID:   classID,
		TimeResolution: cr.Resolution(),
	})
	if err != nil {
		return storeFailure(path, err)
	}
	w.rep.ClassResults.add(created)

	people := make([]personEntry, 0, len(cr.PersonResults))
	seen := make(map[int64]string, len(cr.PersonResults))
	for j := range cr.PersonResults {
		pe := personEntry{path: fmt.Sprintf("%s/PersonResult[%d]", path, j+1), pr: &cr.PersonResults[j]}
		if err := w.writePerson(ctx, classResultID, &pe); err != nil {
			return err
		}
		// An id-less entry can resolve to a namesake stored earlier in the
		// class; writing it would overwrite that competitor's results.
		if first, ok := seen[pe.personResultID]; ok {
			return &ImportError{
				Code:    CodeInvalidDocument,
				Path:    pe.path,
				Message: "same competitor as " + first,
			}
		}
		seen[pe.personResultID] = pe.path
		people = append(people, pe)
	}

	ranked := w.rank(cr, mode, people)

	for _, pe := range people {
		for k := range pe.pr.Results {
			rpath := fmt.Sprintf("%s/Result[%d]", pe.path, k+1)
			if err := w.writeRaceResult(ctx, rpath, cr, pe, &pe.pr.Results[k], ranked); err != nil {
				return err
			}
		}
	}

	w.log.Debug("class result written",
		zap.String("class", class.Name),
		zap.Int64("class_result_id", classResultID),
		zap.Int("persons", len(people)),
	)
	return nil
}

func (w *writer) writePerson(ctx context.Context, classResultID int64, pe *personEntry) error {
	pr := pe.pr

	var orgID *int64
	if pr.Organisation != nil && strings.TrimSpace(pr.Organisation.Name) != "" {
		id, created, err := w.tx.FindOrCreateOrganisation(ctx, toOrganisation(*pr.Organisation))
		if err != nil {
			return storeFailure(pe.path+"/Organisation", err)
		}
		w.rep.Organisations.add(created)
		orgID = &id
	}

	p := store.Person{
		Family: pr.Person.Name.Family,
		Given:  pr.Person.Name.Given,
		Sex:    pr.Person.Sex,
		IOFID:  strings.TrimSpace(pr.Person.ID),
	}
	if pr.Person.BirthDate != "" {
		date, err := iof.ParseDate(pr.Person.BirthDate)
		if err != nil {
			return &ImportError{Code: CodeInvalidDocument, Path: pe.path + "/Person", Message: "bad birth date", Err: err}
		}
		p.BirthDate = date
	}
	personID, created, err := w.tx.FindOrCreatePerson(ctx, p)
	if err != nil {
		return storeFailure(pe.path+"/Person", err)
	}
	w.rep.Persons.add(created)
	pe.personID = personID

	prID, created, err := w.tx.FindOrCreatePersonResult(ctx, store.PersonResult{
		ClassResultID:  classResultID,
		PersonID:       personID,
		OrganisationID: orgID,
	})
	if err != nil {
		return storeFailure(pe.path, err)
	}
	w.rep.PersonResults.add(created)
	pe.personResultID = prID
	return nil
}

type rankKey struct {
	person int64
	race   int
}

// rank recomputes positions for every race of a superseding list. Delta
// lists only carry some entries, so their positions are kept as published.
func (w *writer) rank(cr *iof.ClassResult, mode iof.ResultListMode, people []personEntry) map[rankKey]results.Entry {
	if !w.recompute || !w.listStatus.Supersedes() {
		return nil
	}

	byRace := make(map[int][]results.Entry)
	for _, pe := range people {
		for k := range pe.pr.Results {
			e := results.FromIOF(*pe.pr, pe.pr.Results[k])
			e.PersonID = pe.personID
			byRace[e.Race] = append(byRace[e.Race], e)
		}
	}

	ranked := make(map[rankKey]results.Entry)
	for race, entries := range byRace {
		for _, e := range results.Rank(entries, mode, cr.Resolution()) {
			ranked[rankKey{person: e.PersonID, race: race}] = e
		}
	}
	return ranked
}

func (w *writer) writeRaceResult(
	ctx context.Context,
	path string,
	cr *iof.ClassResult,
	pe personEntry,
	r *iof.PersonRaceResult,
	ranked map[rankKey]results.Entry,
) error {
	status, err := iof.ParseResultStatus(r.Status)
	if err != nil {
		return &ImportError{Code: CodeInvalidDocument, Path: path, Message: "bad status", Err: err}
	}
	start, err := formatDateTime(r.StartTime)
	if err != nil {
		return &ImportError{Code: CodeInvalidDocument, Path: path + "/StartTime", Message: "bad time", Err: err}
	}
	finish, err := formatDateTime(r.FinishTime)
	if err != nil {
		return &ImportError{Code: CodeInvalidDocument, Path: path + "/FinishTime", Message: "bad time", Err: err}
	}

	rr := store.RaceResult{
		PersonResultID: pe.personResultID,
		RaceNumber:     r.Race(),
		BibNumber:      strings.TrimSpace(r.BibNumber),
		StartTime:      start,
		FinishTime:     finish,
		Time:           r.Time,
		TimeBehind:     r.TimeBehind,
		Position:       r.Position,
		Status:         string(status),
		ControlCard:    strings.TrimSpace(r.ControlCard),
	}
	if e, ok := ranked[rankKey{person: pe.personID, race: rr.RaceNumber}]; ok {
		if r.Position != nil && (e.Position == nil || *e.Position != *r.Position) {
			w.warn(path, fmt.Sprintf("POSITION_MISMATCH: published position %d, computed %s", *r.Position, formatPosition(e.Position)))
		}
		rr.Position = e.Position
		rr.TimeBehind = e.TimeBehind
	}

	raceID, created, err := w.tx.UpsertPersonRaceResult(ctx, rr)
	if err != nil {
		return storeFailure(path, err)
	}
	w.rep.RaceResults.add(created)

	splits := make([]store.SplitTime, 0, len(r.SplitTimes))
	for _, st := range r.SplitTimes {
		sts, _ := iof.ParseSplitTimeStatus(st.Status)
		splits = append(splits, store.SplitTime{
			Status:      string(sts),
			ControlCode: strings.TrimSpace(st.ControlCode),
			Time:        st.Time,
		})
	}
	if err := w.tx.ReplaceSplitTimes(ctx, raceID, splits); err != nil {
		return storeFailure(path, err)
	}
	w.rep.SplitTimes += len(splits)

	var course results.Course
	if c := cr.CourseForRace(rr.RaceNumber); c != nil {
		course.NumberOfControls = c.NumberOfControls
	}
	for _, warning := range results.CheckSplits(results.FromIOF(*pe.pr, *r), course) {
		w.warn(path, warning.String())
	}
	return nil
}

func (w *writer) warn(path, msg string) {
	if w.firstWarningPath == "" {
		w.firstWarningPath = path
	}
	w.rep.Warnings = append(w.rep.Warnings, path+": "+msg)
}

func toOrganisation(o iof.Organisation) store.Organisation {
	org := store.Organisation{
		Name:      o.Name,
		ShortName: iof.CleanText(o.ShortName),
		IOFID:     strings.TrimSpace(o.ID),
	}
	if o.Country != nil {
		org.Country = strings.TrimSpace(o.Country.Code)
	}
	return org
}

// formatDateTime normalises an IOF date-time to the storage layout. Empty stays empty.
func formatDateTime(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, err := iof.ParseDateTime(s)
	if err != nil {
		return "", err
	}
	return iof.FormatTime(t), nil
}

func formatPosition(p *int) string {
	if p == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *p)
}
