package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/iofimport/internal/iof"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// page normalises paging arguments: negative skip is 0, limit <= 0 is DefaultLimit.
func page(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return skip, limit
}

// notFound maps sql.ErrNoRows to ErrNotFound with context.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

const eventColumns = `id, name, iof_id, start_date, status, classification, form, organisation_id`

func scanEvent(row scanner) (Event, error) {
	var ev Event
	var orgID sql.NullInt64
	if err := row.Scan(&ev.ID, &ev.Name, &ev.IOFID, &ev.StartDate, &ev.Status, &ev.Classification, &ev.Form, &orgID); err != nil {
		return Event{}, err
	}
	ev.OrganisationID = int64Ptr(orgID)
	return ev, nil
}

// GetEvent retrieves an event by id.
func (s *Store) GetEvent(ctx context.Context, id int64) (Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if err != nil {
		return Event{}, notFound(err, "get event %d", id)
	}
	return ev, nil
}

// GetEventByName retrieves an event by its normalised name.
func (s *Store) GetEventByName(ctx context.Context, name string) (Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE name_key = ?`, iof.NormalizeKey(name))
	ev, err := scanEvent(row)
	if err != nil {
		return Event{}, notFound(err, "get event %q", name)
	}
	return ev, nil
}

// ListEvents returns one page of events ordered by id.
// Returns an empty slice (not nil) when the page is empty.
func (s *Store) ListEvents(ctx context.Context, skip, limit int) ([]Event, error) {
	skip, limit = page(skip, limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		ORDER BY id ASC
		LIMIT ? OFFSET ?
	`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

const resultListColumns = `id, event_id, status, creator, create_time, iof_version`

func scanResultList(row scanner) (ResultList, error) {
	var rl ResultList
	err := row.Scan(&rl.ID, &rl.EventID, &rl.Status, &rl.Creator, &rl.CreateTime, &rl.IOFVersion)
	return rl, err
}

// GetResultList retrieves a result list by id.
func (s *Store) GetResultList(ctx context.Context, id int64) (ResultList, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultListColumns+` FROM result_lists WHERE id = ?`, id)
	rl, err := scanResultList(row)
	if err != nil {
		return ResultList{}, notFound(err, "get result list %d", id)
	}
	return rl, nil
}

// ListResultLists returns one page of result lists ordered by create time.
// eventID 0 lists the result lists of all events.
func (s *Store) ListResultLists(ctx context.Context, eventID int64, skip, limit int) ([]ResultList, error) {
	skip, limit = page(skip, limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+resultListColumns+` FROM result_lists
		WHERE (? = 0 OR event_id = ?)
		ORDER BY create_time ASC, id ASC
		LIMIT ? OFFSET ?
	`, eventID, eventID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("query result lists: %w", err)
	}
	defer rows.Close()

	lists := []ResultList{}
	for rows.Next() {
		rl, err := scanResultList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result list: %w", err)
		}
		lists = append(lists, rl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result lists: %w", err)
	}
	return lists, nil
}

const eventClassColumns = `id, event_id, name, short_name, result_list_mode, status, sex,
	min_number_of_team_members, max_number_of_team_members`

func scanEventClass(row scanner) (EventClass, error) {
	var ec EventClass
	err := row.Scan(&ec.ID, &ec.EventID, &ec.Name, &ec.ShortName, &ec.ResultListMode, &ec.Status, &ec.Sex,
		&ec.MinTeamMembers, &ec.MaxTeamMembers)
	return ec, err
}

// ListEventClasses returns all classes of an event ordered by name.
func (s *Store) ListEventClasses(ctx context.Context, eventID int64) ([]EventClass, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventClassColumns+` FROM event_classes
		WHERE event_id = ?
		ORDER BY name_key ASC, id ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query event classes: %w", err)
	}
	defer rows.Close()

	classes := []EventClass{}
	for rows.Next() {
		ec, err := scanEventClass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event class: %w", err)
		}
		classes = append(classes, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event classes: %w", err)
	}
	return classes, nil
}

// GetEventClassByName retrieves a class of an event by its normalised name.
func (s *Store) GetEventClassByName(ctx context.Context, eventID int64, name string) (EventClass, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+eventClassColumns+` FROM event_classes
		WHERE event_id = ? AND name_key = ?
	`, eventID, iof.NormalizeKey(name))
	ec, err := scanEventClass(row)
	if err != nil {
		return EventClass{}, notFound(err, "get event class %q", name)
	}
	return ec, nil
}

// CourseForClass retrieves the course a class ran in the given race.
func (s *Store) CourseForClass(ctx context.Context, eventClassID int64, race int) (Course, error) {
	var c Course
	var length, climb sql.NullFloat64
	var controls sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, event_class_id, race_number, name, course_id, course_family, length, climb, number_of_controls
		FROM courses
		WHERE event_class_id = ? AND race_number = ?
	`, eventClassID, race).Scan(&c.ID, &c.EventClassID, &c.RaceNumber, &c.Name, &c.CourseID, &c.CourseFamily,
		&length, &climb, &controls)
	if err != nil {
		return Course{}, notFound(err, "get course for class %d race %d", eventClassID, race)
	}
	c.Length = floatPtr(length)
	c.Climb = floatPtr(climb)
	c.NumberOfControls = intPtr(controls)
	return c, nil
}

// ClassResultsForClass returns every published result of a class together with
// its list, ordered by list create time then id.
func (s *Store) ClassResultsForClass(ctx context.Context, eventClassID int64) ([]ClassResultRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cr.id, cr.result_list_id, cr.event_class_id, cr.time_resolution,
		       rl.id, rl.event_id, rl.status, rl.creator, rl.create_time, rl.iof_version
		FROM class_results cr
		JOIN result_lists rl ON rl.id = cr.result_list_id
		WHERE cr.event_class_id = ?
		ORDER BY rl.create_time ASC, rl.id ASC
	`, eventClassID)
	if err != nil {
		return nil, fmt.Errorf("query class results: %w", err)
	}
	defer rows.Close()

	refs := []ClassResultRef{}
	for rows.Next() {
		var ref ClassResultRef
		cr, rl := &ref.ClassResult, &ref.List
		if err := rows.Scan(&cr.ID, &cr.ResultListID, &cr.EventClassID, &cr.TimeResolution,
			&rl.ID, &rl.EventID, &rl.Status, &rl.Creator, &rl.CreateTime, &rl.IOFVersion); err != nil {
			return nil, fmt.Errorf("scan class result: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class results: %w", err)
	}
	return refs, nil
}

// RaceResults returns the race results of a class result with competitor, club
// and splits, in the order the entries were first imported.
func (s *Store) RaceResults(ctx context.Context, classResultID int64) ([]RaceResultRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.family, p.given, p.birth_date, p.sex, p.iof_id,
		       COALESCE(o.name, ''),
		       prr.id, prr.person_result_id, prr.race_number, prr.bib_number, prr.start_time,
		       prr.finish_time, prr.time, prr.time_behind, prr.position, prr.status, prr.control_card
		FROM person_results pr
		JOIN persons p ON p.id = pr.person_id
		LEFT JOIN organisations o ON o.id = pr.organisation_id
		JOIN person_race_results prr ON prr.person_result_id = pr.id
		WHERE pr.class_result_id = ?
		ORDER BY pr.id ASC, prr.race_number ASC
	`, classResultID)
	if err != nil {
		return nil, fmt.Errorf("query race results: %w", err)
	}
	defer rows.Close()

	results := []RaceResultRow{}
	index := make(map[int64]int)
	for rows.Next() {
		var row RaceResultRow
		p, r := &row.Person, &row.Result
		var t, behind sql.NullFloat64
		var pos sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Family, &p.Given, &p.BirthDate, &p.Sex, &p.IOFID,
			&row.Organisation,
			&r.ID, &r.PersonResultID, &r.RaceNumber, &r.BibNumber, &r.StartTime,
			&r.FinishTime, &t, &behind, &pos, &r.Status, &r.ControlCard); err != nil {
			return nil, fmt.Errorf("scan race result: %w", err)
		}
		r.Time = floatPtr(t)
		r.TimeBehind = floatPtr(behind)
		r.Position = intPtr(pos)
		row.Splits = []SplitTime{}
		index[r.ID] = len(results)
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate race results: %w", err)
	}
	rows.Close()

	if err := s.attachSplits(ctx, classResultID, results, index); err != nil {
		return nil, err
	}
	return results, nil
}

// attachSplits loads all splits of a class result in one query.
func (s *Store) attachSplits(ctx context.Context, classResultID int64, results []RaceResultRow, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT st.person_race_result_id, st.sequence, st.status, st.control_code, st.time
		FROM split_times st
		JOIN person_race_results prr ON prr.id = st.person_race_result_id
		JOIN person_results pr ON pr.id = prr.person_result_id
		WHERE pr.class_result_id = ?
		ORDER BY st.person_race_result_id ASC, st.sequence ASC
	`, classResultID)
	if err != nil {
		return fmt.Errorf("query split times: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raceID int64
		var st SplitTime
		var t sql.NullFloat64
		if err := rows.Scan(&raceID, &st.Sequence, &st.Status, &st.ControlCode, &t); err != nil {
			return fmt.Errorf("scan split time: %w", err)
		}
		st.Time = floatPtr(t)
		if i, ok := index[raceID]; ok {
			results[i].Splits = append(results[i].Splits, st)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate split times: %w", err)
	}
	return nil
}

// ListImportRuns returns one page of import runs, most recent first.
func (s *Store) ListImportRuns(ctx context.Context, skip, limit int) ([]ImportRun, error) {
	skip, limit = page(skip, limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, started_at, finished_at, status, result_list_id, created, existing, warnings, error
		FROM import_runs
		ORDER BY started_at DESC, id ASC
		LIMIT ? OFFSET ?
	`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("query import runs: %w", err)
	}
	defer rows.Close()

	runs := []ImportRun{}
	for rows.Next() {
		var run ImportRun
		var listID sql.NullInt64
		var warnings string
		if err := rows.Scan(&run.ID, &run.Source, &run.StartedAt, &run.FinishedAt, &run.Status, &listID,
			&run.Created, &run.Existing, &warnings, &run.Error); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		run.ResultListID = int64Ptr(listID)
		if run.Warnings, err = unmarshalWarnings(warnings); err != nil {
			return nil, fmt.Errorf("import run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import runs: %w", err)
	}
	return runs, nil
}

// Tables lists the data tables in dependency order.
var Tables = []string{
	"organisations",
	"events",
	"result_lists",
	"event_classes",
	"courses",
	"class_results",
	"persons",
	"person_results",
	"person_race_results",
	"split_times",
	"import_runs",
}

// Counts returns the number of rows per table.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		var n int64
		// table names come from the fixed Tables list
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
