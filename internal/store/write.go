package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/iofimport/internal/iof"
)

// findOrCreate runs an INSERT ... ON CONFLICT DO NOTHING and, when the
// natural key was already taken, selects the existing id with lookup.
// Returns the id and whether a new row was inserted.
func (t *Tx) findOrCreate(
	ctx context.Context,
	what string,
	insert string, insertArgs []any,
	lookup string, lookupArgs []any,
) (int64, bool, error) {
	result, err := t.tx.ExecContext(ctx, insert, insertArgs...)
	if err != nil {
		return 0, false, fmt.Errorf("find or create %s: insert: %w", what, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("find or create %s: rows affected: %w", what, err)
	}

	if rowsAffected > 0 {
		id, err := result.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("find or create %s: last insert id: %w", what, err)
		}
		return id, true, nil
	}

	// Conflict - row already exists, fetch the existing ID
	var id int64
	if err := t.tx.QueryRowContext(ctx, lookup, lookupArgs...).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("find or create %s: select existing: %w", what, err)
	}
	return id, false, nil
}

// FindOrCreateOrganisation returns the organisation with the same normalised name,
// inserting it when missing.
func (t *Tx) FindOrCreateOrganisation(ctx context.Context, org Organisation) (int64, bool, error) {
	key := iof.NormalizeKey(org.Name)
	if key == "" {
		return 0, false, fmt.Errorf("find or create organisation: empty name")
	}
	return t.findOrCreate(ctx, "organisation", `
		INSERT INTO organisations (name_key, name, short_name, country, iof_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name_key) DO NOTHING
	`, []any{key, iof.CleanText(org.Name), org.ShortName, org.Country, org.IOFID},
		`SELECT id FROM organisations WHERE name_key = ?`, []any{key})
}

// FindOrCreateEvent returns the event with the same normalised name,
// inserting it when missing.
func (t *Tx) FindOrCreateEvent(ctx context.Context, ev Event) (int64, bool, error) {
	key := iof.NormalizeKey(ev.Name)
	if key == "" {
		return 0, false, fmt.Errorf("find or create event: empty name")
	}
	return t.findOrCreate(ctx, "event", `
		INSERT INTO events (name_key, name, iof_id, start_date, status, classification, form, organisation_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name_key) DO NOTHING
	`, []any{key, iof.CleanText(ev.Name), ev.IOFID, ev.StartDate, ev.Status, ev.Classification, ev.Form, nullInt64(ev.OrganisationID)},
		`SELECT id FROM events WHERE name_key = ?`, []any{key})
}

// FindOrCreateResultList returns the list published by the same creator at the
// same time for the event, inserting it when missing.
func (t *Tx) FindOrCreateResultList(ctx context.Context, rl ResultList) (int64, bool, error) {
	return t.findOrCreate(ctx, "result list", `
		INSERT INTO result_lists (event_id, status, creator, create_time, iof_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(event_id, creator, create_time) DO NOTHING
	`, []any{rl.EventID, rl.Status, rl.Creator, rl.CreateTime, rl.IOFVersion},
		`SELECT id FROM result_lists WHERE event_id = ? AND creator = ? AND create_time = ?`,
		[]any{rl.EventID, rl.Creator, rl.CreateTime})
}

// FindOrCreateEventClass returns the class with the same normalised name in the
// event, inserting it when missing.
func (t *Tx) FindOrCreateEventClass(ctx context.Context, ec EventClass) (int64, bool, error) {
	key := iof.NormalizeKey(ec.Name)
	if key == "" {
		return 0, false, fmt.Errorf("find or create event class: empty name")
	}
	if ec.MinTeamMembers == 0 {
		ec.MinTeamMembers = 1
	}
	if ec.MaxTeamMembers == 0 {
		ec.MaxTeamMembers = 1
	}
	if ec.ResultListMode == "" {
		ec.ResultListMode = string(iof.ResultListModeDefault)
	}
	if ec.Status == "" {
		ec.Status = string(iof.ClassStatusNormal)
	}
	return t.findOrCreate(ctx, "event class", `
		INSERT INTO event_classes
		(event_id, name_key, name, short_name, result_list_mode, status, sex,
		 min_number_of_team_members, max_number_of_team_members)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id, name_key) DO NOTHING
	`, []any{ec.EventID, key, iof.CleanText(ec.Name), ec.ShortName, ec.ResultListMode, ec.Status, ec.Sex,
		ec.MinTeamMembers, ec.MaxTeamMembers},
		`SELECT id FROM event_classes WHERE event_id = ? AND name_key = ?`, []any{ec.EventID, key})
}

// FindOrCreateCourse returns the course the class runs in the given race,
// inserting it when missing.
func (t *Tx) FindOrCreateCourse(ctx context.Context, c Course) (int64, bool, error) {
	if c.RaceNumber == 0 {
		c.RaceNumber = 1
	}
	return t.findOrCreate(ctx, "course", `
		INSERT INTO courses
		(event_class_id, race_number, name, course_id, course_family, length, climb, number_of_controls)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_class_id, race_number) DO NOTHING
	`, []any{c.EventClassID, c.RaceNumber, c.Name, c.CourseID, c.CourseFamily,
		nullFloat(c.Length), nullFloat(c.Climb), nullInt(c.NumberOfControls)},
		`SELECT id FROM courses WHERE event_class_id = ? AND race_number = ?`,
		[]any{c.EventClassID, c.RaceNumber})
}

// FindOrCreateClassResult returns the class result linking the list and class,
// inserting it when missing.
func (t *Tx) FindOrCreateClassResult(ctx context.Context, cr ClassResult) (int64, bool, error) {
	if cr.TimeResolution <= 0 {
		cr.TimeResolution = 1
	}
	return t.findOrCreate(ctx, "class result", `
		INSERT INTO class_results (result_list_id, event_class_id, time_resolution)
		VALUES (?, ?, ?)
		ON CONFLICT(result_list_id, event_class_id) DO NOTHING
	`, []any{cr.ResultListID, cr.EventClassID, cr.TimeResolution},
		`SELECT id FROM class_results WHERE result_list_id = ? AND event_class_id = ?`,
		[]any{cr.ResultListID, cr.EventClassID})
}

// FindOrCreatePerson returns the person with the same normalised names,
// birth date and IOF id, inserting them when missing.
//
// Lists do not always carry the IOF id. A person with an id claims an
// existing id-less namesake; a person without one matches the id-less
// namesake, or the only namesake when there is exactly one.
func (t *Tx) FindOrCreatePerson(ctx context.Context, p Person) (int64, bool, error) {
	familyKey := iof.NormalizeKey(p.Family)
	givenKey := iof.NormalizeKey(p.Given)
	if familyKey == "" && givenKey == "" {
		return 0, false, fmt.Errorf("find or create person: empty name")
	}
	p.IOFID = strings.TrimSpace(p.IOFID)

	id, found, err := t.matchPerson(ctx, familyKey, givenKey, p.BirthDate, p.IOFID)
	if err != nil || found {
		return id, false, err
	}

	return t.findOrCreate(ctx, "person", `
		INSERT INTO persons (family_key, given_key, birth_date, family, given, sex, iof_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(family_key, given_key, birth_date, iof_id) DO NOTHING
	`, []any{familyKey, givenKey, p.BirthDate, iof.CleanText(p.Family), iof.CleanText(p.Given), p.Sex, p.IOFID},
		`SELECT id FROM persons WHERE family_key = ? AND given_key = ? AND birth_date = ? AND iof_id = ?`,
		[]any{familyKey, givenKey, p.BirthDate, p.IOFID})
}

// matchPerson looks up an existing person for FindOrCreatePerson.
func (t *Tx) matchPerson(ctx context.Context, familyKey, givenKey, birthDate, iofID string) (int64, bool, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, iof_id FROM persons
		WHERE family_key = ? AND given_key = ? AND birth_date = ?
		ORDER BY id ASC
	`, familyKey, givenKey, birthDate)
	if err != nil {
		return 0, false, fmt.Errorf("find or create person: select namesakes: %w", err)
	}
	defer rows.Close()

	var exact, idless, first int64
	namesakes := 0
	for rows.Next() {
		var id int64
		var rowIOFID string
		if err := rows.Scan(&id, &rowIOFID); err != nil {
			return 0, false, fmt.Errorf("find or create person: scan namesake: %w", err)
		}
		if namesakes == 0 {
			first = id
		}
		namesakes++
		switch rowIOFID {
		case iofID:
			exact = id
		case "":
			idless = id
		}
	}
	if err := rows.Err(); err != nil {
		return 0, false, fmt.Errorf("find or create person: select namesakes: %w", err)
	}
	rows.Close()

	switch {
	case exact != 0:
		return exact, true, nil
	case iofID != "" && idless != 0:
		if _, err := t.tx.ExecContext(ctx, `UPDATE persons SET iof_id = ? WHERE id = ?`, iofID, idless); err != nil {
			return 0, false, fmt.Errorf("find or create person: claim namesake: %w", err)
		}
		return idless, true, nil
	case iofID == "" && namesakes == 1:
		return first, true, nil
	}
	return 0, false, nil
}

// FindOrCreatePersonResult returns the person's entry in the class result,
// inserting it when missing.
func (t *Tx) FindOrCreatePersonResult(ctx context.Context, pr PersonResult) (int64, bool, error) {
	return t.findOrCreate(ctx, "person result", `
		INSERT INTO person_results (class_result_id, person_id, organisation_id)
		VALUES (?, ?, ?)
		ON CONFLICT(class_result_id, person_id) DO NOTHING
	`, []any{pr.ClassResultID, pr.PersonID, nullInt64(pr.OrganisationID)},
		`SELECT id FROM person_results WHERE class_result_id = ? AND person_id = ?`,
		[]any{pr.ClassResultID, pr.PersonID})
}

// UpsertPersonRaceResult inserts the race result or, when the natural key
// exists, overwrites its mutable columns.
// Returns the id and whether a new row was inserted.
func (t *Tx) UpsertPersonRaceResult(ctx context.Context, r RaceResult) (int64, bool, error) {
	if r.RaceNumber == 0 {
		r.RaceNumber = 1
	}

	var id int64
	err := t.tx.QueryRowContext(ctx, `
		SELECT id FROM person_race_results WHERE person_result_id = ? AND race_number = ?
	`, r.PersonResultID, r.RaceNumber).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		result, err := t.tx.ExecContext(ctx, `
			INSERT INTO person_race_results
			(person_result_id, race_number, bib_number, start_time, finish_time,
			 time, time_behind, position, status, control_card)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.PersonResultID, r.RaceNumber, r.BibNumber, r.StartTime, r.FinishTime,
			nullFloat(r.Time), nullFloat(r.TimeBehind), nullInt(r.Position), r.Status, r.ControlCard)
		if err != nil {
			return 0, false, fmt.Errorf("upsert race result: insert: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("upsert race result: last insert id: %w", err)
		}
		return id, true, nil

	case err != nil:
		return 0, false, fmt.Errorf("upsert race result: select existing: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		UPDATE person_race_results
		SET bib_number = ?, start_time = ?, finish_time = ?, time = ?, time_behind = ?,
		    position = ?, status = ?, control_card = ?
		WHERE id = ?
	`, r.BibNumber, r.StartTime, r.FinishTime, nullFloat(r.Time), nullFloat(r.TimeBehind),
		nullInt(r.Position), r.Status, r.ControlCard, id)
	if err != nil {
		return 0, false, fmt.Errorf("upsert race result: update: %w", err)
	}
	return id, false, nil
}

// ReplaceSplitTimes makes the stored splits of a race result equal to splits.
// Splits are keyed by their position in the slice (1-based sequence); rows past
// the end of splits are deleted.
func (t *Tx) ReplaceSplitTimes(ctx context.Context, raceResultID int64, splits []SplitTime) error {
	for i, st := range splits {
		status := st.Status
		if status == "" {
			status = string(iof.SplitOK)
		}
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO split_times (person_race_result_id, sequence, status, control_code, time)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(person_race_result_id, sequence) DO UPDATE SET
				status = excluded.status,
				control_code = excluded.control_code,
				time = excluded.time
		`, raceResultID, i+1, status, st.ControlCode, nullFloat(st.Time))
		if err != nil {
			return fmt.Errorf("replace split times: sequence %d: %w", i+1, err)
		}
	}

	_, err := t.tx.ExecContext(ctx, `
		DELETE FROM split_times WHERE person_race_result_id = ? AND sequence > ?
	`, raceResultID, len(splits))
	if err != nil {
		return fmt.Errorf("replace split times: trim: %w", err)
	}
	return nil
}

// CreateEvent inserts a new event and fails with ErrAlreadyExists when an
// event with the same normalised name is stored.
func (s *Store) CreateEvent(ctx context.Context, ev Event) (Event, error) {
	var created bool
	err := s.WithTx(ctx, func(tx *Tx) error {
		id, inserted, err := tx.FindOrCreateEvent(ctx, ev)
		if err != nil {
			return err
		}
		if !inserted {
			return fmt.Errorf("create event %q: %w", ev.Name, ErrAlreadyExists)
		}
		ev.ID = id
		created = true
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	if !created {
		return Event{}, fmt.Errorf("create event %q: not inserted", ev.Name)
	}
	ev.Name = iof.CleanText(ev.Name)
	return ev, nil
}

// RecordImportRun stores an import run.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) RecordImportRun(ctx context.Context, run ImportRun) error {
	warningsJSON, err := marshalWarnings(run.Warnings)
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO import_runs
		(id, source, started_at, finished_at, status, result_list_id, created, existing, warnings, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Source,
		run.StartedAt,
		run.FinishedAt,
		run.Status,
		nullInt64(run.ResultListID),
		run.Created,
		run.Existing,
		warningsJSON,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}
	return nil
}
