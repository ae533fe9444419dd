package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateEvent_CreatesThenFinds(t *testing.T) {
	s := createTestStore(t)

	var firstID, secondID int64
	var firstCreated, secondCreated bool
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		var err error
		firstID, firstCreated, err = tx.FindOrCreateEvent(ctx, Event{Name: "Spring Cup 2024", Status: "Sanctioned"})
		return err
	})
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		var err error
		// Different spelling of the same name, different descriptive fields.
		secondID, secondCreated, err = tx.FindOrCreateEvent(ctx, Event{Name: "  spring   CUP 2024", Status: "Canceled"})
		return err
	})

	assert.True(t, firstCreated)
	assert.False(t, secondCreated)
	assert.Equal(t, firstID, secondID)

	ev, err := s.GetEvent(context.Background(), firstID)
	require.NoError(t, err)
	assert.Equal(t, "Spring Cup 2024", ev.Name)
	assert.Equal(t, "Sanctioned", ev.Status, "existing rows are returned untouched")
}

func TestFindOrCreateEvent_EmptyName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Tx) error {
		_, _, err := tx.FindOrCreateEvent(ctx, Event{Name: "   "})
		return err
	})
	assert.ErrorContains(t, err, "empty name")
}

func TestFindOrCreateResultList_KeyedOnEventCreatorAndTime(t *testing.T) {
	s := createTestStore(t)

	var a, b, c, d int64
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		eventID, _, err := tx.FindOrCreateEvent(ctx, Event{Name: "Cup"})
		require.NoError(t, err)
		otherEventID, _, err := tx.FindOrCreateEvent(ctx, Event{Name: "Other Cup"})
		require.NoError(t, err)

		base := ResultList{EventID: eventID, Status: "Snapshot", Creator: "OE12", CreateTime: "2024-04-20T10:00:00.000Z"}
		a, _, err = tx.FindOrCreateResultList(ctx, base)
		require.NoError(t, err)

		same := base
		same.Status = "Complete"
		b, _, err = tx.FindOrCreateResultList(ctx, same)
		require.NoError(t, err)

		later := base
		later.CreateTime = "2024-04-20T11:00:00.000Z"
		c, _, err = tx.FindOrCreateResultList(ctx, later)
		require.NoError(t, err)

		other := base
		other.EventID = otherEventID
		d, _, err = tx.FindOrCreateResultList(ctx, other)
		return err
	})

	assert.Equal(t, a, b, "same event, creator and time is the same list")
	assert.NotEqual(t, a, c, "a later create time is a new list")
	assert.NotEqual(t, a, d, "the key includes the event")
}

func TestFindOrCreateEventClass_Defaults(t *testing.T) {
	s := createTestStore(t)

	var eventID, classID int64
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		var err error
		eventID, _, err = tx.FindOrCreateEvent(ctx, Event{Name: "Cup"})
		require.NoError(t, err)
		classID, _, err = tx.FindOrCreateEventClass(ctx, EventClass{EventID: eventID, Name: "H21"})
		return err
	})

	ec, err := s.GetEventClassByName(context.Background(), eventID, "h21")
	require.NoError(t, err)
	assert.Equal(t, classID, ec.ID)
	assert.Equal(t, "Default", ec.ResultListMode)
	assert.Equal(t, "Normal", ec.Status)
	assert.Equal(t, 1, ec.MinTeamMembers)
	assert.Equal(t, 1, ec.MaxTeamMembers)
}

func TestFindOrCreateCourse(t *testing.T) {
	s := createTestStore(t)
	classID, _ := seedClassResult(t, s)

	var race1, race1Again, race2 int64
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		var err error
		race1, _, err = tx.FindOrCreateCourse(ctx, Course{EventClassID: classID, Length: float(5200), NumberOfControls: integer(3)})
		require.NoError(t, err)
		race1Again, _, err = tx.FindOrCreateCourse(ctx, Course{EventClassID: classID, RaceNumber: 1, Length: float(9999)})
		require.NoError(t, err)
		race2, _, err = tx.FindOrCreateCourse(ctx, Course{EventClassID: classID, RaceNumber: 2})
		return err
	})

	assert.Equal(t, race1, race1Again)
	assert.NotEqual(t, race1, race2)

	c, err := s.CourseForClass(context.Background(), classID, 1)
	require.NoError(t, err)
	require.NotNil(t, c.Length)
	assert.Equal(t, 5200.0, *c.Length)
	require.NotNil(t, c.NumberOfControls)
	assert.Equal(t, 3, *c.NumberOfControls)
	assert.Nil(t, c.Climb)

	_, err = s.CourseForClass(context.Background(), classID, 3)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindOrCreatePerson_NormalisedNamesAndBirthDate(t *testing.T) {
	s := createTestStore(t)

	var a, b, c int64
	var aCreated, bCreated bool
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		var err error
		a, aCreated, err = tx.FindOrCreatePerson(ctx, Person{Family: "Åström", Given: "Maja", BirthDate: "1995-11-30"})
		require.NoError(t, err)
		b, bCreated, err = tx.FindOrCreatePerson(ctx, Person{Family: "Åström", Given: "MAJA", BirthDate: "1995-11-30"})
		require.NoError(t, err)
		c, _, err = tx.FindOrCreatePerson(ctx, Person{Family: "Åström", Given: "Maja", BirthDate: "2001-01-01"})
		return err
	})

	assert.True(t, aCreated)
	assert.False(t, bCreated)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "namesakes with different birth dates are different people")
}

func TestFindOrCreatePerson_IOFID(t *testing.T) {
	s := createTestStore(t)

	var anna11, anna22, again11, idless int64
	var created22 bool
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		var err error
		anna11, _, err = tx.FindOrCreatePerson(ctx, Person{Family: "Svensson", Given: "Anna", IOFID: "11"})
		require.NoError(t, err)
		anna22, created22, err = tx.FindOrCreatePerson(ctx, Person{Family: "Svensson", Given: "Anna", IOFID: " 22 "})
		require.NoError(t, err)
		again11, _, err = tx.FindOrCreatePerson(ctx, Person{Family: "Svensson", Given: "Anna", IOFID: "11"})
		require.NoError(t, err)
		idless, _, err = tx.FindOrCreatePerson(ctx, Person{Family: "Svensson", Given: "Anna"})
		return err
	})

	assert.True(t, created22)
	assert.NotEqual(t, anna11, anna22, "namesakes with different ids are different people")
	assert.Equal(t, anna11, again11)
	assert.NotContains(t, []int64{anna11, anna22}, idless, "an id-less namesake is ambiguous between two ids")
}

func TestFindOrCreatePerson_IOFIDFallback(t *testing.T) {
	s := createTestStore(t)

	var first, withID, withoutID int64
	var withIDCreated bool
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		var err error
		first, _, err = tx.FindOrCreatePerson(ctx, Person{Family: "Ek", Given: "Johan"})
		require.NoError(t, err)
		withID, withIDCreated, err = tx.FindOrCreatePerson(ctx, Person{Family: "Ek", Given: "Johan", IOFID: "103"})
		require.NoError(t, err)
		withoutID, _, err = tx.FindOrCreatePerson(ctx, Person{Family: "Ek", Given: "Johan"})
		return err
	})

	assert.False(t, withIDCreated)
	assert.Equal(t, first, withID, "a person with an id claims the id-less row")
	assert.Equal(t, first, withoutID, "the only namesake is matched without an id")

	var iofID string
	require.NoError(t, s.db.QueryRow(`SELECT iof_id FROM persons WHERE id = ?`, first).Scan(&iofID))
	assert.Equal(t, "103", iofID)
}

func TestFindOrCreatePersonResult_ForeignKeys(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Tx) error {
		_, _, err := tx.FindOrCreatePersonResult(ctx, PersonResult{ClassResultID: 404, PersonID: 404})
		return err
	})
	assert.Error(t, err)
}

func TestUpsertPersonRaceResult_UpdatesExisting(t *testing.T) {
	s := createTestStore(t)
	_, classResultID := seedClassResult(t, s)

	var personResultID, firstID, secondID int64
	var firstCreated, secondCreated bool
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		personID, _, err := tx.FindOrCreatePerson(ctx, Person{Family: "Nilsson", Given: "Erik"})
		require.NoError(t, err)
		personResultID, _, err = tx.FindOrCreatePersonResult(ctx, PersonResult{ClassResultID: classResultID, PersonID: personID})
		require.NoError(t, err)

		firstID, firstCreated, err = tx.UpsertPersonRaceResult(ctx, RaceResult{
			PersonResultID: personResultID, Status: "Active", BibNumber: "101",
		})
		require.NoError(t, err)

		secondID, secondCreated, err = tx.UpsertPersonRaceResult(ctx, RaceResult{
			PersonResultID: personResultID, RaceNumber: 1, Status: "OK", BibNumber: "101",
			Time: float(2400), Position: integer(1),
		})
		return err
	})

	assert.True(t, firstCreated)
	assert.False(t, secondCreated)
	assert.Equal(t, firstID, secondID)

	rows, err := s.RaceResults(context.Background(), classResultID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "OK", rows[0].Result.Status)
	require.NotNil(t, rows[0].Result.Time)
	assert.Equal(t, 2400.0, *rows[0].Result.Time)
	require.NotNil(t, rows[0].Result.Position)
	assert.Equal(t, 1, *rows[0].Result.Position)
}

func TestReplaceSplitTimes(t *testing.T) {
	s := createTestStore(t)
	_, classResultID := seedClassResult(t, s)

	var raceID int64
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		personID, _, err := tx.FindOrCreatePerson(ctx, Person{Family: "Berg", Given: "Lars"})
		require.NoError(t, err)
		prID, _, err := tx.FindOrCreatePersonResult(ctx, PersonResult{ClassResultID: classResultID, PersonID: personID})
		require.NoError(t, err)
		raceID, _, err = tx.UpsertPersonRaceResult(ctx, RaceResult{PersonResultID: prID, Status: "OK"})
		require.NoError(t, err)

		return tx.ReplaceSplitTimes(ctx, raceID, []SplitTime{
			{ControlCode: "31", Time: float(600)},
			{ControlCode: "32", Time: float(1300)},
			{ControlCode: "33", Time: float(2000)},
		})
	})

	// A corrected list drops the last control and fixes the second.
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		return tx.ReplaceSplitTimes(ctx, raceID, []SplitTime{
			{ControlCode: "31", Time: float(600)},
			{ControlCode: "32", Status: "Missing"},
		})
	})

	rows, err := s.RaceResults(context.Background(), classResultID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	splits := rows[0].Splits
	require.Len(t, splits, 2)
	assert.Equal(t, SplitTime{Sequence: 1, Status: "OK", ControlCode: "31", Time: float(600)}, splits[0])
	assert.Equal(t, SplitTime{Sequence: 2, Status: "Missing", ControlCode: "32"}, splits[1])
}

func TestCreateEvent_Strict(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev, err := s.CreateEvent(ctx, Event{Name: " Night Sprint "})
	require.NoError(t, err)
	assert.NotZero(t, ev.ID)
	assert.Equal(t, "Night Sprint", ev.Name)

	_, err = s.CreateEvent(ctx, Event{Name: "night sprint"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestRecordImportRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := ImportRun{
		ID:         "run-0001",
		Source:     "results.xml",
		StartedAt:  "2024-04-20T12:00:00.000Z",
		FinishedAt: "2024-04-20T12:00:01.000Z",
		Status:     RunSucceeded,
		Created:    12,
		Warnings:   []string{"split after finish"},
	}
	require.NoError(t, s.RecordImportRun(ctx, run))

	run.Status = RunFailed
	require.NoError(t, s.RecordImportRun(ctx, run), "duplicate ids are ignored")

	runs, err := s.ListImportRuns(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunSucceeded, runs[0].Status)
	assert.Equal(t, []string{"split after finish"}, runs[0].Warnings)
	assert.Nil(t, runs[0].ResultListID)
}
