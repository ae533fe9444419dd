package store

import "errors"

var (
	// ErrNotFound is returned when a single-row lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned by strict creates when the natural key is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// DefaultLimit is the page size used when a caller passes limit <= 0.
const DefaultLimit = 100

// Organisation is a club or organising body. Natural key: name.
type Organisation struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	Country   string `json:"country,omitempty"`
	IOFID     string `json:"iof_id,omitempty"`
}

// Event is a competition. Natural key: name.
type Event struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	IOFID          string `json:"iof_id,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
	Status         string `json:"status,omitempty"`
	Classification string `json:"classification,omitempty"`
	Form           string `json:"form,omitempty"`
	OrganisationID *int64 `json:"organisation_id,omitempty"`
}

// ResultList is one published list. Natural key: (event, creator, create time).
type ResultList struct {
	ID         int64  `json:"id"`
	EventID    int64  `json:"event_id"`
	Status     string `json:"status"`
	Creator    string `json:"creator"`
	CreateTime string `json:"create_time"`
	IOFVersion string `json:"iof_version,omitempty"`
}

// EventClass is a competition category of an event. Natural key: (event, name).
type EventClass struct {
	ID             int64  `json:"id"`
	EventID        int64  `json:"event_id"`
	Name           string `json:"name"`
	ShortName      string `json:"short_name,omitempty"`
	ResultListMode string `json:"result_list_mode"`
	Status         string `json:"status"`
	Sex            string `json:"sex,omitempty"`
	MinTeamMembers int    `json:"min_number_of_team_members"`
	MaxTeamMembers int    `json:"max_number_of_team_members"`
}

// Course is the course a class runs in one race. Natural key: (class, race number).
type Course struct {
	ID               int64    `json:"id"`
	EventClassID     int64    `json:"event_class_id"`
	RaceNumber       int      `json:"race_number"`
	Name             string   `json:"name,omitempty"`
	CourseID         string   `json:"course_id,omitempty"`
	CourseFamily     string   `json:"course_family,omitempty"`
	Length           *float64 `json:"length,omitempty"`
	Climb            *float64 `json:"climb,omitempty"`
	NumberOfControls *int     `json:"number_of_controls,omitempty"`
}

// ClassResult links a class to a result list. Natural key: (list, class).
type ClassResult struct {
	ID             int64   `json:"id"`
	ResultListID   int64   `json:"result_list_id"`
	EventClassID   int64   `json:"event_class_id"`
	TimeResolution float64 `json:"time_resolution"`
}

// Person is a competitor. Natural key: (family, given, birth date).
type Person struct {
	ID        int64  `json:"id"`
	Family    string `json:"family"`
	Given     string `json:"given"`
	BirthDate string `json:"birth_date,omitempty"`
	Sex       string `json:"sex,omitempty"`
	IOFID     string `json:"iof_id,omitempty"`
}

// FullName renders "Given Family", skipping empty parts.
func (p Person) FullName() string {
	switch {
	case p.Given == "":
		return p.Family
	case p.Family == "":
		return p.Given
	default:
		return p.Given + " " + p.Family
	}
}

// PersonResult is a person's entry in a class result. Natural key: (class result, person).
type PersonResult struct {
	ID             int64  `json:"id"`
	ClassResultID  int64  `json:"class_result_id"`
	PersonID       int64  `json:"person_id"`
	OrganisationID *int64 `json:"organisation_id,omitempty"`
}

// RaceResult is a person's result in one race. Natural key: (person result, race number).
type RaceResult struct {
	ID             int64    `json:"id"`
	PersonResultID int64    `json:"person_result_id"`
	RaceNumber     int      `json:"race_number"`
	BibNumber      string   `json:"bib_number,omitempty"`
	StartTime      string   `json:"start_time,omitempty"`
	FinishTime     string   `json:"finish_time,omitempty"`
	Time           *float64 `json:"time,omitempty"`
	TimeBehind     *float64 `json:"time_behind,omitempty"`
	Position       *int     `json:"position,omitempty"`
	Status         string   `json:"status"`
	ControlCard    string   `json:"control_card,omitempty"`
}

// SplitTime is one control passage. Natural key: (race result, sequence).
type SplitTime struct {
	Sequence    int      `json:"sequence"`
	Status      string   `json:"status"`
	ControlCode string   `json:"control_code"`
	Time        *float64 `json:"time,omitempty"`
}

// RaceResultRow is a race result joined with the competitor and club.
type RaceResultRow struct {
	Person       Person      `json:"person"`
	Organisation string      `json:"organisation,omitempty"`
	Result       RaceResult  `json:"result"`
	Splits       []SplitTime `json:"splits"`
}

// ClassResultRef is a class result together with the list that published it.
type ClassResultRef struct {
	ClassResult ClassResult `json:"class_result"`
	List        ResultList  `json:"result_list"`
}

// ImportRun records one attempt to import a document.
type ImportRun struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	StartedAt    string   `json:"started_at"`
	FinishedAt   string   `json:"finished_at"`
	Status       string   `json:"status"`
	ResultListID *int64   `json:"result_list_id,omitempty"`
	Created      int      `json:"created"`
	Existing     int      `json:"existing"`
	Warnings     []string `json:"warnings"`
	Error        string   `json:"error,omitempty"`
}

// Import run statuses.
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)
