package iof

import (
	"fmt"
	"strings"
)

// Validation error codes.
const (
	CodeMissingField = "V001"
	CodeInvalidEnum  = "V002"
	CodeInvalidTime  = "V003"
	CodeInvalidRange = "V004"
	CodeDuplicate    = "V005"
)

// ValidationError describes one structural problem in a document.
type ValidationError struct {
	Path    string `json:"path"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Code, e.Path, e.Field, e.Message)
}

// validator accumulates errors; it never stops at the first one.
type validator struct {
	errs []ValidationError
}

func (v *validator) add(path, field, code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Path:    path,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (v *validator) enum(path, field string, err error) {
	if err != nil {
		v.add(path, field, CodeInvalidEnum, "%v", err)
	}
}

func (v *validator) dateTime(path, field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := ParseDateTime(value); err != nil {
		v.add(path, field, CodeInvalidTime, "%v", err)
	}
}

// Validate checks the document for problems that would make an import
// ambiguous or lossy. It returns every problem found.
func Validate(doc *ResultList) []ValidationError {
	v := &validator{}

	_, err := ParseResultListStatus(doc.Status)
	v.enum("", "status", err)
	v.dateTime("", "createTime", doc.CreateTime)

	v.validateEvent("Event", &doc.Event)

	for i := range doc.ClassResults {
		v.validateClassResult(fmt.Sprintf("ClassResult[%d]", i+1), &doc.ClassResults[i])
	}

	return v.errs
}

func (v *validator) validateEvent(path string, ev *Event) {
	if strings.TrimSpace(ev.Name) == "" {
		v.add(path, "Name", CodeMissingField, "event name is required")
	}
	_, err := ParseEventStatus(ev.Status)
	v.enum(path, "Status", err)
	_, err = ParseEventClassification(ev.Classification)
	v.enum(path, "Classification", err)
	for _, form := range ev.Forms {
		_, err = ParseEventForm(form)
		v.enum(path, "Form", err)
	}
	if ev.StartTime != nil && strings.TrimSpace(ev.StartTime.Date) != "" {
		if _, err := ParseDate(ev.StartTime.Date); err != nil {
			v.add(path, "StartTime/Date", CodeInvalidTime, "%v", err)
		}
	}
	for i, org := range ev.Organisers {
		if strings.TrimSpace(org.Name) == "" {
			v.add(fmt.Sprintf("%s/Organiser[%d]", path, i+1), "Name", CodeMissingField, "organisation name is required")
		}
	}
}

func (v *validator) validateClassResult(path string, cr *ClassResult) {
	if strings.TrimSpace(cr.Class.Name) == "" {
		v.add(path, "Class/Name", CodeMissingField, "class name is required")
	}
	_, err := ParseEventClassStatus(cr.Class.Status)
	v.enum(path, "Class/Status", err)
	_, err = ParseSex(cr.Class.Sex)
	v.enum(path, "Class/sex", err)
	_, err = ParseResultListMode(cr.Class.ResultListMode)
	v.enum(path, "Class/resultListMode", err)

	min, max := cr.Class.TeamSize()
	if min < 1 {
		v.add(path, "Class/minNumberOfTeamMembers", CodeInvalidRange, "must be at least 1, got %d", min)
	}
	if min > max {
		v.add(path, "Class/maxNumberOfTeamMembers", CodeInvalidRange, "maximum team size %d is below minimum %d", max, min)
	}
	if cr.Resolution() <= 0 {
		v.add(path, "timeResolution", CodeInvalidRange, "must be positive, got %g", cr.Resolution())
	}

	seenRace := make(map[int]bool)
	for i := range cr.Courses {
		course := &cr.Courses[i]
		coursePath := fmt.Sprintf("%s/Course[%d]", path, i+1)
		if course.Race() < 1 {
			v.add(coursePath, "raceNumber", CodeInvalidRange, "must be at least 1, got %d", course.Race())
		}
		if seenRace[course.Race()] {
			v.add(coursePath, "raceNumber", CodeInvalidRange, "duplicate course for race %d", course.Race())
		}
		seenRace[course.Race()] = true
		if course.Length != nil && *course.Length < 0 {
			v.add(coursePath, "Length", CodeInvalidRange, "must not be negative")
		}
		if course.NumberOfControls != nil && *course.NumberOfControls < 0 {
			v.add(coursePath, "NumberOfControls", CodeInvalidRange, "must not be negative")
		}
	}

	seenPerson := make(map[string]string)
	for i := range cr.PersonResults {
		prPath := fmt.Sprintf("%s/PersonResult[%d]", path, i+1)
		v.validatePersonResult(prPath, &cr.PersonResults[i])

		key, named := personKey(&cr.PersonResults[i].Person)
		if !named {
			continue
		}
		if first, ok := seenPerson[key]; ok {
			v.add(prPath, "Person", CodeDuplicate, "same competitor as %s", first)
			continue
		}
		seenPerson[key] = prPath
	}
}

// personKey is what tells two competitors of a class apart. Nameless persons
// are already reported and have no key.
func personKey(p *Person) (string, bool) {
	family, given := NormalizeKey(p.Name.Family), NormalizeKey(p.Name.Given)
	if family == "" && given == "" {
		return "", false
	}
	return strings.Join([]string{family, given, strings.TrimSpace(p.BirthDate), strings.TrimSpace(p.ID)}, "\x00"), true
}

func (v *validator) validatePersonResult(path string, pr *PersonResult) {
	p := &pr.Person
	if strings.TrimSpace(p.Name.Family) == "" && strings.TrimSpace(p.Name.Given) == "" {
		v.add(path, "Person/Name", CodeMissingField, "family or given name is required")
	}
	_, err := ParseSex(p.Sex)
	v.enum(path, "Person/sex", err)
	if strings.TrimSpace(p.BirthDate) != "" {
		if _, err := ParseDate(p.BirthDate); err != nil {
			v.add(path, "Person/BirthDate", CodeInvalidTime, "%v", err)
		}
	}
	if pr.Organisation != nil && strings.TrimSpace(pr.Organisation.Name) == "" {
		v.add(path, "Organisation/Name", CodeMissingField, "organisation name is required")
	}

	seenRace := make(map[int]bool)
	for i := range pr.Results {
		v.validateRaceResult(fmt.Sprintf("%s/Result[%d]", path, i+1), &pr.Results[i], seenRace)
	}
}

func (v *validator) validateRaceResult(path string, r *PersonRaceResult, seenRace map[int]bool) {
	if r.Race() < 1 {
		v.add(path, "raceNumber", CodeInvalidRange, "must be at least 1, got %d", r.Race())
	}
	if seenRace[r.Race()] {
		v.add(path, "raceNumber", CodeInvalidRange, "duplicate result for race %d", r.Race())
	}
	seenRace[r.Race()] = true

	_, err := ParseResultStatus(r.Status)
	v.enum(path, "Status", err)
	v.dateTime(path, "StartTime", r.StartTime)
	v.dateTime(path, "FinishTime", r.FinishTime)
	if r.Time != nil && *r.Time < 0 {
		v.add(path, "Time", CodeInvalidRange, "must not be negative")
	}
	if r.Position != nil && *r.Position < 1 {
		v.add(path, "Position", CodeInvalidRange, "must be at least 1, got %d", *r.Position)
	}

	for i, split := range r.SplitTimes {
		splitPath := fmt.Sprintf("%s/SplitTime[%d]", path, i+1)
		_, err := ParseSplitTimeStatus(split.Status)
		v.enum(splitPath, "status", err)
		if strings.TrimSpace(split.ControlCode) == "" {
			v.add(splitPath, "ControlCode", CodeMissingField, "control code is required")
		}
		if split.Time != nil && *split.Time < 0 {
			v.add(splitPath, "Time", CodeInvalidRange, "must not be negative")
		}
	}
}
