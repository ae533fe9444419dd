package iof

import (
	"fmt"
	"strings"
)

// EventStatus is the sanctioning status of an event.
type EventStatus string

const (
	EventStatusPlanned     EventStatus = "Planned"
	EventStatusApplied     EventStatus = "Applied"
	EventStatusProposed    EventStatus = "Proposed"
	EventStatusSanctioned  EventStatus = "Sanctioned"
	EventStatusCanceled    EventStatus = "Canceled"
	EventStatusRescheduled EventStatus = "Rescheduled"
)

// EventClassification is the level of an event.
type EventClassification string

const (
	ClassificationInternational EventClassification = "International"
	ClassificationNational      EventClassification = "National"
	ClassificationRegional      EventClassification = "Regional"
	ClassificationLocal         EventClassification = "Local"
	ClassificationClub          EventClassification = "Club"
)

// EventForm tells whether competitors run alone, in teams or in relays.
type EventForm string

const (
	EventFormIndividual EventForm = "Individual"
	EventFormTeam       EventForm = "Team"
	EventFormRelay      EventForm = "Relay"
)

// ResultListStatus tells how a result list relates to earlier lists.
type ResultListStatus string

const (
	// ResultListComplete contains all competitors; official results.
	ResultListComplete ResultListStatus = "Complete"
	// ResultListDelta contains only changes since the previous list.
	ResultListDelta ResultListStatus = "Delta"
	// ResultListSnapshot contains the current standings while the event runs.
	ResultListSnapshot ResultListStatus = "Snapshot"
)

// Supersedes reports whether a list of this status replaces earlier lists
// rather than augmenting them.
func (s ResultListStatus) Supersedes() bool {
	return s != ResultListDelta
}

// ResultListMode controls ordering and whether places and times are shown.
type ResultListMode string

const (
	ResultListModeDefault          ResultListMode = "Default"
	ResultListModeUnordered        ResultListMode = "Unordered"
	ResultListModeUnorderedNoTimes ResultListMode = "UnorderedNoTimes"
)

// Sex of a person or class.
type Sex string

const (
	SexFemale Sex = "F"
	SexMale   Sex = "M"
)

// EventClassStatus is the status of a class.
type EventClassStatus string

const (
	ClassStatusNormal           EventClassStatus = "Normal"
	ClassStatusDivided          EventClassStatus = "Divided"
	ClassStatusJoined           EventClassStatus = "Joined"
	ClassStatusInvalidated      EventClassStatus = "Invalidated"
	ClassStatusInvalidatedNoFee EventClassStatus = "InvalidatedNoFee"
)

// ResultStatus is a competitor's status in one race.
type ResultStatus string

const (
	StatusOK                 ResultStatus = "OK"
	StatusFinished           ResultStatus = "Finished"
	StatusMissingPunch       ResultStatus = "MissingPunch"
	StatusDisqualified       ResultStatus = "Disqualified"
	StatusDidNotFinish       ResultStatus = "DidNotFinish"
	StatusActive             ResultStatus = "Active"
	StatusInactive           ResultStatus = "Inactive"
	StatusOverTime           ResultStatus = "OverTime"
	StatusSportingWithdrawal ResultStatus = "SportingWithdrawal"
	StatusNotCompeting       ResultStatus = "NotCompeting"
	StatusMoved              ResultStatus = "Moved"
	StatusMovedUp            ResultStatus = "MovedUp"
	StatusDidNotStart        ResultStatus = "DidNotStart"
	StatusDidNotEnter        ResultStatus = "DidNotEnter"
	StatusCancelled          ResultStatus = "Cancelled"
)

// SplitTimeStatus tells whether a control was punched and belongs to the course.
type SplitTimeStatus string

const (
	SplitOK         SplitTimeStatus = "OK"
	SplitMissing    SplitTimeStatus = "Missing"
	SplitAdditional SplitTimeStatus = "Additional"
)

var (
	eventStatuses = []EventStatus{
		EventStatusPlanned, EventStatusApplied, EventStatusProposed,
		EventStatusSanctioned, EventStatusCanceled, EventStatusRescheduled,
	}
	classifications = []EventClassification{
		ClassificationInternational, ClassificationNational, ClassificationRegional,
		ClassificationLocal, ClassificationClub,
	}
	eventForms        = []EventForm{EventFormIndividual, EventFormTeam, EventFormRelay}
	resultListStatus  = []ResultListStatus{ResultListComplete, ResultListDelta, ResultListSnapshot}
	resultListModes   = []ResultListMode{ResultListModeDefault, ResultListModeUnordered, ResultListModeUnorderedNoTimes}
	sexes             = []Sex{SexFemale, SexMale}
	classStatuses     = []EventClassStatus{ClassStatusNormal, ClassStatusDivided, ClassStatusJoined, ClassStatusInvalidated, ClassStatusInvalidatedNoFee}
	splitTimeStatuses = []SplitTimeStatus{SplitOK, SplitMissing, SplitAdditional}
	resultStatuses    = []ResultStatus{
		StatusOK, StatusFinished, StatusMissingPunch, StatusDisqualified,
		StatusDidNotFinish, StatusActive, StatusInactive, StatusOverTime,
		StatusSportingWithdrawal, StatusNotCompeting, StatusMoved, StatusMovedUp,
		StatusDidNotStart, StatusDidNotEnter, StatusCancelled,
	}
)

// parseEnum matches s exactly against valid. An empty s yields def.
func parseEnum[T ~string](kind, s string, def T, valid []T) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	for _, v := range valid {
		if string(v) == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, s)
}

// ParseEventStatus parses an event status. Empty yields "".
func ParseEventStatus(s string) (EventStatus, error) {
	return parseEnum("event status", s, "", eventStatuses)
}

// ParseEventClassification parses an event classification. Empty yields "".
func ParseEventClassification(s string) (EventClassification, error) {
	return parseEnum("event classification", s, "", classifications)
}

// ParseEventForm parses an event form. Empty yields "".
func ParseEventForm(s string) (EventForm, error) {
	return parseEnum("event form", s, "", eventForms)
}

// ParseResultListStatus parses a result list status. Empty yields Complete.
func ParseResultListStatus(s string) (ResultListStatus, error) {
	return parseEnum("result list status", s, ResultListComplete, resultListStatus)
}

// ParseResultListMode parses a result list mode. Empty yields Default.
func ParseResultListMode(s string) (ResultListMode, error) {
	return parseEnum("result list mode", s, ResultListModeDefault, resultListModes)
}

// ParseSex parses a sex. Empty yields "".
func ParseSex(s string) (Sex, error) {
	return parseEnum("sex", s, "", sexes)
}

// ParseEventClassStatus parses a class status. Empty yields Normal.
func ParseEventClassStatus(s string) (EventClassStatus, error) {
	return parseEnum("class status", s, ClassStatusNormal, classStatuses)
}

// ParseResultStatus parses a competitor status. The status is mandatory.
func ParseResultStatus(s string) (ResultStatus, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("missing result status")
	}
	return parseEnum("result status", s, "", resultStatuses)
}

// ParseSplitTimeStatus parses a split time status. Empty yields OK.
func ParseSplitTimeStatus(s string) (SplitTimeStatus, error) {
	return parseEnum("split time status", s, SplitOK, splitTimeStatuses)
}
