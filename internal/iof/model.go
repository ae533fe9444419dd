package iof

import "encoding/xml"

// ResultList is the root element of an IOF result list document.
type ResultList struct {
	XMLName      xml.Name      `xml:"ResultList"`
	IOFVersion   string        `xml:"iofVersion,attr"`
	CreateTime   string        `xml:"createTime,attr"`
	Creator      string        `xml:"creator,attr"`
	Status       string        `xml:"status,attr"`
	Event        Event         `xml:"Event"`
	ClassResults []ClassResult `xml:"ClassResult"`
}

// Event describes the competition the result list belongs to.
type Event struct {
	ID             string               `xml:"Id"`
	Name           string               `xml:"Name"`
	StartTime      *DateAndOptionalTime `xml:"StartTime"`
	Status         string               `xml:"Status"`
	Classification string               `xml:"Classification"`
	Forms          []string             `xml:"Form"`
	Organisers     []Organisation       `xml:"Organiser"`
}

// DateAndOptionalTime is the IOF date with an optional time of day.
type DateAndOptionalTime struct {
	Date string `xml:"Date"`
	Time string `xml:"Time"`
}

// ClassResult holds the results of one class.
type ClassResult struct {
	TimeResolution *float64       `xml:"timeResolution,attr"`
	Class          Class          `xml:"Class"`
	Courses        []Course       `xml:"Course"`
	PersonResults  []PersonResult `xml:"PersonResult"`
}

// Resolution returns the time resolution in seconds, defaulting to 1.
func (c *ClassResult) Resolution() float64 {
	if c.TimeResolution == nil {
		return 1
	}
	return *c.TimeResolution
}

// CourseForRace returns the course run in the given race, or nil.
// A single course without a race number applies to every race.
func (c *ClassResult) CourseForRace(race int) *Course {
	for i := range c.Courses {
		if c.Courses[i].Race() == race {
			return &c.Courses[i]
		}
	}
	if len(c.Courses) == 1 && c.Courses[0].RaceNumber == nil {
		return &c.Courses[0]
	}
	return nil
}

// Class is the event class (competition category).
type Class struct {
	ID             string `xml:"Id"`
	Name           string `xml:"Name"`
	ShortName      string `xml:"ShortName"`
	Status         string `xml:"Status"`
	Sex            string `xml:"sex,attr"`
	ResultListMode string `xml:"resultListMode,attr"`
	MinTeamMembers *int   `xml:"minNumberOfTeamMembers,attr"`
	MaxTeamMembers *int   `xml:"maxNumberOfTeamMembers,attr"`
}

// TeamSize returns the minimum and maximum number of team members.
// Both default to 1.
func (c *Class) TeamSize() (min, max int) {
	min, max = 1, 1
	if c.MinTeamMembers != nil {
		min = *c.MinTeamMembers
	}
	if c.MaxTeamMembers != nil {
		max = *c.MaxTeamMembers
	}
	return min, max
}

// Course is a simple race course.
type Course struct {
	RaceNumber       *int     `xml:"raceNumber,attr"`
	ID               string   `xml:"Id"`
	Name             string   `xml:"Name"`
	CourseFamily     string   `xml:"CourseFamily"`
	Length           *float64 `xml:"Length"`
	Climb            *float64 `xml:"Climb"`
	NumberOfControls *int     `xml:"NumberOfControls"`
}

// Race returns the race number, defaulting to 1.
func (c *Course) Race() int {
	if c.RaceNumber == nil {
		return 1
	}
	return *c.RaceNumber
}

// PersonResult is one competitor's entry in a class.
type PersonResult struct {
	Person       Person             `xml:"Person"`
	Organisation *Organisation      `xml:"Organisation"`
	Results      []PersonRaceResult `xml:"Result"`
}

// Person identifies a competitor.
type Person struct {
	Sex       string     `xml:"sex,attr"`
	ID        string     `xml:"Id"`
	Name      PersonName `xml:"Name"`
	BirthDate string     `xml:"BirthDate"`
}

// PersonName is a family and given name pair.
type PersonName struct {
	Family string `xml:"Family"`
	Given  string `xml:"Given"`
}

// Organisation is a club, federation or other organising body.
type Organisation struct {
	ID        string   `xml:"Id"`
	Name      string   `xml:"Name"`
	ShortName string   `xml:"ShortName"`
	Country   *Country `xml:"Country"`
}

// Country carries the ISO 3166 alpha-3 code and a display name.
type Country struct {
	Code string `xml:"code,attr"`
	Name string `xml:",chardata"`
}

// PersonRaceResult is the result of one race for one competitor.
type PersonRaceResult struct {
	RaceNumber  *int        `xml:"raceNumber,attr"`
	BibNumber   string      `xml:"BibNumber"`
	StartTime   string      `xml:"StartTime"`
	FinishTime  string      `xml:"FinishTime"`
	Time        *float64    `xml:"Time"`
	TimeBehind  *float64    `xml:"TimeBehind"`
	Position    *int        `xml:"Position"`
	Status      string      `xml:"Status"`
	SplitTimes  []SplitTime `xml:"SplitTime"`
	ControlCard string      `xml:"ControlCard"`
}

// Race returns the race number, defaulting to 1.
func (r *PersonRaceResult) Race() int {
	if r.RaceNumber == nil {
		return 1
	}
	return *r.RaceNumber
}

// SplitTime is the time a control was punched, in seconds from the start.
type SplitTime struct {
	Status      string   `xml:"status,attr"`
	ControlCode string   `xml:"ControlCode"`
	Time        *float64 `xml:"Time"`
}
