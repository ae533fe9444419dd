package importer

// Counts tallies find-or-create outcomes for one level of the hierarchy.
type Counts struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
}

func (c *Counts) add(created bool) {
	if created {
		c.Created++
	} else {
		c.Existing++
	}
}

// Report summarises one import.
type Report struct {
	RunID        string   `json:"run_id"`
	Source       string   `json:"source"`
	Status       string   `json:"status"`
	EventID      int64    `json:"event_id,omitempty"`
	ResultListID int64    `json:"result_list_id,omitempty"`
	ListStatus   string   `json:"list_status,omitempty"`
	Warnings     []string `json:"warnings"`

	Organisations Counts `json:"organisations"`
	Events        Counts `json:"events"`
	ResultLists   Counts `json:"result_lists"`
	EventClasses  Counts `json:"event_classes"`
	Courses       Counts `json:"courses"`
	ClassResults  Counts `json:"class_results"`
	Persons       Counts `json:"persons"`
	PersonResults Counts `json:"person_results"`
	RaceResults   Counts `json:"race_results"`
	SplitTimes    int    `json:"split_times"`
}

// Level is one named row of a report.
type Level struct {
	Name string
	Counts
}

// Levels returns the per-level counts in hierarchy order.
func (r *Report) Levels() []Level {
	return []Level{
		{"organisations", r.Organisations},
		{"events", r.Events},
		{"result_lists", r.ResultLists},
		{"event_classes", r.EventClasses},
		{"courses", r.Courses},
		{"class_results", r.ClassResults},
		{"persons", r.Persons},
		{"person_results", r.PersonResults},
		{"race_results", r.RaceResults},
	}
}

// Created returns the number of rows inserted across all levels.
func (r *Report) Created() int {
	n := 0
	for _, l := range r.Levels() {
		n += l.Created
	}
	return n
}

// Existing returns the number of rows found already stored across all levels.
func (r *Report) Existing() int {
	n := 0
	for _, l := range r.Levels() {
		n += l.Existing
	}
	return n
}

// resetCounts clears counters after a rolled back transaction.
func (r *Report) resetCounts() {
	keep := *r
	*r = Report{
		RunID:      keep.RunID,
		Source:     keep.Source,
		Status:     keep.Status,
		ListStatus: keep.ListStatus,
		Warnings:   keep.Warnings,
	}
}
