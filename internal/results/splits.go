package results

import (
	"fmt"

	"github.com/roach88/iofimport/internal/iof"
)

// Split check codes.
const (
	WarnDecreasingSplit = "DECREASING_SPLIT"
	WarnSplitAfterTotal = "SPLIT_AFTER_FINISH"
	WarnMissingSplit    = "MISSING_SPLIT"
	WarnControlCount    = "CONTROL_COUNT"
)

// Warning is a consistency problem in one race result. It does not make the
// result invalid.
type Warning struct {
	Code        string `json:"code"`
	ControlCode string `json:"control_code,omitempty"`
	Message     string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// CheckSplits reports split times that contradict each other, the total
// time or the course.
func CheckSplits(e Entry, course Course) []Warning {
	var warnings []Warning

	var last float64
	var lastCode string
	punched := 0
	for _, st := range e.Splits {
		switch st.Status {
		case iof.SplitAdditional:
			continue
		case iof.SplitMissing:
			if e.Status == iof.StatusOK {
				warnings = append(warnings, Warning{
					Code:        WarnMissingSplit,
					ControlCode: st.ControlCode,
					Message:     fmt.Sprintf("control %s missing on a result with status OK", st.ControlCode),
				})
			}
			continue
		}

		punched++
		if st.Time == nil {
			continue
		}
		t := *st.Time
		if lastCode != "" && t < last {
			warnings = append(warnings, Warning{
				Code:        WarnDecreasingSplit,
				ControlCode: st.ControlCode,
				Message:     fmt.Sprintf("control %s at %s is before control %s at %s", st.ControlCode, FormatDuration(t), lastCode, FormatDuration(last)),
			})
		}
		if e.Time != nil && t > *e.Time {
			warnings = append(warnings, Warning{
				Code:        WarnSplitAfterTotal,
				ControlCode: st.ControlCode,
				Message:     fmt.Sprintf("control %s at %s is after the finish at %s", st.ControlCode, FormatDuration(t), FormatDuration(*e.Time)),
			})
		}
		last, lastCode = t, st.ControlCode
	}

	if e.Status == iof.StatusOK && course.NumberOfControls != nil && len(e.Splits) > 0 && punched != *course.NumberOfControls {
		warnings = append(warnings, Warning{
			Code:    WarnControlCount,
			Message: fmt.Sprintf("%d controls punched, course has %d", punched, *course.NumberOfControls),
		})
	}
	return warnings
}

// Leg is the time between two consecutive controls. From is "S" for the
// start and To is "F" for the finish.
type Leg struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Duration *float64 `json:"duration,omitempty"`
}

// Start and finish pseudo controls used in legs.
const (
	LegStart  = "S"
	LegFinish = "F"
)

// Legs splits a race into per-leg durations. A control without a valid time
// yields a leg without duration, and the next leg is measured from the last
// control that had one. Additional punches are ignored.
func Legs(splits []Split, total *float64) []Leg {
	legs := []Leg{}
	prevCode, prev := LegStart, 0.0
	for _, st := range splits {
		if st.Status == iof.SplitAdditional {
			continue
		}
		if st.Status == iof.SplitMissing || st.Time == nil {
			legs = append(legs, Leg{From: prevCode, To: st.ControlCode})
			continue
		}
		d := roundTime(*st.Time - prev)
		legs = append(legs, Leg{From: prevCode, To: st.ControlCode, Duration: &d})
		prevCode, prev = st.ControlCode, *st.Time
	}
	if total != nil {
		d := roundTime(*total - prev)
		legs = append(legs, Leg{From: prevCode, To: LegFinish, Duration: &d})
	}
	return legs
}

// FormatDuration renders seconds as m:ss, or h:mm:ss from one hour on.
// Fractions of a second are kept with one decimal.
func FormatDuration(seconds float64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	whole := int64(seconds)
	frac := seconds - float64(whole)
	h, m, s := whole/3600, whole%3600/60, whole%60

	var out string
	if h > 0 {
		out = fmt.Sprintf("%d:%02d:%02d", h, m, s)
	} else {
		out = fmt.Sprintf("%d:%02d", m, s)
	}
	if tenths := int64(frac*10 + 1e-6); tenths > 0 {
		out += fmt.Sprintf(".%d", tenths)
	}
	return sign + out
}
