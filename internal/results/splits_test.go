package results

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/iofimport/internal/iof"
)

func ok(code string, t float64) Split {
	return Split{ControlCode: code, Status: iof.SplitOK, Time: seconds(t)}
}

func codes(warnings []Warning) []string {
	out := []string{}
	for _, w := range warnings {
		out = append(out, w.Code)
	}
	return out
}

func TestCheckSplits(t *testing.T) {
	three := Course{NumberOfControls: place(3)}

	tests := []struct {
		name   string
		entry  Entry
		course Course
		want   []string
	}{
		{
			name: "clean",
			entry: Entry{Status: iof.StatusOK, Time: seconds(2400), Splits: []Split{
				ok("31", 600), ok("32", 1300), ok("33", 2000),
			}},
			course: three,
			want:   []string{},
		},
		{
			name: "decreasing",
			entry: Entry{Status: iof.StatusOK, Time: seconds(2400), Splits: []Split{
				ok("31", 600), ok("32", 500), ok("33", 2000),
			}},
			course: three,
			want:   []string{WarnDecreasingSplit},
		},
		{
			name: "after finish",
			entry: Entry{Status: iof.StatusOK, Time: seconds(1900), Splits: []Split{
				ok("31", 600), ok("32", 1300), ok("33", 2000),
			}},
			course: three,
			want:   []string{WarnSplitAfterTotal},
		},
		{
			name: "missing on OK",
			entry: Entry{Status: iof.StatusOK, Time: seconds(2400), Splits: []Split{
				ok("31", 600), {ControlCode: "32", Status: iof.SplitMissing}, ok("33", 2000),
			}},
			course: three,
			want:   []string{WarnMissingSplit, WarnControlCount},
		},
		{
			name: "missing on MissingPunch is expected",
			entry: Entry{Status: iof.StatusMissingPunch, Time: seconds(2400), Splits: []Split{
				ok("31", 640), {ControlCode: "32", Status: iof.SplitMissing}, ok("33", 2010),
			}},
			course: three,
			want:   []string{},
		},
		{
			name: "extra control",
			entry: Entry{Status: iof.StatusOK, Time: seconds(2400), Splits: []Split{
				ok("31", 600), ok("32", 1300), ok("33", 2000), ok("34", 2100),
			}},
			course: three,
			want:   []string{WarnControlCount},
		},
		{
			name: "additional punches do not count",
			entry: Entry{Status: iof.StatusOK, Time: seconds(2400), Splits: []Split{
				ok("31", 600), {ControlCode: "99", Status: iof.SplitAdditional, Time: seconds(5000)}, ok("32", 1300), ok("33", 2000),
			}},
			course: three,
			want:   []string{},
		},
		{
			name:   "no splits recorded",
			entry:  Entry{Status: iof.StatusOK, Time: seconds(2400)},
			course: three,
			want:   []string{},
		},
		{
			name: "unknown course size",
			entry: Entry{Status: iof.StatusOK, Time: seconds(2400), Splits: []Split{
				ok("31", 600),
			}},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codes(CheckSplits(tt.entry, tt.course))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CheckSplits() codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckSplits_Message(t *testing.T) {
	warnings := CheckSplits(Entry{Status: iof.StatusOK, Time: seconds(3700), Splits: []Split{
		ok("31", 3650), ok("32", 3600),
	}}, Course{})

	require.Len(t, warnings, 1)
	assert.Equal(t, "32", warnings[0].ControlCode)
	assert.Equal(t, "DECREASING_SPLIT: control 32 at 1:00:00 is before control 31 at 1:00:50", warnings[0].String())
}

func TestLegs(t *testing.T) {
	legs := Legs([]Split{
		ok("31", 600),
		{ControlCode: "32", Status: iof.SplitMissing},
		{ControlCode: "99", Status: iof.SplitAdditional, Time: seconds(900)},
		ok("33", 2000),
	}, seconds(2400))

	want := []Leg{
		{From: LegStart, To: "31", Duration: seconds(600)},
		{From: "31", To: "32"},
		{From: "31", To: "33", Duration: seconds(1400)},
		{From: "33", To: LegFinish, Duration: seconds(400)},
	}
	if diff := cmp.Diff(want, legs); diff != "" {
		t.Errorf("Legs() mismatch (-want +got):\n%s", diff)
	}
}

func TestLegs_NoTotal(t *testing.T) {
	legs := Legs([]Split{ok("31", 600)}, nil)
	require.Len(t, legs, 1)
	assert.Equal(t, "31", legs[0].To)

	assert.Empty(t, Legs(nil, nil))
	assert.NotNil(t, Legs(nil, nil))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{2460, "41:00"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{61.5, "1:01.5"},
		{-60, "-1:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), "FormatDuration(%v)", tt.in)
	}
}
