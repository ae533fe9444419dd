package iof

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/iofimport/internal/testutil"
)

func TestDecode_CompleteList(t *testing.T) {
	doc, err := DecodeBytes([]byte(testutil.CompleteResultList))
	require.NoError(t, err)

	assert.Equal(t, "3.0", doc.IOFVersion)
	assert.Equal(t, "OE12", doc.Creator)
	assert.Equal(t, "Complete", doc.Status)
	assert.Equal(t, "Spring Cup 2024", doc.Event.Name)
	assert.Equal(t, []string{"Individual"}, doc.Event.Forms)
	require.Len(t, doc.Event.Organisers, 1)
	assert.Equal(t, "Göteborgs OF", doc.Event.Organisers[0].Name)

	require.Len(t, doc.ClassResults, 2)
	h21 := doc.ClassResults[0]
	assert.Equal(t, "H21", h21.Class.Name)
	assert.Equal(t, "M", h21.Class.Sex)
	assert.Equal(t, 1.0, h21.Resolution())
	require.Len(t, h21.Courses, 1)
	require.NotNil(t, h21.Courses[0].Length)
	assert.Equal(t, 5200.0, *h21.Courses[0].Length)
	assert.Equal(t, 1, h21.Courses[0].Race())

	require.Len(t, h21.PersonResults, 3)
	first := h21.PersonResults[0]
	assert.Equal(t, "Nilsson", first.Person.Name.Family)
	require.NotNil(t, first.Organisation)
	assert.Equal(t, "OK Linné", first.Organisation.Name)
	require.Len(t, first.Results, 1)
	race := first.Results[0]
	require.NotNil(t, race.Time)
	assert.Equal(t, 2400.0, *race.Time)
	require.NotNil(t, race.Position)
	assert.Equal(t, 1, *race.Position)
	assert.Len(t, race.SplitTimes, 3)

	missing := h21.PersonResults[2].Results[0].SplitTimes[1]
	assert.Equal(t, "Missing", missing.Status)
	assert.Nil(t, missing.Time)
}

func TestDecode_Latin1(t *testing.T) {
	doc, err := DecodeBytes(testutil.Latin1ResultList())
	require.NoError(t, err)

	assert.Equal(t, "Vårträffen", doc.Event.Name)
	assert.Equal(t, "Öppen", doc.ClassResults[0].Class.Name)
	assert.Equal(t, "Åström", doc.ClassResults[0].PersonResults[0].Person.Name.Family)
}

func TestDecode_RejectsOtherRoot(t *testing.T) {
	_, err := DecodeBytes([]byte(`<?xml version="1.0"?><EntryList iofVersion="3.0"></EntryList>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotResultList))
	assert.Contains(t, err.Error(), "EntryList")
}

func TestDecode_EmptyDocument(t *testing.T) {
	_, err := Decode(strings.NewReader("   "))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotResultList))
}

func TestDecode_MalformedXML(t *testing.T) {
	_, err := DecodeBytes([]byte(`<ResultList><Event><Name>x</Event></ResultList>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode result list")
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"", false},
		{"3.0", false},
		{"3.0.1", false},
		{"2.0.3", true},
		{"4.0", true},
		{"three", true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := CheckVersion(tt.version)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedVersion))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseDateTime(t *testing.T) {
	want := time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"zone offset", "2024-04-20T12:00:00+02:00", want},
		{"utc", "2024-04-20T10:00:00Z", want},
		{"fraction with zone", "2024-04-20T10:00:00.250Z", want.Add(250 * time.Millisecond)},
		{"zoneless", "2024-04-20T10:00:00", want},
		{"zoneless fraction", "2024-04-20T10:00:00.5", want.Add(500 * time.Millisecond)},
		{"space separator", "2024-04-20 10:00:00", want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := ParseDateTime("20 April")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("1992-03-14")
	require.NoError(t, err)
	assert.Equal(t, "1992-03-14", got)

	got, err = ParseDate("1992-03-14+01:00")
	require.NoError(t, err)
	assert.Equal(t, "1992-03-14", got)

	_, err = ParseDate("14/03/1992")
	assert.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "", FormatTime(time.Time{}))
	ts := time.Date(2024, 4, 20, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2024-04-20T10:00:00.000Z", FormatTime(ts))
}
