package iof

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/net/html/charset"
)

var (
	// ErrNotResultList is returned when the root element is not ResultList.
	ErrNotResultList = errors.New("document is not an IOF ResultList")

	// ErrUnsupportedVersion is returned for iofVersion values outside 3.x.
	ErrUnsupportedVersion = errors.New("unsupported IOF version")
)

// supportedVersions accepts every 3.x release of the data standard.
var supportedVersions = mustConstraint("^3.0")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// Decode reads a ResultList document from r.
// The encoding declared in the XML prolog is honoured.
func Decode(r io.Reader) (*ResultList, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	start, err := rootElement(dec)
	if err != nil {
		return nil, fmt.Errorf("decode result list: %w", err)
	}
	if start.Name.Local != "ResultList" {
		return nil, fmt.Errorf("%w: root element is <%s>", ErrNotResultList, start.Name.Local)
	}

	var doc ResultList
	if err := dec.DecodeElement(&doc, &start); err != nil {
		return nil, fmt.Errorf("decode result list: %w", err)
	}
	return &doc, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (*ResultList, error) {
	return Decode(bytes.NewReader(data))
}

// rootElement skips the prolog, comments and whitespace up to the first element.
func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, fmt.Errorf("%w: empty document", ErrNotResultList)
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// CheckVersion verifies the iofVersion attribute. An empty value is read as 3.0.
func CheckVersion(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, v, err)
	}
	if !supportedVersions.Check(parsed) {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
	}
	return nil
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseDateTime parses an IOF date-time. Values without a zone are taken as UTC.
// The result is always in UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q", s)
}

// ParseDate parses an IOF date and returns it in YYYY-MM-DD form.
// An optional zone suffix is dropped.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) > len("2006-01-02") {
		s = s[:len("2006-01-02")]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q", s)
	}
	return t.Format("2006-01-02"), nil
}

// FormatTime renders a time in the layout used for storage and natural keys.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
