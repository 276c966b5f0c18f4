// Package timeutil parses the assortment of date formats found in scraped
// markup and renders the formats the remote forms expect.
package timeutil

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	// FormLayout is the minute precision local datetime used by html
	// datetime-local inputs.
	FormLayout = "2006-01-02T15:04"
	// UtcLayout is the second precision UTC timestamp accepted by JSON APIs.
	UtcLayout = "2006-01-02T15:04:05Z"
	// SubmissionLayout is the layout of submission time attributes.
	SubmissionLayout = "2006-01-02 15:04:05 -0700"
)

var zonedLayouts = []string{
	time.RFC3339Nano,
	SubmissionLayout,
	"2006-01-02T15:04Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	FormLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseIn parses s with a few exact layouts first, falling back to
// dateparse for anything else. Values without a zone are read in loc.
func ParseIn(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return dateparse.ParseIn(s, loc)
}

// ParseOptional parses s in UTC. An empty (or blank) string is not an error,
// it yields nil.
func ParseOptional(s string) (*time.Time, error) {
	return ParseOptionalIn(s, time.UTC)
}

// ParseOptionalIn is ParseOptional for values without a zone that belong to
// loc.
func ParseOptionalIn(s string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseIn(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ReplaceLocation keeps the wall clock of t and swaps its zone for loc, it
// does not convert.
func ReplaceLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		loc,
	)
}

// FormatUtc converts t to UTC and renders it with UtcLayout.
func FormatUtc(t time.Time) string {
	return t.UTC().Format(UtcLayout)
}

// FormatForm renders t's wall clock with FormLayout, nil renders as "".
func FormatForm(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(FormLayout)
}

// Ordered reports whether the non-nil times are non-decreasing in the order
// given. nil entries are skipped.
func Ordered(times ...*time.Time) bool {
	var previous *time.Time
	for _, t := range times {
		if t == nil {
			continue
		}
		if previous != nil && t.Before(*previous) {
			return false
		}
		previous = t
	}
	return true
}
