package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date representation in the output.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Date is a calendar date without time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate accepts the registry's date and timestamp layouts and drops
// everything finer than the day. Timestamps keep the calendar day they were
// written in; they are not shifted to UTC first.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", raw)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// StringPtr renders an optional date; absent dates render as "".
func StringPtr(d *Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
