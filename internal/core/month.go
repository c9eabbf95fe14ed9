package core

import (
	"fmt"
	"strings"
	"time"
)

// Month is a calendar month in a specific year.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth returns the Month for year and month.
func NewMonth(year int, month time.Month) Month {
	return Month{Year: year, Month: month}
}

// MonthOf returns the Month in which t occurs.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String returns the month formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) Validate() error {
	if m.Month < time.January || m.Month > time.December || m.Year < 1900 || m.Year > 9999 {
		return ErrInvalidMonth
	}
	return nil
}

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// AddDate returns the month n months after m (n may be negative).
func (m Month) AddDate(n int) Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return MonthOf(t)
}

// Contains reports whether t falls inside m.
func (m Month) Contains(t time.Time) bool {
	return !t.IsZero() && t.Year() == m.Year && t.Month() == m.Month
}

// ParseMonth parses a month cell. Besides YYYY-MM it accepts anything
// ParseTimestamp accepts, since the sheet may have turned a typed month
// into a date.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Month{}, ErrInvalidMonth
	}
	for _, layout := range []string{"2006-01", "2006/01", "01/2006", "Jan 2006", "January 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthOf(t), nil
		}
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return MonthOf(t), nil
}
