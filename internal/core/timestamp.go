package core

import (
	"errors"
	"strings"
	"time"
)

// LedgerTimestampLayout is how timestamps are written to the savings
// ledger. Fractional seconds appear only when present.
const LedgerTimestampLayout = "2006-01-02T15:04:05.999999999"

var ErrInvalidTimestamp = errors.New("invalid timestamp")

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"02-Jan-2006",
}

// ParseTimestamp parses statement and sheet timestamps keeping the wall
// clock: a zone offset is dropped and the result is labelled UTC. Month
// bucketing and the imported date/time columns use this reading.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := parseAny(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
}

// ParseInstant parses like ParseTimestamp but converts a timestamp that
// carries a zone offset to UTC. Values without an offset are read as UTC.
// The savings ledger is keyed on this reading.
func ParseInstant(s string) (time.Time, error) {
	t, err := parseAny(s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseAny(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}
