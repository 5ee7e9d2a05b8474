package launch

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrPlaceholder reports a time such as "TBD" or "NET March" that names
	// no concrete date.
	ErrPlaceholder = errors.New("placeholder launch time")
	// ErrUnparsedTime reports a time that matches no known layout.
	ErrUnparsedTime = errors.New("unrecognized launch time")
)

var placeholders = []string{"TBD", "NET", "Unknown", "?"}

var datedLayouts = []string{
	"2 January 2006 15:04:05",
	"2 January 2006 15:04",
	"2 January 2006",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"January 2 2006",
}

var undatedLayouts = []string{
	"2 January 15:04:05",
	"2 January 15:04",
	"2 January",
	"January 2 15:04",
	"January 2",
}

// IsPlaceholder reports whether s carries a scheduling placeholder token.
func IsPlaceholder(s string) bool {
	for _, p := range placeholders {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// ParseTime parses a normalized launch time in UTC. Times without a year,
// which is how world lists write them, take the supplied year.
func ParseTime(s string, year int) (time.Time, error) {
	if IsPlaceholder(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrPlaceholder, s)
	}
	norm := strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")

	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, norm); err == nil {
			return t, nil
		}
	}
	for _, layout := range undatedLayouts {
		t, err := time.Parse(layout, norm)
		if err != nil {
			continue
		}
		if year <= 0 {
			return time.Time{}, fmt.Errorf("%w: %q has no year", ErrUnparsedTime, s)
		}
		return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsedTime, s)
}

// HasDate reports whether s is a concrete date in any known layout, year or
// not.
func HasDate(s string) bool {
	// 2000 is a leap year, so "29 February" is accepted.
	_, err := ParseTime(s, 2000)
	return err == nil
}
