package launch

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate inspects records before persistence and returns one warning per
// missing or suspicious field. It never fails; callers log the warnings.
func Validate[R Entry[R]](records []R) []string {
	var warnings []string
	for _, rec := range records {
		for _, name := range rec.MissingFields() {
			warnings = append(warnings, fmt.Sprintf("flight %d: missing %s", rec.FlightNumber(), name))
		}
		if l, ok := any(rec).(Launch); ok {
			warnings = append(warnings, massWarnings(l)...)
		}
	}
	return warnings
}

func massWarnings(l Launch) []string {
	if isBlank(l.Mass) {
		return nil
	}
	mass, err := strconv.ParseFloat(l.Mass, 64)
	switch {
	case err != nil:
		return []string{fmt.Sprintf("flight %d: non-numeric mass %q", l.Flight, l.Mass)}
	case mass == 0:
		return []string{fmt.Sprintf("flight %d: suspicious mass %q", l.Flight, l.Mass)}
	default:
		return nil
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
