package scrape

import (
	"regexp"
	"strings"
)

// TimeFormat selects how a date squashed against its clock time is split.
type TimeFormat int

const (
	// TimeNumeric splits "4 January 202501:27" after the four-digit year.
	TimeNumeric TimeFormat = iota
	// TimeDayMonth splits "4 January01:27" after the month name.
	TimeDayMonth
)

const nbsp = "\u00a0"

var (
	footnotePattern = regexp.MustCompile(`\[\d+\]`)
	squashedTime    = map[TimeFormat]*regexp.Regexp{
		TimeNumeric:  regexp.MustCompile(`(\d{4})(\d{2}:\d{2})`),
		TimeDayMonth: regexp.MustCompile(`(\d{1,2}\s+[A-Za-z]+)(\d{2}:\d{2})`),
	}
	massPattern  = regexp.MustCompile(`^(.*)kg`)
	massNoise    = regexp.MustCompile(`[~,\s\x{00A0}]`)
	boosterMarks = []string{"F9" + nbsp + "B5", "F9 B5"}
)

// CleanNonBreakingSpace replaces every U+00A0 with a plain space.
func CleanNonBreakingSpace(s string) string {
	return strings.ReplaceAll(s, nbsp, " ")
}

// StripFootnotes removes citation markers such as "[12]".
func StripFootnotes(s string) string {
	return footnotePattern.ReplaceAllString(s, "")
}

// CleanTime strips footnotes and separates a clock time squashed against the
// date. Input that has neither comes back with only whitespace normalized.
func CleanTime(s string, format TimeFormat) string {
	s = CleanNonBreakingSpace(StripFootnotes(s))
	if re, ok := squashedTime[format]; ok {
		if m := re.FindStringSubmatchIndex(s); m != nil {
			s = s[:m[3]] + " " + s[m[4]:]
		}
	}
	return strings.TrimSpace(s)
}

// CleanRocket drops the booster-generation label and footnotes.
func CleanRocket(s string) string {
	for _, mark := range boosterMarks {
		s = strings.ReplaceAll(s, mark, "")
	}
	return strings.TrimSpace(StripFootnotes(s))
}

// ParseMass reduces "~1,234 kg (2,720 lb)" to "1234". Values without a "kg"
// suffix, such as "Unknown", are returned unchanged.
func ParseMass(s string) string {
	m := massPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return massNoise.ReplaceAllString(m[1], "")
}
