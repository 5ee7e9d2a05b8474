package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RowKind tags one table row.
type RowKind int

const (
	// RowIgnore marks headers, spacers, payload sub-rows and anything after a
	// boundary marker.
	RowIgnore RowKind = iota
	// RowData marks a row describing one launch.
	RowData
	// RowUpcoming marks the "Upcoming launches" section header.
	RowUpcoming
	// RowSuborbital marks the "Suborbital" section header.
	RowSuborbital
)

const (
	upcomingMarker   = "Upcoming launches"
	suborbitalMarker = "Suborbital"
	rowHeaderMarker  = "th[scope=row]"
	minDataCells     = 3
)

var monthPattern = regexp.MustCompile(
	`\b(January|February|March|April|May|June|July|August|September|October|November|December)\b`,
)

func (k RowKind) String() string {
	switch k {
	case RowData:
		return "data"
	case RowUpcoming:
		return "upcoming"
	case RowSuborbital:
		return "suborbital"
	default:
		return "ignore"
	}
}

func (k RowKind) boundary() bool {
	return k == RowUpcoming || k == RowSuborbital
}

// BoundaryState carries the classifier latch between the tables of one
// document. The zero value is the state before the first table.
type BoundaryState struct {
	SeenUpcoming bool
}

// ClassifyOptions tunes ClassifyTable.
type ClassifyOptions struct {
	// GlobalLatch makes an "Upcoming launches" marker silence every later
	// table of the document. When false each table starts fresh.
	GlobalLatch bool
}

// ClassifyTable tags every row of a table. The returned bool reports whether
// the table was skipped as a whole, which happens when no DATA row precedes
// its first boundary marker, or when the global latch is already set.
func ClassifyTable(rows *goquery.Selection, state BoundaryState, opts ClassifyOptions) ([]RowKind, bool, BoundaryState) {
	tags := make([]RowKind, rows.Length())
	if opts.GlobalLatch && state.SeenUpcoming {
		return tags, true, state
	}

	// Pre-scan: does real data come before the first marker?
	raw := make([]RowKind, len(tags))
	first := RowIgnore
	hasData := false
	rows.Each(func(i int, row *goquery.Selection) {
		raw[i] = classifyRow(row)
		if first.boundary() {
			return
		}
		switch {
		case raw[i].boundary():
			first = raw[i]
		case raw[i] == RowData:
			hasData = true
		}
	})
	if first == RowUpcoming {
		state.SeenUpcoming = true
	}
	if !hasData && first.boundary() {
		return tags, true, state
	}

	// Extraction pass with fresh flags.
	seenUpcoming, seenSuborbital := false, false
	for i, kind := range raw {
		if seenUpcoming || seenSuborbital {
			break
		}
		switch kind {
		case RowUpcoming:
			seenUpcoming = true
		case RowSuborbital:
			seenSuborbital = true
		}
		tags[i] = kind
	}
	return tags, false, state
}

// classifyRow tags a single row without regard to its neighbours.
func classifyRow(row *goquery.Selection) RowKind {
	cells := row.ChildrenFiltered("td, th")
	switch {
	case containsMarker(cells, upcomingMarker):
		return RowUpcoming
	case containsMarker(cells, suborbitalMarker):
		return RowSuborbital
	}

	tds := row.ChildrenFiltered("td")
	if tds.Length() < minDataCells {
		return RowIgnore
	}
	if row.Children().First().Is(rowHeaderMarker) {
		return RowData
	}
	if monthPattern.MatchString(renderedText(tds.First())) {
		return RowData
	}
	return RowIgnore
}

func containsMarker(cells *goquery.Selection, marker string) bool {
	found := false
	cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		found = strings.Contains(cell.Text(), marker)
		return !found
	})
	return found
}
