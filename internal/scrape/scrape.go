package scrape

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/launch-table-crawler/internal/launch"
)

// DefaultSelector matches the data tables of a launch list.
const DefaultSelector = ".wikitable"

var falconAnchor = regexp.MustCompile(`^F9-(\d+)$`)

// Options configures a scrape.
type Options struct {
	Selector    string
	GlobalLatch bool
	// StartFlight keeps only rows anchored as F9-N with N at or above it.
	// Zero keeps all rows, anchored or not.
	StartFlight   int
	MassEstimates MassEstimates
}

// Report is the outcome of scraping one document.
type Report[R any] struct {
	Records       []R
	Tables        int
	TablesSkipped int
	// Warnings are recoverable parse problems, one line each.
	Warnings []string
}

func (o Options) selector() string {
	if o.Selector == "" {
		return DefaultSelector
	}
	return o.Selector
}

// Falcon scrapes a Falcon launch list. Flights are numbered 1..n in row
// order.
func Falcon(doc *goquery.Document, opts Options) Report[launch.Launch] {
	var report Report[launch.Launch]
	est := opts.MassEstimates.withDefaults()

	report.Tables, report.TablesSkipped = eachDataRow(doc, opts, func(row *goquery.Selection) {
		if opts.StartFlight > 0 {
			if n, ok := anchorNumber(row); !ok || n < opts.StartFlight {
				return
			}
		}
		flight := len(report.Records) + 1
		cells := ExtractCells(row)
		report.Warnings = append(report.Warnings, shortRowWarning(flight, cells, FalconLayout)...)
		fields := FalconLayout.Bind(cells)

		rec := launch.Launch{
			Flight:  flight,
			Time:    CleanTime(fields.Info("time"), TimeNumeric),
			Rocket:  CleanRocket(fields.Info("rocket")),
			Site:    CleanNonBreakingSpace(fields.Info("site")),
			Mission: CleanNonBreakingSpace(fields.Info("mission")),
			Mass:    ParseMass(fields.Info("mass")),
			Orbit:   CleanNonBreakingSpace(fields.Info("orbit")),
		}
		rec.Mass = EstimateMass(rec.Mass, rec.Orbit, est)
		report.Warnings = append(report.Warnings, timeWarning(flight, rec.Time)...)
		report.Records = append(report.Records, rec)
	})
	return report
}

// World scrapes a world launch list covering one time window.
func World(doc *goquery.Document, opts Options) Report[launch.WorldLaunch] {
	var report Report[launch.WorldLaunch]

	report.Tables, report.TablesSkipped = eachDataRow(doc, opts, func(row *goquery.Selection) {
		flight := len(report.Records) + 1
		cells := ExtractCells(row)
		report.Warnings = append(report.Warnings, shortRowWarning(flight, cells, WorldLayout)...)
		fields := WorldLayout.Bind(cells)

		org := fields["org"]
		rec := launch.WorldLaunch{
			Flight:  flight,
			Time:    CleanTime(fields.Info("time"), TimeDayMonth),
			Rocket:  fields.Info("rocket"),
			Mission: fields.Info("mission"),
			Site:    fields.Info("site"),
			Org:     launch.Org{Country: org.Country, Info: org.Info},
		}
		report.Warnings = append(report.Warnings, timeWarning(flight, rec.Time)...)
		report.Records = append(report.Records, rec)
	})
	return report
}

// eachDataRow classifies every selected table in document order and calls
// visit for each DATA row. It returns the number of tables seen and skipped.
func eachDataRow(doc *goquery.Document, opts Options, visit func(*goquery.Selection)) (int, int) {
	var (
		state   BoundaryState
		skipped int
	)
	copts := ClassifyOptions{GlobalLatch: opts.GlobalLatch}
	tables := doc.Find(opts.selector())
	tables.Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		kinds, skip, next := ClassifyTable(rows, state, copts)
		state = next
		if skip {
			skipped++
			return
		}
		rows.Each(func(i int, row *goquery.Selection) {
			if kinds[i] == RowData {
				visit(row)
			}
		})
	})
	return tables.Length(), skipped
}

// anchorNumber reads the N of an "F9-N" id on the row or its header cell.
func anchorNumber(row *goquery.Selection) (int, bool) {
	for _, sel := range []*goquery.Selection{row, row.Children().First()} {
		id, ok := sel.Attr("id")
		if !ok {
			continue
		}
		if m := falconAnchor.FindStringSubmatch(id); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func shortRowWarning(flight int, cells []Cell, layout Layout) []string {
	if len(cells) >= len(layout) {
		return nil
	}
	return []string{fmt.Sprintf("flight %d: row has %d of %d columns", flight, len(cells), len(layout))}
}

func timeWarning(flight int, t string) []string {
	if t == "" || launch.HasDate(t) {
		return nil
	}
	return []string{fmt.Sprintf("flight %d: unrecognized time %q", flight, t)}
}
