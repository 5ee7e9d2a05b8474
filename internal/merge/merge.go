// Package merge combines launch records from several time windows into one
// continuously numbered dataset.
package merge

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/JakeFAU/launch-table-crawler/internal/launch"
)

// Options configures Windows.
type Options struct {
	// FilterFuture drops records whose time is a placeholder, cannot be
	// parsed, or lies after now.
	FilterFuture bool
	// Year is implied for times written without one. Zero means the
	// current year.
	Year int
	// Years overrides Year per window, by position. Missing or zero
	// entries fall back to Year.
	Years []int
	Clock clockwork.Clock
}

// Windows concatenates the windows in the order given, optionally filters
// future records, and renumbers the result 1..n. Empty windows leave no gap.
// Overlapping windows are not deduplicated.
func Windows[R launch.Entry[R]](windows [][]R, opts Options) []R {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	now := clock.Now().UTC()
	year := opts.Year
	if year == 0 {
		year = now.Year()
	}

	var kept []R
	for i, window := range windows {
		implied := year
		if i < len(opts.Years) && opts.Years[i] > 0 {
			implied = opts.Years[i]
		}
		for _, rec := range window {
			if opts.FilterFuture && !occurred(rec.Timestamp(), implied, now) {
				continue
			}
			kept = append(kept, rec)
		}
	}
	return Renumber(kept, 1)
}

// Append adds next after prior and renumbers the whole sequence, so the
// fresh window continues where the saved one stopped.
func Append[R launch.Entry[R]](prior, next []R) []R {
	all := make([]R, 0, len(prior)+len(next))
	all = append(all, prior...)
	all = append(all, next...)
	return Renumber(all, 1)
}

// Renumber returns copies of records numbered from start upward.
func Renumber[R launch.Entry[R]](records []R, start int) []R {
	out := make([]R, len(records))
	for i, rec := range records {
		out[i] = rec.Renumbered(start + i)
	}
	return out
}

func occurred(ts string, year int, now time.Time) bool {
	when, err := launch.ParseTime(ts, year)
	if err != nil {
		return false
	}
	return !when.After(now)
}
