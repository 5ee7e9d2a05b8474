package merge

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/launch-table-crawler/internal/launch"
)

func window(month string, n int) []launch.WorldLaunch {
	out := make([]launch.WorldLaunch, n)
	for i := range out {
		out[i] = launch.WorldLaunch{
			Flight:  i + 1,
			Time:    fmt.Sprintf("%d %s 12:00", i+1, month),
			Rocket:  "Falcon 9 Block 5",
			Mission: fmt.Sprintf("%s-%d", month, i+1),
			Site:    "Cape Canaveral SLC-40",
			Org:     launch.Org{Country: "United States", Info: "SpaceX"},
		}
	}
	return out
}

func flights[R launch.Entry[R]](records []R) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.FlightNumber()
	}
	return out
}

func TestWindowsRenumbersAcrossEmptyWindow(t *testing.T) {
	t.Parallel()

	q1 := window("January", 5)
	q3 := window("July", 7)

	merged := Windows([][]launch.WorldLaunch{q1, nil, q3}, Options{})

	require.Len(t, merged, 12)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, flights(merged))
	assert.Equal(t, "January-1", merged[0].Mission)
	assert.Equal(t, "January-5", merged[4].Mission)
	assert.Equal(t, "July-1", merged[5].Mission)
	assert.Equal(t, "July-7", merged[11].Mission)

	assert.Equal(t, 1, q3[0].Flight, "inputs must not be modified")
}

func TestWindowsKeepsCallerOrder(t *testing.T) {
	t.Parallel()

	merged := Windows([][]launch.WorldLaunch{window("October", 1), window("January", 1)}, Options{})
	require.Len(t, merged, 2)
	assert.Equal(t, "October-1", merged[0].Mission)
}

func TestWindowsFilterFuture(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	records := []launch.WorldLaunch{
		{Flight: 7, Time: "4 January 01:27", Mission: "past"},
		{Flight: 8, Time: "TBD", Mission: "placeholder"},
		{Flight: 9, Time: "9 March 23:59", Mission: "yesterday"},
		{Flight: 10, Time: "NET March", Mission: "net"},
		{Flight: 11, Time: "10 March 00:00", Mission: "now"},
		{Flight: 12, Time: "28 March 14:00", Mission: "future"},
		{Flight: 13, Time: "Mid-2025", Mission: "unparsed"},
		{Flight: 14, Time: "?", Mission: "question"},
	}

	merged := Windows([][]launch.WorldLaunch{records}, Options{
		FilterFuture: true,
		Year:         2025,
		Clock:        clock,
	})

	require.Len(t, merged, 3)
	assert.Equal(t, []int{1, 2, 3}, flights(merged))
	assert.Equal(t, "past", merged[0].Mission)
	assert.Equal(t, "yesterday", merged[1].Mission)
	assert.Equal(t, "now", merged[2].Mission)
}

func TestWindowsFilterUsesPerWindowYear(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC))
	late2024 := []launch.WorldLaunch{{Time: "3 December", Mission: "a"}, {Time: "9 December", Mission: "b"}}
	mid2025 := []launch.WorldLaunch{{Time: "2 April", Mission: "c"}, {Time: "9 December", Mission: "d"}}

	merged := Windows([][]launch.WorldLaunch{late2024, mid2025}, Options{
		FilterFuture: true,
		Year:         2025,
		Years:        []int{2024},
		Clock:        clock,
	})

	require.Len(t, merged, 3)
	assert.Equal(t, []int{1, 2, 3}, flights(merged))
	assert.Equal(t, "b", merged[1].Mission)
	assert.Equal(t, "c", merged[2].Mission)
}

func TestWindowsFilterUsesClockYearByDefault(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	records := []launch.Launch{
		{Time: "4 January 2025 01:27"},
		{Time: "4 January 2026 01:27"},
		{Time: "2 May"},
		{Time: "2 July"},
	}
	merged := Windows([][]launch.Launch{records}, Options{FilterFuture: true, Clock: clock})
	require.Len(t, merged, 2)
	assert.Equal(t, "4 January 2025 01:27", merged[0].Time)
	assert.Equal(t, "2 May", merged[1].Time)
}

func TestWindowsWithoutFilterKeepsPlaceholders(t *testing.T) {
	t.Parallel()

	merged := Windows([][]launch.WorldLaunch{{{Time: "TBD"}}}, Options{})
	require.Len(t, merged, 1)
	assert.Equal(t, 1, merged[0].Flight)
}

func TestAppendContinuesNumbering(t *testing.T) {
	t.Parallel()

	prior := Windows([][]launch.WorldLaunch{window("January", 3), window("April", 2)}, Options{})
	next := window("July", 4)

	merged := Append(prior, next)
	require.Len(t, merged, 9)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, flights(merged))
	assert.Equal(t, "July-1", merged[5].Mission)
}

func TestAppendEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Append[launch.Launch](nil, nil))
	assert.Equal(t, []int{1}, flights(Append(nil, []launch.Launch{{Flight: 40}})))
}
