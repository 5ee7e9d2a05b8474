package scrape

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/launch-table-crawler/internal/launch"
)

func TestWorldFixture(t *testing.T) {
	t.Parallel()

	report := World(loadFixture(t, "world_q1.html"), Options{})

	want := []launch.WorldLaunch{
		{
			Flight:  1,
			Time:    "3 January 01:27",
			Rocket:  "Falcon 9 Block 5",
			Mission: "F9-418",
			Site:    "Cape Canaveral SLC-40",
			Org:     launch.Org{Country: "United States", Info: "SpaceX"},
		},
		{
			Flight:  2,
			Time:    "10 January 14:53",
			Rocket:  "Long March 2D",
			Mission: "2D-Y93",
			Site:    "Jiuquan LS-9401",
			Org:     launch.Org{Country: "China", Info: "CASC"},
		},
	}
	if diff := cmp.Diff(want, report.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, report.Tables)
	assert.Zero(t, report.TablesSkipped)
	assert.Empty(t, report.Warnings)
}

func TestFalconFixture(t *testing.T) {
	t.Parallel()

	report := Falcon(loadFixture(t, "falcon.html"), Options{})

	want := []launch.Launch{
		{Flight: 1, Time: "30 December 2024 13:55", Rocket: "B1077-19", Site: "CCSFS, SLC-40", Mission: "Starlink Group 12-1", Mass: "17500", Orbit: "LEO"},
		{Flight: 2, Time: "4 January 2025 01:27", Rocket: "B1073-21", Site: "CCSFS, SLC-40", Mission: "Thuraya 4-NGS", Mass: "6000", Orbit: "GTO"},
		{Flight: 3, Time: "6 January 2025 13:45", Rocket: "B1078-16", Site: "KSC, LC-39A", Mission: "Starlink Group 6-71", Mass: "16300", Orbit: "LEO"},
		{Flight: 4, Time: "14 January 2025 19:09", Rocket: "B1088-2", Site: "VSFB, SLC-4E", Mission: "Transporter-12", Mass: "1234", Orbit: "SSO"},
	}
	if diff := cmp.Diff(want, report.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, report.Warnings)
	assert.Empty(t, launch.Validate(report.Records))
}

func TestFalconStartFlight(t *testing.T) {
	t.Parallel()

	report := Falcon(loadFixture(t, "falcon.html"), Options{
		StartFlight:   551,
		MassEstimates: MassEstimates{LEO: "163000"},
	})

	require.Len(t, report.Records, 3)
	assert.Equal(t, 1, report.Records[0].Flight)
	assert.Equal(t, "Thuraya 4-NGS", report.Records[0].Mission)
	assert.Equal(t, "163000", report.Records[1].Mass)
	assert.Equal(t, 3, report.Records[2].Flight)
}

func TestFalconStartFlightDropsUnanchoredRows(t *testing.T) {
	t.Parallel()

	falconRow := func(id, date, mission, mass string) string {
		attr := ""
		if id != "" {
			attr = ` id="` + id + `"`
		}
		return `<tr` + attr + `><th scope="row">` + id + `</th><td>` + date + `</td><td>F9 B5<br>B1080-15</td>` +
			`<td>CCSFS, SLC-40</td><td>` + mission + `</td><td>` + mass + `</td><td>LEO</td>` +
			`<td>SpaceX</td><td>Success</td><td>Success</td></tr>`
	}
	header := `<tr><th>Flight No.</th><th>Date and time (UTC)</th><th>Version, booster</th><th>Launch site</th>` +
		`<th>Payload</th><th>Payload mass</th><th>Orbit</th><th>Customer</th><th>Launch outcome</th><th>Booster landing</th></tr>`
	doc := parseHTML(t, table(
		header,
		falconRow("F9-550", "30 December 2024<br>13:55", "Starlink Group 12-1", "17,500 kg"),
		falconRow("F9-551", "4 January 2025<br>01:27", "Starlink Group 12-2", "17,500 kg"),
	)+table(
		header,
		falconRow("", "March 2026", "Future payload", "TBD"),
	))

	report := Falcon(doc, Options{StartFlight: 551})
	require.Len(t, report.Records, 1)
	assert.Equal(t, 1, report.Records[0].Flight)
	assert.Equal(t, "Starlink Group 12-2", report.Records[0].Mission)
	assert.Empty(t, report.Warnings)

	all := Falcon(doc, Options{})
	assert.Len(t, all.Records, 3)
}

func TestScrapeIsIdempotent(t *testing.T) {
	t.Parallel()

	encode := func() []byte {
		report := World(loadFixture(t, "world_q1.html"), Options{})
		raw, err := json.MarshalIndent(report.Records, "", "  ")
		require.NoError(t, err)
		return raw
	}
	assert.Equal(t, encode(), encode())
}

func TestWorldSkipsBoundaryOnlyTable(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, table(headerRow, dataRow("2 February"), dataRow("3 February"))+
		table(suborbitalRow, dataRow("4 February"), dataRow("5 February")))

	report := World(doc, Options{})
	assert.Len(t, report.Records, 2)
	assert.Equal(t, 2, report.Tables)
	assert.Equal(t, 1, report.TablesSkipped)
}

func TestWorldUpcomingOnlyTableYieldsNothing(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, table(upcomingRow, dataRow("2 December"), dataRow("9 December")))
	report := World(doc, Options{})
	assert.Empty(t, report.Records)
	assert.Equal(t, 1, report.TablesSkipped)
}

func TestWorldGlobalLatch(t *testing.T) {
	t.Parallel()

	markup := table(dataRow("1 March"), upcomingRow, dataRow("9 March")) +
		table(headerRow, dataRow("2 March"))

	perTable := World(parseHTML(t, markup), Options{})
	require.Len(t, perTable.Records, 2)
	assert.Equal(t, "2 March", perTable.Records[1].Time)

	global := World(parseHTML(t, markup), Options{GlobalLatch: true})
	require.Len(t, global.Records, 1)
	assert.Equal(t, "1 March", global.Records[0].Time)
	assert.Equal(t, 1, global.TablesSkipped)
}

func TestWorldWarnings(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, table(
		`<tr><th scope="row">1</th><td>Late 2025</td><td>Starship</td><td>IFT-9</td></tr>`,
	))
	report := World(doc, Options{})
	require.Len(t, report.Records, 1)
	assert.Equal(t, []string{
		`flight 1: row has 3 of 5 columns`,
		`flight 1: unrecognized time "Late 2025"`,
	}, report.Warnings)
	assert.Equal(t, "IFT-9", report.Records[0].Mission)
	assert.Empty(t, report.Records[0].Site)
}

func TestCustomSelector(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<table class="launches">`+headerRow+dataRow("7 July")+`</table>`+
		table(dataRow("8 July")))
	report := World(doc, Options{Selector: "table.launches"})
	require.Len(t, report.Records, 1)
	assert.Equal(t, "7 July", report.Records[0].Time)
}
