package scrape

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func loadFixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return parseHTML(t, string(raw))
}

// table wraps row markup in a wikitable.
func table(rows ...string) string {
	return `<table class="wikitable">` + strings.Join(rows, "\n") + `</table>`
}

func dataRow(date string) string {
	return `<tr><td>` + date + `</td><td>Falcon 9</td><td>Starlink</td><td>SLC-40</td><td>SpaceX</td></tr>`
}

const (
	headerRow     = `<tr><th>Date</th><th>Rocket</th><th>Mission</th><th>Site</th><th>LSP</th></tr>`
	upcomingRow   = `<tr><td colspan="5">Upcoming launches</td></tr>`
	suborbitalRow = `<tr><th colspan="5">Suborbital</th></tr>`
)
