// Package scrape turns launch-list wikitables into typed launch records.
//
// A scrape runs in four steps. Tables matching the selector are classified
// row by row (ClassifyTable), the cells of DATA rows are extracted
// (ExtractCells), bound to named columns by a Layout, and finally normalized
// by the per-field transforms in fields.go and mass.go. All of it is
// synchronous and never fails on malformed rows; problems are reported as
// warnings on the Report.
package scrape
