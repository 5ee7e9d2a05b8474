// Package api serves saved launch datasets to the visualization front end.
// Routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /api lists the configured datasets.
//   - GET /api/{file} returns one dataset as JSON.
package api
