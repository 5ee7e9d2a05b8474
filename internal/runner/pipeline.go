package runner

import (
	"context"
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/launch-table-crawler/internal/config"
	"github.com/JakeFAU/launch-table-crawler/internal/dataset"
	"github.com/JakeFAU/launch-table-crawler/internal/launch"
	"github.com/JakeFAU/launch-table-crawler/internal/merge"
	"github.com/JakeFAU/launch-table-crawler/internal/metrics"
	"github.com/JakeFAU/launch-table-crawler/internal/scrape"
)

// scrapeFunc extracts records of one schema from a document.
type scrapeFunc[R launch.Entry[R]] func(*goquery.Document, scrape.Options) scrape.Report[R]

func runTarget[R launch.Entry[R]](
	ctx context.Context,
	r *Runner,
	name string,
	target config.Target,
	extract scrapeFunc[R],
) (Result, error) {
	records, err := scrapeWindow(ctx, r, name, target, extract)
	if err != nil {
		observeFailure(name, err)
		return Result{}, err
	}
	if len(records) == 0 {
		err := fmt.Errorf("target %q: %w", name, ErrNoRecords)
		r.logger.Warn("no records extracted", zap.String("target", name), zap.String("url", target.URL))
		observeFailure(name, err)
		return Result{}, err
	}
	return persist(ctx, r, name, target.Kind, target.Output, records)
}

func runComposite[R launch.Entry[R]](
	ctx context.Context,
	r *Runner,
	name string,
	comp config.Composite,
	extract scrapeFunc[R],
) (Result, error) {
	windows, err := scrapeWindows(ctx, r, comp.Windows, extract)
	if err != nil {
		observeFailure(name, err)
		return Result{}, err
	}
	years := make([]int, len(comp.Windows))
	for i, window := range comp.Windows {
		years[i] = windowYear(r.cfg.Targets[window], comp)
	}
	merged := merge.Windows(windows, merge.Options{
		FilterFuture: comp.FilterFuture,
		Year:         comp.Year,
		Years:        years,
		Clock:        r.clock,
	})
	if len(merged) == 0 {
		err := fmt.Errorf("composite %q: %w", name, ErrNoRecords)
		r.logger.Warn("composite produced no records", zap.String("composite", name))
		observeFailure(name, err)
		return Result{}, err
	}
	r.logger.Info("windows merged",
		zap.String("composite", name),
		zap.Int("windows", len(windows)),
		zap.Int("records", len(merged)),
	)
	return persist(ctx, r, name, comp.Kind, comp.Output, merged)
}

func appendWindow[R launch.Entry[R]](
	ctx context.Context,
	r *Runner,
	name string,
	comp config.Composite,
	window string,
	target config.Target,
	extract scrapeFunc[R],
) (Result, error) {
	prior, err := dataset.Load[R](ctx, r.store, comp.Output)
	if err != nil {
		err = &MergeInputError{Dataset: comp.Output, Err: err}
		r.logger.Error("prior dataset unavailable", zap.String("composite", name), zap.Error(err))
		observeFailure(name, err)
		return Result{}, err
	}

	next, err := scrapeWindow(ctx, r, window, target, extract)
	if err != nil {
		observeFailure(name, err)
		return Result{}, err
	}
	if len(next) == 0 {
		err := fmt.Errorf("window %q: %w", window, ErrNoRecords)
		observeFailure(name, err)
		return Result{}, err
	}
	if comp.FilterFuture {
		next = merge.Windows([][]R{next}, merge.Options{
			FilterFuture: true,
			Year:         windowYear(target, comp),
			Clock:        r.clock,
		})
	}

	merged := merge.Append(prior, next)
	r.logger.Info("window appended",
		zap.String("composite", name),
		zap.String("window", window),
		zap.Int("prior", len(prior)),
		zap.Int("appended", len(next)),
	)
	return persist(ctx, r, name, comp.Kind, comp.Output, merged)
}

// windowYear is the year implied for dates in a window: the target's own
// year, else the composite's.
func windowYear(target config.Target, comp config.Composite) int {
	if target.Year > 0 {
		return target.Year
	}
	return comp.Year
}

// scrapeWindow fetches and scrapes one target.
func scrapeWindow[R launch.Entry[R]](
	ctx context.Context,
	r *Runner,
	name string,
	target config.Target,
	extract scrapeFunc[R],
) ([]R, error) {
	logger := r.logger.With(zap.String("target", name))
	logger.Info("crawling", zap.String("url", target.URL), zap.String("description", target.Description))

	doc, err := r.loader.Load(ctx, target.URL)
	if err != nil {
		logger.Error("fetch failed", zap.Error(err))
		return nil, fmt.Errorf("target %q: %w", name, err)
	}

	report := extract(doc, r.scrapeOptions(target))
	for _, w := range report.Warnings {
		logger.Warn("parse warning", zap.String("warning", w))
	}
	metrics.ObserveExtraction(name, len(report.Records), report.TablesSkipped)
	logger.Info("extracted",
		zap.Int("records", len(report.Records)),
		zap.Int("tables", report.Tables),
		zap.Int("tables_skipped", report.TablesSkipped),
	)
	return report.Records, nil
}

// scrapeWindows returns one record slice per window, in window order. A
// window whose fetch fails is logged and left empty. Only context
// cancellation aborts the whole composite.
func scrapeWindows[R launch.Entry[R]](
	ctx context.Context,
	r *Runner,
	names []string,
	extract scrapeFunc[R],
) ([][]R, error) {
	windows := make([][]R, len(names))
	one := func(ctx context.Context, i int) error {
		name := names[i]
		target, ok := r.cfg.Targets[name]
		if !ok {
			return fmt.Errorf("window %q: %w", name, ErrUnknownName)
		}
		records, err := scrapeWindow(ctx, r, name, target, extract)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("window %q: %w", name, ctx.Err())
			}
			metrics.ObserveRun(name, statusFetchError)
			r.logger.Warn("window skipped", zap.String("window", name), zap.Error(err))
			return nil
		}
		windows[i] = records
		return nil
	}

	if !r.cfg.ParallelWindows || r.cfg.GlobalLatch {
		for i := range names {
			if err := one(ctx, i); err != nil {
				return nil, err
			}
		}
		return windows, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range names {
		g.Go(func() error { return one(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return windows, nil
}

func persist[R launch.Entry[R]](
	ctx context.Context,
	r *Runner,
	name string,
	kind launch.Kind,
	output string,
	records []R,
) (Result, error) {
	warnings := launch.Validate(records)
	for _, w := range warnings {
		r.logger.Warn("validation warning", zap.String("dataset", output), zap.String("warning", w))
	}
	metrics.ObserveValidationWarnings(name, len(warnings))

	saved, err := dataset.Save(ctx, r.store, output, records)
	if err != nil {
		err = fmt.Errorf("%s: %w", name, err)
		observeFailure(name, err)
		return Result{}, err
	}
	metrics.ObserveRun(name, statusSuccess)
	r.logger.Info("dataset saved",
		zap.String("name", name),
		zap.String("uri", saved.URI),
		zap.Int("records", saved.Records),
		zap.String("digest", saved.Digest),
	)
	r.notify(ctx, kind, saved)

	return Result{Name: name, Kind: kind, Saved: saved, Warnings: len(warnings)}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
