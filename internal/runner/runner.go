// Package runner drives targets and composites through fetch, scrape,
// merge and persistence.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/launch-table-crawler/internal/config"
	"github.com/JakeFAU/launch-table-crawler/internal/crawler"
	"github.com/JakeFAU/launch-table-crawler/internal/dataset"
	"github.com/JakeFAU/launch-table-crawler/internal/launch"
	"github.com/JakeFAU/launch-table-crawler/internal/metrics"
	"github.com/JakeFAU/launch-table-crawler/internal/scrape"
	"github.com/JakeFAU/launch-table-crawler/internal/storage"
	"github.com/JakeFAU/launch-table-crawler/internal/telemetry"
)

// Run statuses reported to metrics.
const (
	statusSuccess    = "success"
	statusEmpty      = "empty"
	statusFetchError = "fetch_error"
	statusSaveError  = "save_error"
	statusInputError = "input_error"
)

// Loader fetches a page as a document tree.
type Loader interface {
	Load(ctx context.Context, url string) (*goquery.Document, error)
}

// Config controls Runner behavior.
type Config struct {
	Targets         map[string]config.Target
	Composites      map[string]config.Composite
	GlobalLatch     bool
	MassEstimates   scrape.MassEstimates
	ParallelWindows bool
	// Topic receives a dataset.Notification after every save. Empty
	// disables notifications.
	Topic string
}

// Result summarizes one saved dataset.
type Result struct {
	Name     string
	Kind     launch.Kind
	Saved    dataset.Saved
	Warnings int
}

// Runner executes crawl targets and composites.
type Runner struct {
	loader    Loader
	store     storage.BlobStore
	publisher crawler.Publisher
	ids       crawler.IDGenerator
	clock     clockwork.Clock
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Runner. publisher may be nil when cfg.Topic is empty.
func New(
	loader Loader,
	store storage.BlobStore,
	publisher crawler.Publisher,
	ids crawler.IDGenerator,
	clock clockwork.Clock,
	cfg Config,
	logger *zap.Logger,
) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		loader:    loader,
		store:     store,
		publisher: publisher,
		ids:       ids,
		clock:     clock,
		cfg:       cfg,
		logger:    logger.Named("runner"),
	}
}

// Crawl runs one target, or every target followed by every composite when
// name is "all".
func (r *Runner) Crawl(ctx context.Context, name string) ([]Result, error) {
	if name == "all" {
		return r.RunAll(ctx)
	}
	res, err := r.RunTarget(ctx, name)
	if err != nil {
		return nil, err
	}
	return []Result{res}, nil
}

// RunAll runs every target in name order, then every composite. Failures
// are collected; one failing target does not stop the rest.
func (r *Runner) RunAll(ctx context.Context) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)
	for _, name := range sortedKeys(r.cfg.Targets) {
		res, err := r.RunTarget(ctx, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	for _, name := range sortedKeys(r.cfg.Composites) {
		res, err := r.RunComposite(ctx, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// RunTarget fetches, scrapes, validates and saves one target.
func (r *Runner) RunTarget(ctx context.Context, name string) (_ Result, err error) {
	ctx, span := startSpan(ctx, "runner.RunTarget", attribute.String("target", name))
	defer func() { endSpan(span, err) }()

	target, ok := r.cfg.Targets[name]
	if !ok {
		return Result{}, fmt.Errorf("target %q: %w", name, ErrUnknownName)
	}
	switch target.Kind {
	case launch.KindFalcon:
		return runTarget(ctx, r, name, target, scrape.Falcon)
	case launch.KindWorld:
		return runTarget(ctx, r, name, target, scrape.World)
	default:
		return Result{}, fmt.Errorf("target %q: unsupported kind %q", name, target.Kind)
	}
}

// RunComposite fetches every window of a composite, merges them in the
// configured order and saves the result. A window that fails to fetch
// contributes no records; the merge goes on without it.
func (r *Runner) RunComposite(ctx context.Context, name string) (_ Result, err error) {
	ctx, span := startSpan(ctx, "runner.RunComposite", attribute.String("composite", name))
	defer func() { endSpan(span, err) }()

	comp, ok := r.cfg.Composites[name]
	if !ok {
		return Result{}, fmt.Errorf("composite %q: %w", name, ErrUnknownName)
	}
	switch comp.Kind {
	case launch.KindFalcon:
		return runComposite(ctx, r, name, comp, scrape.Falcon)
	case launch.KindWorld:
		return runComposite(ctx, r, name, comp, scrape.World)
	default:
		return Result{}, fmt.Errorf("composite %q: unsupported kind %q", name, comp.Kind)
	}
}

// Append reads the saved dataset of a composite and appends one freshly
// scraped window after it. A missing or unreadable prior dataset is a
// *MergeInputError.
func (r *Runner) Append(ctx context.Context, composite, window string) (_ Result, err error) {
	ctx, span := startSpan(ctx, "runner.Append",
		attribute.String("composite", composite),
		attribute.String("window", window),
	)
	defer func() { endSpan(span, err) }()

	comp, ok := r.cfg.Composites[composite]
	if !ok {
		return Result{}, fmt.Errorf("composite %q: %w", composite, ErrUnknownName)
	}
	target, ok := r.cfg.Targets[window]
	if !ok {
		return Result{}, fmt.Errorf("window %q: %w", window, ErrUnknownName)
	}
	if target.Kind != comp.Kind {
		return Result{}, fmt.Errorf("window %q is %s, composite %q is %s", window, target.Kind, composite, comp.Kind)
	}
	switch comp.Kind {
	case launch.KindFalcon:
		return appendWindow(ctx, r, composite, comp, window, target, scrape.Falcon)
	case launch.KindWorld:
		return appendWindow(ctx, r, composite, comp, window, target, scrape.World)
	default:
		return Result{}, fmt.Errorf("composite %q: unsupported kind %q", composite, comp.Kind)
	}
}

func (r *Runner) scrapeOptions(t config.Target) scrape.Options {
	return scrape.Options{
		Selector:      t.Selector,
		GlobalLatch:   r.cfg.GlobalLatch,
		StartFlight:   t.StartFlight,
		MassEstimates: r.cfg.MassEstimates,
	}
}

func (r *Runner) notify(ctx context.Context, kind launch.Kind, saved dataset.Saved) {
	if r.cfg.Topic == "" || r.publisher == nil {
		return
	}
	runID := ""
	if r.ids != nil {
		id, err := r.ids.NewID()
		if err != nil {
			r.logger.Warn("run id generation failed", zap.Error(err))
		}
		runID = id
	}
	msg := dataset.NewNotification(runID, string(kind), saved, r.clock.Now())
	msgID, err := r.publisher.Publish(ctx, r.cfg.Topic, msg)
	if err != nil {
		// The dataset is already saved; a lost notification is not fatal.
		r.logger.Warn("publish notification failed",
			zap.String("dataset", saved.Name),
			zap.Error(err),
		)
		return
	}
	r.logger.Debug("notification published",
		zap.String("dataset", saved.Name),
		zap.String("message_id", msgID),
		zap.String("run_id", runID),
	)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func observeFailure(name string, err error) {
	switch {
	case errors.Is(err, ErrNoRecords):
		metrics.ObserveRun(name, statusEmpty)
	case errors.As(err, new(*crawler.FetchError)):
		metrics.ObserveRun(name, statusFetchError)
	case errors.As(err, new(*MergeInputError)):
		metrics.ObserveRun(name, statusInputError)
	default:
		metrics.ObserveRun(name, statusSaveError)
	}
}
