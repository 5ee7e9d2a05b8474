// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	gcs "cloud.google.com/go/storage"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/JakeFAU/launch-table-crawler/internal/config"
	"github.com/JakeFAU/launch-table-crawler/internal/crawler"
	collyfetcher "github.com/JakeFAU/launch-table-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/launch-table-crawler/internal/fetcher/headless"
	"github.com/JakeFAU/launch-table-crawler/internal/id/uuid"
	"github.com/JakeFAU/launch-table-crawler/internal/metrics"
	"github.com/JakeFAU/launch-table-crawler/internal/policy/ratelimit"
	pubsubpublisher "github.com/JakeFAU/launch-table-crawler/internal/publisher/pubsub"
	"github.com/JakeFAU/launch-table-crawler/internal/runner"
	"github.com/JakeFAU/launch-table-crawler/internal/scrape"
	"github.com/JakeFAU/launch-table-crawler/internal/storage"
	gcsstore "github.com/JakeFAU/launch-table-crawler/internal/storage/gcs"
	"github.com/JakeFAU/launch-table-crawler/internal/storage/local"
	"github.com/JakeFAU/launch-table-crawler/internal/telemetry"
)

// App holds all the shared, long-lived services for the application.
// It is built once per command from the loaded configuration and closed by
// a Cobra hook when the command finishes.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	clock     clockwork.Clock
	store     storage.BlobStore
	fetcher   crawler.Fetcher
	loader    *crawler.DocumentLoader
	publisher crawler.Publisher
	runner    *runner.Runner
	closers   []func() error
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Store exposes the configured dataset store.
func (a *App) Store() storage.BlobStore {
	return a.store
}

// Loader returns the retrying document loader.
func (a *App) Loader() *crawler.DocumentLoader {
	return a.loader
}

// Publisher returns the refresh publisher, or nil when notifications are off.
func (a *App) Publisher() crawler.Publisher {
	return a.publisher
}

// Runner returns the target runner.
func (a *App) Runner() *runner.Runner {
	return a.runner
}

// Option customizes NewApp.
type Option func(*options)

type options struct {
	clock          clockwork.Clock
	storageOptions []option.ClientOption
	pubsubOptions  []option.ClientOption
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithStorageOptions passes options to the Cloud Storage client, e.g. an
// emulator endpoint.
func WithStorageOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.storageOptions = append(o.storageOptions, opts...) }
}

// WithPubSubOptions passes options to the Pub/Sub client.
func WithPubSubOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.pubsubOptions = append(o.pubsubOptions, opts...) }
}

// NewApp creates and initializes the services named by cfg. It fails fast
// if any of them cannot be built; partially built services are closed.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (_ *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, logger: logger, clock: o.clock}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	logger.Info("initializing application services")
	metrics.Init()

	tp, err := telemetry.InitTracerProvider(ctx, telemetry.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("initialize tracing: %w", err)
	}
	a.closers = append(a.closers, func() error { return tp.Shutdown(context.Background()) })

	if a.store, err = a.buildStore(ctx, o.storageOptions); err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}
	if a.fetcher, err = a.buildFetcher(); err != nil {
		return nil, fmt.Errorf("initialize fetcher: %w", err)
	}
	if a.publisher, err = a.buildPublisher(ctx, o.pubsubOptions); err != nil {
		return nil, fmt.Errorf("initialize publisher: %w", err)
	}

	a.loader = crawler.NewDocumentLoader(
		a.fetcher,
		crawler.NewLinearRetryPolicy(cfg.Fetch.MaxAttempts, cfg.Fetch.BackoffDelay),
		a.buildLimiter(),
		a.clock,
		cfg.Fetch.UserAgent,
		logger.Named("loader"),
	)
	a.runner = runner.New(
		a.loader,
		a.store,
		a.publisher,
		uuid.New(),
		a.clock,
		runner.Config{
			Targets:     cfg.Targets,
			Composites:  cfg.Composites,
			GlobalLatch: cfg.Scrape.GlobalLatch,
			MassEstimates: scrape.MassEstimates{
				LEO:     cfg.Scrape.MassEstimates.LEO,
				GTO:     cfg.Scrape.MassEstimates.GTO,
				Default: cfg.Scrape.MassEstimates.Default,
			},
			ParallelWindows: cfg.Fetch.ParallelWindows,
			Topic:           cfg.PubSub.Topic,
		},
		logger,
	)

	logger.Info("application services initialized")
	return a, nil
}

func (a *App) buildStore(ctx context.Context, clientOpts []option.ClientOption) (storage.BlobStore, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendLocal:
		a.logger.Info("using local storage", zap.String("base_dir", a.cfg.Storage.BaseDir))
		return local.New(local.Config{BaseDir: a.cfg.Storage.BaseDir})
	case config.BackendGCS:
		a.logger.Info("using GCS storage", zap.String("bucket", a.cfg.Storage.GCSBucket))
		client, err := gcs.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return gcsstore.New(client, gcsstore.Config{
			Bucket: a.cfg.Storage.GCSBucket,
			Prefix: a.cfg.Storage.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", a.cfg.Storage.Backend)
	}
}

func (a *App) buildFetcher() (crawler.Fetcher, error) {
	switch a.cfg.Fetch.Mode {
	case config.ModeHTTP:
		a.logger.Info("using HTTP fetcher")
		return collyfetcher.New(collyfetcher.Config{
			UserAgent:     a.cfg.Fetch.UserAgent,
			RespectRobots: a.cfg.Fetch.RespectRobots,
			Timeout:       a.cfg.Fetch.Timeout,
		}), nil
	case config.ModeHeadless:
		a.logger.Info("using headless fetcher", zap.Int("max_parallel", a.cfg.Headless.MaxParallel))
		f, err := headless.NewChromedp(headless.Config{
			MaxParallel:       a.cfg.Headless.MaxParallel,
			UserAgent:         a.cfg.Fetch.UserAgent,
			NavigationTimeout: a.cfg.Headless.NavTimeout,
			WaitSelector:      a.cfg.Headless.WaitSelector,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { f.Close(); return nil })
		return f, nil
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s", a.cfg.Fetch.Mode)
	}
}

func (a *App) buildLimiter() crawler.Limiter {
	rl := a.cfg.Fetch.RateLimit
	if !rl.Enabled {
		a.logger.Info("rate limiter disabled")
		return nil
	}
	a.logger.Info("rate limiter enabled",
		zap.Float64("rps", rl.RPS),
		zap.Int("burst", rl.Burst),
	)
	return ratelimit.New(ratelimit.Config{RPS: rl.RPS, Burst: rl.Burst})
}

func (a *App) buildPublisher(ctx context.Context, clientOpts []option.ClientOption) (crawler.Publisher, error) {
	if a.cfg.PubSub.Topic == "" {
		a.logger.Info("refresh notifications disabled")
		return nil, nil
	}
	a.logger.Info("connecting to Pub/Sub",
		zap.String("project", a.cfg.PubSub.ProjectID),
		zap.String("topic", a.cfg.PubSub.Topic),
	)
	client, err := pubsub.NewClient(ctx, a.cfg.PubSub.ProjectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	pub := pubsubpublisher.New(client.Topic(a.cfg.PubSub.Topic))
	a.closers = append(a.closers, func() error {
		pub.Stop()
		return client.Close()
	})
	return pub, nil
}

// Close releases every service in reverse order of construction and
// flushes the logger.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("error closing service", zap.Error(err))
		}
	}
	a.closers = nil
	// Sync fails on some terminals; there is nothing left to report to.
	_ = a.logger.Sync()
}
