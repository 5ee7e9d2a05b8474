// Package config loads and validates crawler configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/JakeFAU/launch-table-crawler/internal/launch"
	"github.com/JakeFAU/launch-table-crawler/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g.
// LAUNCHCRAWLER_FETCH_MODE=headless.
const EnvPrefix = "LAUNCHCRAWLER"

// Fetch modes.
const (
	ModeHTTP     = "http"
	ModeHeadless = "headless"
)

// Storage backends.
const (
	BackendLocal = "local"
	BackendGCS   = "gcs"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Logging    logging.Config       `mapstructure:"logging"`
	Fetch      FetchConfig          `mapstructure:"fetch"`
	Headless   HeadlessConfig       `mapstructure:"headless"`
	Scrape     ScrapeConfig         `mapstructure:"scrape"`
	Storage    StorageConfig        `mapstructure:"storage"`
	PubSub     PubSubConfig         `mapstructure:"pubsub"`
	Server     ServerConfig         `mapstructure:"server"`
	Targets    map[string]Target    `mapstructure:"targets"`
	Composites map[string]Composite `mapstructure:"composites"`
}

// FetchConfig governs page retrieval and retries.
type FetchConfig struct {
	Mode            string          `mapstructure:"mode"`
	UserAgent       string          `mapstructure:"user_agent"`
	Timeout         time.Duration   `mapstructure:"timeout"`
	MaxAttempts     int             `mapstructure:"max_attempts"`
	BackoffDelay    time.Duration   `mapstructure:"backoff_delay"`
	ParallelWindows bool            `mapstructure:"parallel_windows"`
	RespectRobots   bool            `mapstructure:"respect_robots"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig throttles fetches per host with a token bucket.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// HeadlessConfig configures the headless rendering mode.
type HeadlessConfig struct {
	MaxParallel  int           `mapstructure:"max_parallel"`
	NavTimeout   time.Duration `mapstructure:"nav_timeout"`
	WaitSelector string        `mapstructure:"wait_selector"`
}

// ScrapeConfig tunes extraction.
type ScrapeConfig struct {
	GlobalLatch   bool                `mapstructure:"global_latch"`
	MassEstimates MassEstimatesConfig `mapstructure:"mass_estimates"`
}

// MassEstimatesConfig holds the kilogram values substituted for unknown
// payload masses.
type MassEstimatesConfig struct {
	LEO     string `mapstructure:"leo"`
	GTO     string `mapstructure:"gto"`
	Default string `mapstructure:"default"`
}

// StorageConfig selects where datasets are written.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PubSubConfig holds refresh notification settings. Notifications are
// disabled while Topic is empty.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// ServerConfig controls the dataset API.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// Target is one page scraped into one dataset.
type Target struct {
	URL         string      `mapstructure:"url"`
	Output      string      `mapstructure:"output"`
	Kind        launch.Kind `mapstructure:"kind"`
	Year        int         `mapstructure:"year"`
	Description string      `mapstructure:"description"`
	Selector    string      `mapstructure:"selector"`
	StartFlight int         `mapstructure:"start_flight"`
}

// Composite merges several targets, in the listed order, into one dataset.
type Composite struct {
	Windows      []string    `mapstructure:"windows"`
	Output       string      `mapstructure:"output"`
	Kind         launch.Kind `mapstructure:"kind"`
	Year         int         `mapstructure:"year"`
	FilterFuture bool        `mapstructure:"filter_future"`
	Description  string      `mapstructure:"description"`
}

// Load builds a Config from defaults, an optional file and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadEnvFiles exports KEY=VALUE pairs from the given dotenv files without
// overriding variables already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("fetch.mode", ModeHTTP)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.backoff_delay", 2*time.Second)
	v.SetDefault("fetch.parallel_windows", false)
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("fetch.rate_limit.enabled", true)
	v.SetDefault("fetch.rate_limit.rps", 1.0)
	v.SetDefault("fetch.rate_limit.burst", 2)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout", 60*time.Second)
	v.SetDefault("headless.wait_selector", "table.wikitable")
	v.SetDefault("scrape.global_latch", false)
	v.SetDefault("scrape.mass_estimates.leo", "16300")
	v.SetDefault("scrape.mass_estimates.gto", "6000")
	v.SetDefault("scrape.mass_estimates.default", "3000")
	v.SetDefault("storage.backend", BackendLocal)
	v.SetDefault("storage.base_dir", "data")
	v.SetDefault("server.port", 8080)

	for name, target := range defaultTargets() {
		key := "targets." + name + "."
		v.SetDefault(key+"url", target.URL)
		v.SetDefault(key+"output", target.Output)
		v.SetDefault(key+"kind", string(target.Kind))
		v.SetDefault(key+"year", target.Year)
		v.SetDefault(key+"description", target.Description)
		v.SetDefault(key+"start_flight", target.StartFlight)
	}
	v.SetDefault("composites.world-2025.windows", []string{"world-q1", "world-q2", "world-q3", "world-q4"})
	v.SetDefault("composites.world-2025.output", "world_launches_2025.json")
	v.SetDefault("composites.world-2025.kind", string(launch.KindWorld))
	v.SetDefault("composites.world-2025.year", 2025)
	v.SetDefault("composites.world-2025.filter_future", true)
	v.SetDefault("composites.world-2025.description", "World launches 2025, quarters merged")
}

func defaultTargets() map[string]Target {
	const wiki = "https://en.m.wikipedia.org/wiki/"
	world := func(span, output, description string) Target {
		return Target{
			URL:         wiki + "List_of_spaceflight_launches_in_" + span + "_2025",
			Output:      output,
			Kind:        launch.KindWorld,
			Year:        2025,
			Description: description,
		}
	}
	return map[string]Target{
		"falcon": {
			URL:         wiki + "List_of_Falcon_9_and_Falcon_Heavy_launches",
			Output:      "f9_launches_2025.json",
			Kind:        launch.KindFalcon,
			Year:        2025,
			Description: "SpaceX Falcon 9/Heavy launches",
			StartFlight: 551,
		},
		"world-q1": world("January%E2%80%93March", "world_launches_q1.json", "World launches Q1 2025 (Jan-Mar)"),
		"world-q2": world("April%E2%80%93June", "world_launches_q2.json", "World launches Q2 2025 (Apr-Jun)"),
		"world-q3": world("July%E2%80%93September", "world_launches_q3.json", "World launches Q3 2025 (Jul-Sep)"),
		"world-q4": world("October%E2%80%93December", "world_launches_q4.json", "World launches Q4 2025 (Oct-Dec)"),
		"world-h1": world("January%E2%80%93June", "world_launches_h1.json", "World launches H1 2025 (Jan-Jun)"),
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	switch c.Fetch.Mode {
	case ModeHTTP, ModeHeadless:
	default:
		return fmt.Errorf("fetch.mode must be %q or %q, got %q", ModeHTTP, ModeHeadless, c.Fetch.Mode)
	}
	if c.Fetch.MaxAttempts <= 0 {
		return fmt.Errorf("fetch.max_attempts must be > 0")
	}
	if c.Fetch.BackoffDelay < 0 {
		return fmt.Errorf("fetch.backoff_delay must be >= 0")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	if c.Fetch.RateLimit.Enabled {
		if c.Fetch.RateLimit.RPS <= 0 {
			return fmt.Errorf("fetch.rate_limit.rps must be > 0 when the rate limit is enabled")
		}
		if c.Fetch.RateLimit.Burst <= 0 {
			return fmt.Errorf("fetch.rate_limit.burst must be > 0 when the rate limit is enabled")
		}
	}
	if c.Fetch.Mode == ModeHeadless && c.Headless.MaxParallel < 0 {
		return fmt.Errorf("headless.max_parallel must be >= 0")
	}
	for name, value := range map[string]string{
		"leo":     c.Scrape.MassEstimates.LEO,
		"gto":     c.Scrape.MassEstimates.GTO,
		"default": c.Scrape.MassEstimates.Default,
	} {
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("scrape.mass_estimates.%s must be an integer, got %q", name, value)
		}
	}
	switch c.Storage.Backend {
	case BackendLocal:
		if strings.TrimSpace(c.Storage.BaseDir) == "" {
			return fmt.Errorf("storage.base_dir is required for the local backend")
		}
	case BackendGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendLocal, BackendGCS, c.Storage.Backend)
	}
	if c.PubSub.Topic != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic is set")
	}
	for _, name := range c.TargetNames() {
		if err := c.Targets[name].validate(name); err != nil {
			return err
		}
	}
	for _, name := range c.CompositeNames() {
		if err := c.validateComposite(name); err != nil {
			return err
		}
	}
	return nil
}

func (t Target) validate(name string) error {
	if name == "all" {
		return fmt.Errorf("targets.all: name is reserved")
	}
	if t.URL == "" {
		return fmt.Errorf("targets.%s.url is required", name)
	}
	if t.Output == "" {
		return fmt.Errorf("targets.%s.output is required", name)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("targets.%s.kind must be %q or %q, got %q", name, launch.KindFalcon, launch.KindWorld, t.Kind)
	}
	if t.StartFlight < 0 {
		return fmt.Errorf("targets.%s.start_flight must be >= 0", name)
	}
	return nil
}

func (c Config) validateComposite(name string) error {
	comp := c.Composites[name]
	if _, clash := c.Targets[name]; clash {
		return fmt.Errorf("composites.%s: name is already used by a target", name)
	}
	if len(comp.Windows) == 0 {
		return fmt.Errorf("composites.%s.windows must list at least one target", name)
	}
	if comp.Output == "" {
		return fmt.Errorf("composites.%s.output is required", name)
	}
	if !comp.Kind.Valid() {
		return fmt.Errorf("composites.%s.kind must be %q or %q, got %q", name, launch.KindFalcon, launch.KindWorld, comp.Kind)
	}
	for _, window := range comp.Windows {
		target, ok := c.Targets[window]
		if !ok {
			return fmt.Errorf("composites.%s: unknown window %q", name, window)
		}
		if target.Kind != comp.Kind {
			return fmt.Errorf("composites.%s: window %q is %s, want %s", name, window, target.Kind, comp.Kind)
		}
	}
	return nil
}

// TargetNames lists target names in sorted order.
func (c Config) TargetNames() []string {
	return sortedKeys(c.Targets)
}

// CompositeNames lists composite names in sorted order.
func (c Config) CompositeNames() []string {
	return sortedKeys(c.Composites)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
