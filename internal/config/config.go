package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures everything required to run a crawl.
type Config struct {
	Crawl   CrawlConfig   `yaml:"crawl"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// CrawlConfig controls pagination, throttling, and link discovery.
type CrawlConfig struct {
	// ListingURLTemplate must contain one %d verb for the page number.
	ListingURLTemplate string            `yaml:"listing_url_template"`
	Pages              int               `yaml:"pages"`
	Concurrency        int               `yaml:"concurrency"`
	DelayMin           Duration          `yaml:"delay_min"`
	DelayMax           Duration          `yaml:"delay_max"`
	RequestTimeout     Duration          `yaml:"request_timeout"`
	UserAgent          string            `yaml:"user_agent"`
	Headers            map[string]string `yaml:"headers"`
	MaxBodyBytes       int64             `yaml:"max_body_bytes"`
	// MarkerSelector is the primary anchor selector on listing pages.
	MarkerSelector string `yaml:"marker_selector"`
	// DetailPathHints are path substrings identifying detail-page links when
	// the marker selector yields nothing.
	DetailPathHints  []string        `yaml:"detail_path_hints"`
	RateLimitPerHost RateLimitConfig `yaml:"rate_limit_per_host"`
}

// RateLimitConfig applies an optional token bucket per host on top of the
// politeness jitter.
type RateLimitConfig struct {
	Requests int      `yaml:"requests"`
	Window   Duration `yaml:"window"`
}

// Enabled reports whether per-host rate limiting is active.
func (r RateLimitConfig) Enabled() bool {
	return r.Requests > 0 && !r.Window.IsZero()
}

// OutputConfig selects the artifact destinations.
type OutputConfig struct {
	// Path is the CSV artifact destination.
	Path string `yaml:"path"`
	// DatabasePath, when set, mirrors records into a local SQLite database.
	DatabasePath string `yaml:"database_path"`
	// Debug persists every fetched page body under DebugDir.
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// LoggingConfig selects log verbosity and format.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Structured bool   `yaml:"structured"`
}

// Default returns a Config populated with sensible defaults for the target
// marketplace.
func Default() Config {
	return Config{
		Crawl: CrawlConfig{
			ListingURLTemplate: "https://auto.drom.ru/all/page%d/",
			Pages:              2,
			Concurrency:        6,
			DelayMin:           DurationFrom(500 * time.Millisecond),
			DelayMax:           DurationFrom(1500 * time.Millisecond),
			RequestTimeout:     DurationFrom(25 * time.Second),
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) " +
				"Chrome/115.0.0.0 Safari/537.36",
			Headers:         map[string]string{},
			MaxBodyBytes:    6 * 1024 * 1024,
			MarkerSelector:  `a[data-ftid="bull_title"]`,
			DetailPathHints: []string{"/cars/", "/avtomobili/"},
		},
		Output: OutputConfig{
			Path:     "drom_full.csv",
			DebugDir: "debug",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads, merges, and validates configuration from a YAML file.
func Load(path string) (*Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()
	return LoadFromReader(fh)
}

// LoadFromReader decodes configuration from an arbitrary reader on top of the
// defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces required invariants for the crawl configuration.
func (c Config) Validate() error {
	if !strings.Contains(c.Crawl.ListingURLTemplate, "%d") {
		return fmt.Errorf("crawl.listing_url_template must contain a %%d page verb (got %q)", c.Crawl.ListingURLTemplate)
	}
	if c.Crawl.Pages <= 0 {
		return fmt.Errorf("crawl.pages must be > 0 (got %d)", c.Crawl.Pages)
	}
	if c.Crawl.Concurrency <= 0 {
		return fmt.Errorf("crawl.concurrency must be > 0 (got %d)", c.Crawl.Concurrency)
	}
	if c.Crawl.DelayMin.Duration < 0 || c.Crawl.DelayMax.Duration < 0 {
		return errors.New("crawl delay bounds must not be negative")
	}
	if c.Crawl.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("crawl.request_timeout must be > 0 (got %s)", c.Crawl.RequestTimeout)
	}
	if c.Crawl.MaxBodyBytes <= 0 {
		return fmt.Errorf("crawl.max_body_bytes must be > 0 (got %d)", c.Crawl.MaxBodyBytes)
	}
	if strings.TrimSpace(c.Crawl.UserAgent) == "" {
		return errors.New("crawl.user_agent must be set")
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("output.path must be set")
	}
	if rl := c.Crawl.RateLimitPerHost; rl.Requests < 0 {
		return fmt.Errorf("crawl.rate_limit_per_host.requests must be >= 0 (got %d)", rl.Requests)
	}
	return nil
}

// Normalise trims fields and repairs tolerable inconsistencies, such as
// swapped delay bounds.
func (c *Config) Normalise() {
	c.Crawl.ListingURLTemplate = strings.TrimSpace(c.Crawl.ListingURLTemplate)
	c.Crawl.UserAgent = strings.TrimSpace(c.Crawl.UserAgent)
	c.Crawl.MarkerSelector = strings.TrimSpace(c.Crawl.MarkerSelector)
	c.Output.Path = strings.TrimSpace(c.Output.Path)
	c.Output.DatabasePath = strings.TrimSpace(c.Output.DatabasePath)
	c.Output.DebugDir = strings.TrimSpace(c.Output.DebugDir)
	if c.Output.DebugDir == "" {
		c.Output.DebugDir = "debug"
	}

	if c.Crawl.DelayMax.Duration < c.Crawl.DelayMin.Duration {
		c.Crawl.DelayMin, c.Crawl.DelayMax = c.Crawl.DelayMax, c.Crawl.DelayMin
	}

	hints := make([]string, 0, len(c.Crawl.DetailPathHints))
	for _, h := range c.Crawl.DetailPathHints {
		h = strings.TrimSpace(h)
		if h != "" {
			hints = append(hints, h)
		}
	}
	c.Crawl.DetailPathHints = hints
}
