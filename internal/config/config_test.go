package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	if !strings.Contains(cfg.Crawl.ListingURLTemplate, "%d") {
		t.Fatalf("default listing template missing page verb: %q", cfg.Crawl.ListingURLTemplate)
	}
}

func TestLoadFromReaderMergesOverDefaults(t *testing.T) {
	const doc = `
crawl:
  pages: 5
  concurrency: 3
  delay_min: 250ms
  delay_max: 2s
output:
  path: out.csv
  debug: true
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader() error: %v", err)
	}
	if cfg.Crawl.Pages != 5 {
		t.Errorf("Pages = %d, want 5", cfg.Crawl.Pages)
	}
	if cfg.Crawl.DelayMin.Duration != 250*time.Millisecond {
		t.Errorf("DelayMin = %s, want 250ms", cfg.Crawl.DelayMin)
	}
	if cfg.Output.Path != "out.csv" {
		t.Errorf("Path = %q, want out.csv", cfg.Output.Path)
	}
	// Fields not present in the document keep their defaults.
	if cfg.Crawl.UserAgent == "" {
		t.Error("UserAgent default was lost during merge")
	}
	if cfg.Crawl.RequestTimeout.Duration != 25*time.Second {
		t.Errorf("RequestTimeout = %s, want 25s", cfg.Crawl.RequestTimeout)
	}
}

func TestLoadFromReaderNumericSecondsDuration(t *testing.T) {
	const doc = `
crawl:
  delay_min: 0.5
  delay_max: 2
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader() error: %v", err)
	}
	if cfg.Crawl.DelayMin.Duration != 500*time.Millisecond {
		t.Errorf("DelayMin = %s, want 500ms", cfg.Crawl.DelayMin)
	}
	if cfg.Crawl.DelayMax.Duration != 2*time.Second {
		t.Errorf("DelayMax = %s, want 2s", cfg.Crawl.DelayMax)
	}
}

func TestLoadFromReaderUnknownFieldRejected(t *testing.T) {
	const doc = `
crawl:
  depth: 3
`
	if _, err := LoadFromReader(strings.NewReader(doc)); err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero pages", func(c *Config) { c.Crawl.Pages = 0 }},
		{"zero concurrency", func(c *Config) { c.Crawl.Concurrency = 0 }},
		{"template without verb", func(c *Config) { c.Crawl.ListingURLTemplate = "https://example.com/all/" }},
		{"empty user agent", func(c *Config) { c.Crawl.UserAgent = "" }},
		{"empty output path", func(c *Config) { c.Output.Path = "" }},
		{"negative delay", func(c *Config) { c.Crawl.DelayMin.Duration = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestNormaliseSwapsInvertedDelays(t *testing.T) {
	cfg := Default()
	cfg.Crawl.DelayMin = DurationFrom(3 * time.Second)
	cfg.Crawl.DelayMax = DurationFrom(time.Second)
	cfg.Normalise()
	if cfg.Crawl.DelayMin.Duration != time.Second || cfg.Crawl.DelayMax.Duration != 3*time.Second {
		t.Fatalf("delays not swapped: min=%s max=%s", cfg.Crawl.DelayMin, cfg.Crawl.DelayMax)
	}
}
