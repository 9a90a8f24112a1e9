package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dromcrawl/internal/config"
	"dromcrawl/internal/crawler"
	"dromcrawl/internal/sink"
)

func main() {
	cfgPath := flag.String("config", "", "Path to crawler configuration file (optional)")
	pages := flag.Int("pages", 0, "Number of listing pages to crawl")
	out := flag.String("out", "", "CSV artifact path")
	db := flag.String("db", "", "Optional SQLite database path")
	concurrency := flag.Int("concurrency", 0, "Maximum concurrent detail fetches")
	delayMin := flag.Float64("delay-min", -1, "Minimum politeness delay between requests, in seconds")
	delayMax := flag.Float64("delay-max", -1, "Maximum politeness delay between requests, in seconds")
	debug := flag.Bool("debug", false, "Persist every fetched page body for inspection")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the file only when explicitly set on the command line.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pages":
			cfg.Crawl.Pages = *pages
		case "out":
			cfg.Output.Path = *out
		case "db":
			cfg.Output.DatabasePath = *db
		case "concurrency":
			cfg.Crawl.Concurrency = *concurrency
		case "delay-min":
			cfg.Crawl.DelayMin = config.DurationFrom(secondsToDuration(*delayMin))
		case "delay-max":
			cfg.Crawl.DelayMax = config.DurationFrom(secondsToDuration(*delayMax))
		case "debug":
			cfg.Output.Debug = *debug
			if *debug {
				cfg.Logging.Level = "debug"
			}
		}
	})
	cfg.Normalise()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.Logging)
	slog.SetDefault(logger)

	engine, err := crawler.NewEngine(*cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise engine: %v\n", err)
		os.Exit(1)
	}

	sinks, err := buildSinks(cfg.Output, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise output: %v\n", err)
		os.Exit(1)
	}
	defer sinks.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, err := engine.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crawler stopped with error: %v\n", err)
		os.Exit(1)
	}

	if err := sinks.Write(ctx, records); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save records: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(path)
}

func buildSinks(out config.OutputConfig, logger *slog.Logger) (*sink.Pipeline, error) {
	sinks := []sink.Sink{sink.NewCSVSink(out.Path, logger)}
	if out.DatabasePath != "" {
		s, err := sink.NewSQLiteSink(out.DatabasePath, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sink.NewPipeline(sinks...), nil
}

func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Structured {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func secondsToDuration(sec float64) time.Duration {
	if sec < 0 {
		sec = 0
	}
	return time.Duration(sec * float64(time.Second))
}
