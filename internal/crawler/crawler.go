// Package crawler drives the crawl: paginated listing fetches, link
// collection, concurrent detail fetches, and record aggregation.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"dromcrawl/internal/config"
	"dromcrawl/internal/encoding"
	"dromcrawl/internal/extract"
	"dromcrawl/internal/fetcher"
	"dromcrawl/internal/scanner"
	"dromcrawl/pkg/types"
)

// Engine orchestrates one crawl run. Listing and detail phases each own
// their fetch client and politeness throttle; failures of individual pages
// are logged and skipped, never fatal.
type Engine struct {
	cfg       config.Config
	listing   *fetcher.Client
	detail    *fetcher.Client
	scanner   *scanner.Scanner
	extractor *extract.Extractor
	logger    *slog.Logger

	listingConcurrency int
}

// NewEngine builds a crawl engine from configuration.
func NewEngine(cfg config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// The listing endpoint sees half the detail concurrency to keep load on
	// the index pages low.
	listingConcurrency := cfg.Crawl.Concurrency / 2
	if listingConcurrency < 2 {
		listingConcurrency = 2
	}

	rateCfg := fetcher.RateSettings{
		Requests: cfg.Crawl.RateLimitPerHost.Requests,
		Window:   cfg.Crawl.RateLimitPerHost.Window.Duration,
	}
	delayMin := cfg.Crawl.DelayMin.Duration
	delayMax := cfg.Crawl.DelayMax.Duration

	newClient := func(conns int) *fetcher.Client {
		return fetcher.New(fetcher.Options{
			UserAgent:       cfg.Crawl.UserAgent,
			Headers:         cfg.Crawl.Headers,
			Timeout:         cfg.Crawl.RequestTimeout.Duration,
			MaxBodyBytes:    cfg.Crawl.MaxBodyBytes,
			MaxConnsPerHost: conns,
		}, fetcher.NewThrottle(delayMin, delayMax, rateCfg))
	}

	return &Engine{
		cfg:     cfg,
		listing: newClient(listingConcurrency),
		detail:  newClient(cfg.Crawl.Concurrency),
		scanner: scanner.New(scanner.Options{
			MarkerSelector:  cfg.Crawl.MarkerSelector,
			DetailPathHints: cfg.Crawl.DetailPathHints,
		}, logger),
		extractor:          extract.NewExtractor(logger),
		logger:             logger,
		listingConcurrency: listingConcurrency,
	}, nil
}

// Run executes the full crawl and returns every successfully extracted
// record. An empty link set ends the run early with zero records; that is
// reported, not an error.
func (e *Engine) Run(ctx context.Context) ([]types.Record, error) {
	e.logger.Info("collecting listing pages", "pages", e.cfg.Crawl.Pages, "concurrency", e.listingConcurrency)
	listings := e.collectListingPages(ctx)

	links := e.mergeLinks(listings)
	e.logger.Info("collected links", "count", links.Len())
	if links.Len() == 0 {
		e.logger.Warn("no detail links discovered, nothing to fetch")
		return nil, ctx.Err()
	}

	e.logger.Info("fetching and parsing detail pages", "links", links.Len(), "concurrency", e.cfg.Crawl.Concurrency)
	records := e.fetchDetails(ctx, links.URLs())
	e.logger.Info("crawl finished", "records", len(records))
	return records, ctx.Err()
}

// collectListingPages fetches and decodes listing pages 1..N concurrently.
// The returned slice is indexed by page number so scan results can be merged
// in page order regardless of arrival order.
func (e *Engine) collectListingPages(ctx context.Context) []string {
	n := e.cfg.Crawl.Pages
	texts := make([]string, n)

	runIndexed(ctx, e.listingConcurrency, n, func(ctx context.Context, i int) {
		pageURL := fmt.Sprintf(e.cfg.Crawl.ListingURLTemplate, i+1)
		page, err := e.listing.Fetch(ctx, pageURL)
		if err != nil {
			e.logger.Warn("listing fetch failed", "url", pageURL, "error", err)
			return
		}
		texts[i] = encoding.Resolve(page.Body, page.Header)
		e.dumpDebug(fmt.Sprintf("debug_list_%d.html", i+1), texts[i])
	})
	return texts
}

// mergeLinks scans every fetched listing page and merges the results into
// one LinkSet in fixed page-number order, making first-seen dedupe
// deterministic across the whole crawl.
func (e *Engine) mergeLinks(listings []string) *scanner.LinkSet {
	links := scanner.NewLinkSet()
	for i, text := range listings {
		if text == "" {
			continue
		}
		pageURL, err := url.Parse(fmt.Sprintf(e.cfg.Crawl.ListingURLTemplate, i+1))
		if err != nil {
			continue
		}
		links.AddAll(e.scanner.Scan(text, pageURL))
	}
	return links
}

// fetchDetails fetches every link concurrently and extracts one record per
// successfully fetched page. Failed fetches leave gaps that are dropped,
// so sibling pages are unaffected.
func (e *Engine) fetchDetails(ctx context.Context, links []string) []types.Record {
	results := make([]*types.Record, len(links))

	runIndexed(ctx, e.cfg.Crawl.Concurrency, len(links), func(ctx context.Context, i int) {
		link := links[i]
		page, err := e.detail.Fetch(ctx, link)
		if err != nil {
			e.logger.Warn("detail fetch failed", "url", link, "error", err)
			return
		}
		text := encoding.Resolve(page.Body, page.Header)
		e.dumpDebug(fmt.Sprintf("debug_detail_%d.html", i+1), text)

		rec := e.extractor.Extract(link, text)
		results[i] = &rec
	})

	records := make([]types.Record, 0, len(links))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	return records
}

func (e *Engine) dumpDebug(name, text string) {
	if !e.cfg.Output.Debug {
		return
	}
	dir := e.cfg.Output.DebugDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.logger.Warn("debug dir", "dir", dir, "error", err)
		return
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		e.logger.Warn("debug dump failed", "path", path, "error", err)
	}
}
