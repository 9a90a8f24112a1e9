// Package scanner discovers detail-page links on paginated listing pages.
package scanner

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Options tunes the link-selection strategies.
type Options struct {
	// MarkerSelector locates anchors carrying the listing-title marker.
	MarkerSelector string
	// DetailPathHints are path substrings that identify detail links when the
	// marker yields nothing.
	DetailPathHints []string
}

// Scanner extracts candidate detail-page URLs from listing pages. Listing
// markup varies across template revisions, so a prioritized strategy list
// trades precision for robustness: the marker selector first, then path
// hints and text/path-shape heuristics.
type Scanner struct {
	marker string
	hints  []string
	logger *slog.Logger
}

// New constructs a scanner.
func New(opts Options, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		marker: opts.MarkerSelector,
		hints:  opts.DetailPathHints,
		logger: logger,
	}
}

var paginationSegment = regexp.MustCompile(`(?i)^page\d*$`)

// Scan returns the absolute detail-page URLs found on one listing page, in
// document order and unique within the page. Global deduplication across
// pages is the caller's job (LinkSet).
func (s *Scanner) Scan(pageText string, pageURL *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		s.logger.Debug("listing parse failed", "url", pageURL.String(), "error", err)
		return nil
	}

	links := s.markerLinks(doc, pageURL)
	if len(links) == 0 {
		// Fallback strategies run together and their results are unioned.
		links = append(s.hintLinks(doc, pageURL), s.heuristicLinks(doc, pageURL)...)
	}

	unique := make([]string, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for _, u := range links {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		unique = append(unique, u)
	}
	return unique
}

func (s *Scanner) markerLinks(doc *goquery.Document, base *url.URL) []string {
	if s.marker == "" {
		return nil
	}
	var out []string
	doc.Find(s.marker).Each(func(_ int, sel *goquery.Selection) {
		if u, ok := resolveHref(base, sel); ok {
			out = append(out, u.String())
		}
	})
	return out
}

func (s *Scanner) hintLinks(doc *goquery.Document, base *url.URL) []string {
	if len(s.hints) == 0 {
		return nil
	}
	var out []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		for _, hint := range s.hints {
			if strings.Contains(href, hint) {
				if u, ok := resolveHref(base, sel); ok {
					out = append(out, u.String())
				}
				return
			}
		}
	})
	return out
}

// heuristicLinks matches on link text (contains a digit or at least two
// words) combined with path shape: same host, at least two non-empty path
// segments, and not a pagination path.
func (s *Scanner) heuristicLinks(doc *goquery.Document, base *url.URL) []string {
	var out []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if !likelyListingTitle(text) {
			return
		}
		u, ok := resolveHref(base, sel)
		if !ok {
			return
		}
		if !strings.EqualFold(u.Hostname(), base.Hostname()) {
			return
		}
		if !detailShapedPath(u.Path) {
			return
		}
		out = append(out, u.String())
	})
	return out
}

func likelyListingTitle(text string) bool {
	if strings.ContainsFunc(text, unicode.IsDigit) {
		return true
	}
	return len(strings.Fields(text)) >= 2
}

func detailShapedPath(path string) bool {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) < 2 {
		return false
	}
	for _, seg := range segments {
		if paginationSegment.MatchString(seg) {
			return false
		}
	}
	return true
}

// resolveHref turns an anchor's href into an absolute http(s) URL against the
// listing page's own URL. Fragments are dropped.
func resolveHref(base *url.URL, sel *goquery.Selection) (*url.URL, bool) {
	href, ok := sel.Attr("href")
	if !ok {
		return nil, false
	}
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return nil, false
	}
	u, err := base.Parse(href)
	if err != nil {
		return nil, false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, false
	}
	u.Fragment = ""
	return u, true
}
