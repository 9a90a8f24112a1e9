package scanner

import (
	"net/url"
	"reflect"
	"testing"
)

func testScanner() *Scanner {
	return New(Options{
		MarkerSelector:  `a[data-ftid="bull_title"]`,
		DetailPathHints: []string{"/cars/", "/avtomobili/"},
	}, nil)
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestScanMarkerSelectorWins(t *testing.T) {
	const html = `
<html><body>
  <a data-ftid="bull_title" href="/cars/toyota/corolla/100.html">Toyota Corolla, 2018</a>
  <a data-ftid="bull_title" href="https://auto.drom.ru/cars/kia/rio/200.html">Kia Rio, 2020</a>
  <a href="/cars/lada/vesta/300.html">Lada Vesta, 2019</a>
</body></html>`
	base := mustParse(t, "https://auto.drom.ru/all/page1/")

	got := testScanner().Scan(html, base)
	want := []string{
		"https://auto.drom.ru/cars/toyota/corolla/100.html",
		"https://auto.drom.ru/cars/kia/rio/200.html",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan() = %v, want %v", got, want)
	}
}

func TestScanPathHintFallback(t *testing.T) {
	const html = `
<html><body>
  <a class="title" href="/cars/toyota/corolla/100.html">Toyota Corolla, 2018</a>
  <a href="/avtomobili/kia/rio/200.html">Kia Rio</a>
  <a href="/news/today.html">Новости</a>
</body></html>`
	base := mustParse(t, "https://auto.drom.ru/all/page1/")

	got := testScanner().Scan(html, base)
	for _, link := range got {
		if link == "https://auto.drom.ru/news/today.html" {
			t.Fatalf("news link leaked through hint fallback: %v", got)
		}
	}
	if len(got) != 2 {
		t.Fatalf("Scan() = %v, want the two hinted links", got)
	}
}

func TestScanHeuristicFallback(t *testing.T) {
	// No markers, no hint matches: only the shape/text heuristic remains.
	const html = `
<html><body>
  <a href="/toyota/corolla/100.html">Toyota Corolla, 2018</a>
  <a href="/all/page2/">2</a>
  <a href="https://other.example.com/toyota/corolla/100.html">Toyota Corolla, 2018</a>
  <a href="/about/">О сайте</a>
</body></html>`
	s := New(Options{MarkerSelector: `a[data-ftid="bull_title"]`}, nil)
	base := mustParse(t, "https://auto.drom.ru/all/page1/")

	got := s.Scan(html, base)
	want := []string{"https://auto.drom.ru/toyota/corolla/100.html"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan() = %v, want %v", got, want)
	}
}

func TestScanSkipsNonNavigableHrefs(t *testing.T) {
	const html = `
<html><body>
  <a data-ftid="bull_title" href="javascript:void(0)">Honda Fit, 2017</a>
  <a data-ftid="bull_title" href="mailto:sales@example.com">Honda Fit, 2017</a>
  <a data-ftid="bull_title" href="/cars/honda/fit/400.html#photos">Honda Fit, 2017</a>
</body></html>`
	base := mustParse(t, "https://auto.drom.ru/all/page1/")

	got := testScanner().Scan(html, base)
	want := []string{"https://auto.drom.ru/cars/honda/fit/400.html"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan() = %v, want %v", got, want)
	}
}

func TestScanDeduplicatesWithinPage(t *testing.T) {
	const html = `
<html><body>
  <a data-ftid="bull_title" href="/cars/toyota/100.html">Toyota, 2018</a>
  <a data-ftid="bull_title" href="/cars/toyota/100.html">Toyota, 2018</a>
</body></html>`
	base := mustParse(t, "https://auto.drom.ru/all/page1/")

	got := testScanner().Scan(html, base)
	if len(got) != 1 {
		t.Fatalf("Scan() = %v, want one unique link", got)
	}
}

func TestLinkSetPreservesFirstSeenOrder(t *testing.T) {
	set := NewLinkSet()
	set.AddAll([]string{"a", "b"})
	set.AddAll([]string{"b", "c", "a"})

	if got, want := set.URLs(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("URLs() = %v, want %v", got, want)
	}
	if !set.Contains("b") || set.Contains("d") {
		t.Fatal("Contains() inconsistent with inserted links")
	}
	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}
}
