package fetcher

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	const body = "<html><body>Toyota Corolla</body></html>"
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(Options{UserAgent: "test-agent", Timeout: 5 * time.Second}, nil)
	page, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(page.Body) != body {
		t.Errorf("body = %q", page.Body)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("status = %d", page.StatusCode)
	}
	if page.Header.Get("Content-Type") != "text/html; charset=utf-8" {
		t.Errorf("header not preserved: %q", page.Header.Get("Content-Type"))
	}
	if gotUA != "test-agent" {
		t.Errorf("user agent = %q", gotUA)
	}
	if !strings.HasPrefix(gotLang, "ru-RU") {
		t.Errorf("accept-language = %q", gotLang)
	}
}

func TestFetchNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Options{Timeout: 5 * time.Second}, nil)
	if _, err := c.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
}

func TestFetchGzipBody(t *testing.T) {
	const body = "<html><body>Пробег: 45 000 км</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(body))
		_ = gz.Close()
	}))
	defer srv.Close()

	c := New(Options{Timeout: 5 * time.Second}, nil)
	page, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(page.Body) != body {
		t.Fatalf("body = %q, want decompressed markup", page.Body)
	}
}

func TestFetchBodyLimitEnforced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	c := New(Options{Timeout: 5 * time.Second, MaxBodyBytes: 1024}, nil)
	if _, err := c.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for oversized body, got nil")
	}
}

func TestThrottleWaitWithinBounds(t *testing.T) {
	th := NewThrottle(20*time.Millisecond, 60*time.Millisecond, RateSettings{})

	start := time.Now()
	if err := th.Wait(context.Background(), "example.com"); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 20*time.Millisecond {
		t.Errorf("Wait() returned after %s, want at least the minimum delay", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("Wait() took %s, far above the maximum delay", elapsed)
	}
}

func TestThrottleWaitCancellable(t *testing.T) {
	th := NewThrottle(10*time.Second, 10*time.Second, RateSettings{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- th.Wait(ctx, "example.com") }()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Wait() returned nil after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Wait() did not notice cancellation")
	}
}

func TestThrottleSwapsInvertedBounds(t *testing.T) {
	th := NewThrottle(50*time.Millisecond, 10*time.Millisecond, RateSettings{})
	if th.delayMax < th.delayMin {
		t.Fatalf("bounds not repaired: min=%s max=%s", th.delayMin, th.delayMax)
	}
}
