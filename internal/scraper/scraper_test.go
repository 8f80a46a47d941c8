package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/masa1023/site-concierge/internal/processor"
)

func TestScraper_FetchSingleURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`
			<html>
			<head><title>Test Page</title><style>body { color: red; }</style></head>
			<body>
				<nav>Home | About</nav>
				<main>
					<h1>Hello World</h1>
					<p>This is a   test page.</p>
					<script>console.log("tracking")</script>
				</main>
			</body>
			</html>
		`))
	}))
	defer server.Close()

	s := New(Config{
		Delay:     10 * time.Millisecond,
		UserAgent: "test-agent",
	})

	page, err := s.Scrape(t.Context(), server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	// URL might have trailing slash normalized
	if !strings.HasPrefix(page.URL, server.URL) {
		t.Errorf("URL = %q, want prefix %q", page.URL, server.URL)
	}
	if page.Content != "Hello World This is a test page." {
		t.Errorf("Content = %q", page.Content)
	}
	if page.Title != "Test Page" {
		t.Errorf("Title = %q, want %q", page.Title, "Test Page")
	}
	if page.ScrapedAt.IsZero() {
		t.Error("ScrapedAt should not be zero")
	}
}

func TestScraper_DoesNotFollowLinks(t *testing.T) {
	var hits []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/page1">Page 1</a></body></html>`))
	}))
	defer server.Close()

	s := New(Config{UserAgent: "test-agent"})

	if _, err := s.Scrape(t.Context(), server.URL); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	for _, p := range hits {
		if p == "/page1" {
			t.Error("should not follow links")
		}
	}
}

func TestScraper_MarkdownPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte("# Guide\n\nInstall the   tool.\n\n- step one\n"))
	}))
	defer server.Close()

	tests := []struct {
		format processor.Format
		want   string
	}{
		{processor.FormatText, "# Guide Install the tool. - step one"},
		{processor.FormatMarkdown, "# Guide\n\nInstall the   tool.\n\n- step one"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			s := New(Config{Format: tt.format})

			page, err := s.Scrape(t.Context(), server.URL+"/guide")
			if err != nil {
				t.Fatalf("Scrape() error = %v", err)
			}
			if page.Content != tt.want {
				t.Errorf("Content = %q, want %q", page.Content, tt.want)
			}
			if page.Title != "Guide" {
				t.Errorf("Title = %q, want %q", page.Title, "Guide")
			}
		})
	}
}

func TestScraper_HandlesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Error", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := New(Config{UserAgent: "test-agent"})

	page, err := s.Scrape(t.Context(), server.URL)
	if err == nil {
		t.Fatalf("expected error for 500 response, got page %+v", page)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should mention the status, got %v", err)
	}
}

func TestScraper_InvalidURL(t *testing.T) {
	s := New(Config{})

	for _, raw := range []string{"", "not a url", "ftp://example.com/file", "http://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := s.Scrape(t.Context(), raw)
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("Scrape(%q) error = %v, want ErrInvalidURL", raw, err)
			}
		})
	}
}

func TestScraper_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	s := New(Config{Timeout: 2 * time.Second})

	if _, err := s.Scrape(t.Context(), addr); err == nil {
		t.Error("expected error for unreachable host")
	}
}

func TestScraper_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Test</body></html>`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(Config{})
	if _, err := s.Scrape(ctx, server.URL); !errors.Is(err, context.Canceled) {
		t.Errorf("Scrape() error = %v, want context.Canceled", err)
	}
}

func TestScraper_SetsUserAgent(t *testing.T) {
	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>Test</body></html>`))
	}))
	defer server.Close()

	s := New(Config{
		Delay:     10 * time.Millisecond,
		UserAgent: "site-concierge/1.0",
	})

	_, err := s.Scrape(t.Context(), server.URL)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}

	if receivedUA != "site-concierge/1.0" {
		t.Errorf("User-Agent = %q, want %q", receivedUA, "site-concierge/1.0")
	}
}
