// Package scraper fetches a single page and extracts its readable text.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/masa1023/site-concierge/internal/markdown"
	"github.com/masa1023/site-concierge/internal/processor"
	"github.com/masa1023/site-concierge/pkg/models"
)

// ErrInvalidURL is returned for URLs that cannot be fetched.
var ErrInvalidURL = errors.New("invalid url")

// Config holds scraper configuration.
type Config struct {
	Delay     time.Duration
	UserAgent string
	Timeout   time.Duration
	Format    processor.Format
}

// Scraper fetches web pages and returns their main text.
type Scraper struct {
	config    Config
	processor *processor.Processor
}

// New creates a new Scraper with the given configuration.
func New(config Config) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "site-concierge/1.0"
	}
	return &Scraper{
		config:    config,
		processor: processor.New(config.Format),
	}
}

// Scrape fetches pageURL and returns its extracted text. Only the given page
// is visited; links are not followed. Pages served as markdown are kept as
// they are, HTML pages go through main-content extraction.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*models.Page, error) {
	if err := validateURL(pageURL); err != nil {
		return nil, err
	}

	slog.Debug("starting scrape", "url", pageURL)

	var (
		body        []byte
		contentType string
		finalURL    = pageURL
		fetchErr    error
	)

	// A fresh collector per call keeps visited-URL state from leaking
	// between scrapes of the same page.
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.UserAgent(s.config.UserAgent),
	)
	c.SetRequestTimeout(s.config.Timeout)

	if s.config.Delay > 0 {
		c.Limit(&colly.LimitRule{
			DomainGlob: "*",
			Delay:      s.config.Delay,
		})
	}

	// Check for cancellation before each request
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			slog.Debug("scrape cancelled", "url", r.URL.String())
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		contentType = r.Headers.Get("Content-Type")
		finalURL = r.Request.URL.String()
		slog.Debug("fetched page", "url", finalURL, "status", r.StatusCode, "content_type", contentType, "size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			fetchErr = fmt.Errorf("failed to fetch %s: status %d: %w", pageURL, r.StatusCode, err)
			return
		}
		fetchErr = fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	})

	visitErr := c.Visit(pageURL)
	c.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if visitErr != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, visitErr)
	}
	if body == nil {
		return nil, fmt.Errorf("failed to fetch %s: empty response", pageURL)
	}

	page, err := s.extract(finalURL, contentType, string(body))
	if err != nil {
		return nil, err
	}

	if page.Content == "" {
		slog.Warn("no text extracted", "url", finalURL)
	}
	slog.Info("scrape complete", "url", finalURL, "title", page.Title, "length", len([]rune(page.Content)))
	return page, nil
}

func (s *Scraper) extract(pageURL, contentType, raw string) (*models.Page, error) {
	page := &models.Page{
		URL:         pageURL,
		ContentType: contentType,
		ScrapedAt:   time.Now(),
	}

	if markdown.Detect(pageURL, contentType, raw) {
		slog.Debug("using markdown as served", "url", pageURL)
		page.Title = markdown.Title(raw)
		if s.processor.Format() == processor.FormatMarkdown {
			page.Content = strings.TrimSpace(raw)
		} else {
			page.Content = processor.CollapseWhitespace(raw)
		}
		return page, nil
	}

	text, err := s.processor.Extract(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", pageURL, err)
	}
	page.Title = s.processor.ExtractTitle(raw)
	page.Content = text
	return page, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}
