package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/masa1023/site-concierge/internal/pipeline"
	"github.com/masa1023/site-concierge/pkg/models"
)

const (
	credentialSet     = "✓ Set"
	credentialMissing = "✗ Missing"
)

type scrapeRequest struct {
	URL string `json:"url"`
}

type scrapeResponse struct {
	Success       bool   `json:"success"`
	ContentLength int    `json:"contentLength"`
	Message       string `json:"message"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "URL is required", "")
		return
	}

	slog.Info("starting scrape", "url", req.URL)
	event, err := s.deps.Ingester.Scrape(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Scraping failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, scrapeResponse{
		Success:       true,
		ContentLength: event.ContentLength,
		Message:       "Content scraped successfully",
	})
}

type indexResponse struct {
	Success     bool   `json:"success"`
	ChunksCount int    `json:"chunksCount"`
	Message     string `json:"message"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	slog.Info("starting indexing")
	event, err := s.deps.Ingester.Index(r.Context())
	if err != nil {
		if missing, ok := pipeline.MissingConfig(err); ok {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
				Error:       "Missing required environment variables",
				MissingVars: missing,
				Message:     "Please set all required environment variables before indexing.",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Indexing failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, indexResponse{
		Success:     true,
		ChunksCount: event.ChunksCount,
		Message:     "Content indexed successfully",
	})
}

type statusResponse struct {
	HasScrapedContent bool       `json:"hasScrapedContent"`
	ContentLength     int        `json:"contentLength"`
	Timestamp         *time.Time `json:"timestamp"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.deps.Content.Stat(r.Context())
	if errors.Is(err, pipeline.ErrContentMissing) {
		writeJSON(w, http.StatusOK, statusResponse{})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	resp := statusResponse{HasScrapedContent: true, Timestamp: &info.ModTime}
	content, err := s.deps.Content.Read(r.Context())
	if err != nil {
		slog.Error("error reading content", "error", err)
	} else {
		resp.ContentLength = utf8.RuneCountInString(content)
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Environment map[string]string `json:"environment"`
	MissingVars []string          `json:"missingVars"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Environment: map[string]string{},
	}
	for _, cred := range s.deps.Credentials() {
		if cred.Set {
			resp.Environment[cred.Name] = credentialSet
			continue
		}
		resp.Environment[cred.Name] = credentialMissing
		resp.MissingVars = append(resp.MissingVars, cred.Name)
	}
	if len(resp.MissingVars) > 0 {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Query is required and must be a non-empty string", "")
		return
	}

	opts := s.config.Search
	if req.Limit != nil && *req.Limit > 0 {
		opts.Limit = *req.Limit
	}
	if req.Distance != nil {
		opts.Distance = *req.Distance
	}

	results, err := s.deps.Searcher.Search(r.Context(), req.Query, opts)
	if err != nil {
		slog.Error("search failed", "query", req.Query, "error", err)
		writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	writeJSON(w, http.StatusOK, models.SearchResponse{
		Success: true,
		Query:   req.Query,
		Results: results,
		Count:   len(results),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required and must be a non-empty string", "")
		return
	}

	opts := s.config.Generation
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}
	if req.MaxOutputTokens != nil {
		opts.MaxOutputTokens = *req.MaxOutputTokens
	}

	text, err := s.deps.Generator.Generate(r.Context(), req.Prompt, opts)
	if err != nil {
		slog.Error("generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Generation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateResponse{
		Success:  true,
		Prompt:   req.Prompt,
		Response: text,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "Question is required and must be a non-empty string", "")
		return
	}

	reply, err := s.deps.Assistant.Ask(r.Context(), req.Question)
	if err != nil {
		slog.Error("chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Chat failed", err.Error())
		return
	}
	sources := reply.Sources
	if sources == nil {
		sources = []models.SearchResult{}
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Success:  true,
		Question: req.Question,
		Answer:   reply.Answer,
		Sources:  sources,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found", fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path))
}
