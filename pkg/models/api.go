package models

// SearchRequest is the body of POST /api/search. Omitted fields take the
// server defaults.
type SearchRequest struct {
	Query    string   `json:"query"`
	Limit    *int     `json:"limit,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// SearchResponse is returned by POST /api/search.
type SearchResponse struct {
	Success bool           `json:"success"`
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Prompt          string   `json:"prompt"`
	Temperature     *float32 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// GenerateResponse is returned by POST /api/generate.
type GenerateResponse struct {
	Success  bool   `json:"success"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is returned by POST /api/chat.
type ChatResponse struct {
	Success  bool           `json:"success"`
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Sources  []SearchResult `json:"sources"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Message     string   `json:"message,omitempty"`
	MissingVars []string `json:"missingVars,omitempty"`
}
