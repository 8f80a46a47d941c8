package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Page is the scraped text of a single site page. Only one Page exists at a
// time; the next scrape overwrites it.
type Page struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"` // HTTP Content-Type header
	ScrapedAt   time.Time `json:"scraped_at"`
}

// Chunk is a bounded piece of the scraped text. Index is its 0-based position
// in the chunk sequence.
type Chunk struct {
	Text  string `json:"text"`
	Index int    `json:"chunkIndex"`
}

// ID returns a deterministic identifier for the chunk.
func (c Chunk) ID() string {
	return ChunkID(c.Text, c.Index)
}

// SearchResult is a chunk returned by a similarity query. Results are ordered
// most relevant first; no score is exposed.
type SearchResult struct {
	Text       string `json:"text"`
	ChunkIndex int    `json:"chunkIndex"`
}

// ChunkID creates a deterministic ID from the chunk position and text.
// The ID is a SHA-256 hash (first 16 chars).
func ChunkID(text string, index int) string {
	hash := sha256.Sum256([]byte(strconv.Itoa(index) + "\x00" + text))
	return hex.EncodeToString(hash[:])[:16]
}
