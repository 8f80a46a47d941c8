// Package chunker splits scraped page text into sentence-aligned chunks that
// fit an embedding model's input.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/masa1023/site-concierge/pkg/models"
)

const (
	// DefaultMaxChunkSize is the size bound used when none is configured.
	DefaultMaxChunkSize = 500

	// MinChunkLength is the length a chunk must exceed to be kept.
	MinChunkLength = 20
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Split breaks text into chunks of at most maxChunkSize characters, packing
// whole sentences greedily. Sentence terminators are normalised to a single
// period. A sentence longer than maxChunkSize is emitted as its own chunk.
// Chunks of MinChunkLength characters or fewer are dropped.
//
// Lengths are counted in Unicode code points. A maxChunkSize of zero or less
// selects DefaultMaxChunkSize.
func Split(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	var chunks []string
	current := ""

	for _, fragment := range sentenceBoundary.Split(text, -1) {
		sentence := strings.TrimSpace(fragment)
		if sentence == "" {
			continue
		}

		candidate := sentence
		if current != "" {
			candidate = current + ". " + sentence
		}

		if utf8.RuneCountInString(candidate) <= maxChunkSize {
			current = candidate
			continue
		}

		if current != "" {
			chunks = append(chunks, current+".")
		}
		current = sentence
	}

	if current != "" {
		if !strings.HasSuffix(current, ".") {
			current += "."
		}
		chunks = append(chunks, current)
	}

	kept := chunks[:0]
	for _, c := range chunks {
		if utf8.RuneCountInString(c) > MinChunkLength {
			kept = append(kept, c)
		}
	}
	return kept
}

// Chunks is Split with each chunk tagged by its position.
func Chunks(text string, maxChunkSize int) []models.Chunk {
	parts := Split(text, maxChunkSize)
	out := make([]models.Chunk, len(parts))
	for i, p := range parts {
		out[i] = models.Chunk{Text: p, Index: i}
	}
	return out
}
