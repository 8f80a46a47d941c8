package chat

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// promptEncoding approximates the tokenizer of the hosted models.
const promptEncoding = "cl100k_base"

// TokenCounter measures prompt size.
type TokenCounter interface {
	Count(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(text string) int

func (f TokenCounterFunc) Count(text string) int { return f(text) }

// EstimateTokens assumes four characters per token.
func EstimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

type tiktokenCounter struct {
	once sync.Once
	load func() (*tiktoken.Tiktoken, error)
	enc  atomic.Pointer[tiktoken.Tiktoken]
}

// DefaultTokenCounter counts with tiktoken. The encoding may have to be
// downloaded (TIKTOKEN_CACHE_DIR avoids that), so it is loaded in the
// background on first use and EstimateTokens answers until it is ready or
// if it cannot be loaded.
func DefaultTokenCounter() TokenCounter {
	return newTiktokenCounter(func() (*tiktoken.Tiktoken, error) {
		return tiktoken.GetEncoding(promptEncoding)
	})
}

func newTiktokenCounter(load func() (*tiktoken.Tiktoken, error)) *tiktokenCounter {
	return &tiktokenCounter{load: load}
}

func (c *tiktokenCounter) Count(text string) int {
	c.once.Do(func() { go c.fetch() })
	if enc := c.enc.Load(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return EstimateTokens(text)
}

func (c *tiktokenCounter) fetch() {
	enc, err := c.load()
	if err != nil {
		slog.Debug("tiktoken unavailable, estimating prompt tokens", "error", err)
		return
	}
	c.enc.Store(enc)
}
