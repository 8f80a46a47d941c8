// Package llm sends assembled prompts to a text generation model.
package llm

import "context"

const (
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 1024
)

// Options tune a single generation call. Temperature is sent as given, so
// zero requests greedy decoding. A non-positive MaxOutputTokens selects
// DefaultMaxOutputTokens.
type Options struct {
	Temperature     float32
	MaxOutputTokens int
}

// DefaultOptions returns the settings used when a request names none.
func DefaultOptions() Options {
	return Options{Temperature: DefaultTemperature, MaxOutputTokens: DefaultMaxOutputTokens}
}

func (o Options) outputTokens() int {
	if o.MaxOutputTokens <= 0 {
		return DefaultMaxOutputTokens
	}
	return o.MaxOutputTokens
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
