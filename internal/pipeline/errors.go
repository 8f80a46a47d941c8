package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Failures are wrapped with Wrap so that both the kind and the
// underlying cause match errors.Is.
var (
	ErrConfigMissing    = errors.New("configuration missing")
	ErrContentMissing   = errors.New("no scraped content")
	ErrEmptyChunkSet    = errors.New("no chunks produced")
	ErrScrapeFailed     = errors.New("scrape failed")
	ErrIndexFailed      = errors.New("index failed")
	ErrRetrievalFailed  = errors.New("retrieval failed")
	ErrGenerationFailed = errors.New("generation failed")
)

// Wrap tags err with kind. A nil err yields nil.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// ConfigMissingError lists the required settings that are not set.
type ConfigMissingError struct {
	Missing []string
}

func (e *ConfigMissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

func (e *ConfigMissingError) Is(target error) bool {
	return target == ErrConfigMissing
}

// MissingConfig returns the names carried by a ConfigMissingError in err's chain.
func MissingConfig(err error) ([]string, bool) {
	var cm *ConfigMissingError
	if errors.As(err, &cm) {
		return cm.Missing, true
	}
	return nil, false
}
