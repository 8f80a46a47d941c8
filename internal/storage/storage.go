// Package storage persists the single scraped-content artifact.
//
// There is exactly one artifact; each scrape overwrites it. Writers and readers
// are not coordinated, so an index run concurrent with a scrape may observe
// either version.
package storage

import (
	"context"
	"time"

	"github.com/masa1023/site-concierge/pkg/models"
)

// Info describes the stored artifact.
type Info struct {
	Size    int64
	ModTime time.Time
}

// ContentStore reads and writes the scraped content. Read and Stat return an
// error matching pipeline.ErrContentMissing when nothing has been scraped yet.
type ContentStore interface {
	Write(ctx context.Context, page models.Page) error
	Read(ctx context.Context) (string, error)
	Stat(ctx context.Context) (Info, error)
}
