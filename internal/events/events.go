package events

import "time"

// ScrapeCompleteEvent is sent when a page has been scraped and stored.
type ScrapeCompleteEvent struct {
	SourceURL     string    // URL that was scraped
	Title         string    // Page title, if any
	ContentLength int       // Length of the stored text in characters
	Timestamp     time.Time // When the scrape completed
}

// IndexCompleteEvent is sent when the stored content has been indexed.
type IndexCompleteEvent struct {
	Collection  string        // Vector store collection that was rebuilt
	ChunksCount int           // Number of chunks produced from the content
	Inserted    int           // Chunks stored successfully
	Failed      int           // Chunks rejected by the store (non-fatal)
	Duration    time.Duration // How long indexing took
}
