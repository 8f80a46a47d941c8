// Package markdown recognises pages that are served as Markdown so the
// scraper can take their text as-is instead of running HTML extraction.
package markdown

import (
	"regexp"
	"strings"
)

var (
	headerPattern   = regexp.MustCompile(`^#{1,6}\s+\S`)
	listPattern     = regexp.MustCompile(`(?m)^[\-\*]\s+\S`)
	linkPattern     = regexp.MustCompile(`\[.+?\]\(.+?\)`)
	htmlTagPattern  = regexp.MustCompile(`(?i)<(div|p|span|main|article|section|a|ul|li|table)[\s>]`)
	atxTitlePattern = regexp.MustCompile(`^#\s+(.+?)\s*#*$`)
)

// IsMarkdownContentType checks if the Content-Type header indicates markdown.
func IsMarkdownContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/markdown") ||
		strings.HasPrefix(ct, "text/x-markdown")
}

// IsHTMLContentType checks if the Content-Type header indicates HTML.
func IsHTMLContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/html") ||
		strings.HasPrefix(ct, "application/xhtml+xml")
}

// IsMarkdownURL checks if the URL path names a markdown file. Query strings
// and fragments are ignored.
func IsMarkdownURL(url string) bool {
	lower := strings.ToLower(url)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	return strings.HasSuffix(lower, ".md") ||
		strings.HasSuffix(lower, ".markdown")
}

// IsMarkdownContent uses heuristics to detect if content is markdown.
func IsMarkdownContent(content string) bool {
	if content == "" {
		return false
	}

	trimmed := strings.TrimSpace(content)

	if looksLikeHTML(trimmed) {
		return false
	}

	return hasMarkdownPatterns(trimmed)
}

// looksLikeHTML checks if content appears to be HTML.
func looksLikeHTML(content string) bool {
	lower := strings.ToLower(content)
	if strings.HasPrefix(lower, "<!doctype") ||
		strings.HasPrefix(lower, "<html") ||
		strings.HasPrefix(lower, "<head") ||
		strings.HasPrefix(lower, "<body") {
		return true
	}
	// Fragments served without a document wrapper
	return htmlTagPattern.MatchString(content)
}

// hasMarkdownPatterns checks for common markdown syntax.
func hasMarkdownPatterns(content string) bool {
	return headerPattern.MatchString(content) ||
		listPattern.MatchString(content) ||
		linkPattern.MatchString(content)
}

// Detect reports whether a fetched page should be treated as markdown.
// An explicit markdown Content-Type or URL wins; an HTML Content-Type rules
// markdown out; otherwise content heuristics decide.
func Detect(url, contentType, content string) bool {
	if IsMarkdownContentType(contentType) {
		return true
	}
	if IsMarkdownURL(url) {
		return true
	}
	if IsHTMLContentType(contentType) {
		return false
	}
	return IsMarkdownContent(content)
}

// Title returns the text of the first level-one heading, or "".
func Title(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if m := atxTitlePattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return m[1]
		}
	}
	return ""
}
