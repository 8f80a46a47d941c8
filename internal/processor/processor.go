// Package processor turns a fetched HTML page into the plain text that gets
// chunked and indexed.
package processor

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Format selects how the main content is rendered.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ContentSelectors are tried in order; the first match is the page's main
// content. body is the last resort.
var ContentSelectors = []string{
	"main",
	`[role="main"]`,
	".content",
	".main-content",
	"article",
	".post",
	".page-content",
	"body",
}

// removedElements never contribute text.
const removedElements = "script, style, noscript"

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Details: true, atom.Dialog: true, atom.Div: true,
	atom.Dl: true, atom.Dt: true, atom.Fieldset: true, atom.Figcaption: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true,
	atom.Nav: true, atom.Ol: true, atom.P: true, atom.Pre: true,
	atom.Section: true, atom.Summary: true, atom.Table: true, atom.Tr: true,
	atom.Td: true, atom.Th: true, atom.Ul: true, atom.Caption: true,
}

// Processor extracts the main content of HTML pages.
type Processor struct {
	format Format
}

// New creates a Processor. An unknown or empty format selects FormatText.
func New(format Format) *Processor {
	if format != FormatMarkdown {
		format = FormatText
	}
	return &Processor{format: format}
}

// Format returns the output format.
func (p *Processor) Format() Format {
	return p.format
}

// Extract returns the text of the first element matching ContentSelectors,
// after removing scripts and styles. In text format, element boundaries
// become spaces and all whitespace runs collapse to one space.
func (p *Processor) Extract(htmlContent string) (string, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find(removedElements).Remove()

	sel := mainContent(doc)
	if sel == nil {
		return "", nil
	}

	if p.format == FormatMarkdown {
		outer, err := goquery.OuterHtml(sel)
		if err != nil {
			return "", fmt.Errorf("failed to render content: %w", err)
		}
		return p.Convert(outer)
	}

	var b strings.Builder
	for _, n := range sel.Nodes {
		innerText(n, &b)
	}
	return CollapseWhitespace(b.String()), nil
}

// Convert transforms HTML content into Markdown.
func (p *Processor) Convert(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	markdown, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(markdown), nil
}

// ExtractTitle extracts the <title> content from HTML.
func (p *Processor) ExtractTitle(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var title string
	var findTitle func(*html.Node) bool
	findTitle = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if findTitle(c) {
				return true
			}
		}
		return false
	}
	findTitle(doc)

	return CollapseWhitespace(title)
}

// CollapseWhitespace replaces every whitespace run with a single space and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range ContentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// innerText approximates the browser's rendered text: hidden subtrees are
// skipped and block elements are separated by line breaks.
func innerText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if n.DataAtom == atom.Template || hasAttr(n, "hidden") {
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.DataAtom]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		innerText(c, b)
	}
	if block {
		b.WriteByte('\n')
	}
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
