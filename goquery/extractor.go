// Package goquery implements serp.Extractor on top of the goquery DOM
// selection library.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/serp"
)

// Ensure Extractor implements serp.Extractor at compile time.
var _ serp.Extractor = (*Extractor)(nil)

// Extractor pulls the title, meta description and headings out of HTML.
// Extractor is stateless and safe for concurrent use.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses html and returns its structural elements.
func (e *Extractor) Extract(html string) (*serp.Elements, error) {
	if strings.TrimSpace(html) == "" {
		return nil, serp.Errorf(serp.EPARSE, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, serp.Errorf(serp.EPARSE, "failed to parse HTML: %v", err)
	}

	elements := &serp.Elements{Headings: serp.NewHeadings()}

	if title, ok := findTitle(doc); ok {
		elements.Title = title
	}

	if desc, ok := findMeta(doc, "name", "description"); ok {
		elements.MetaDescription = desc
	} else if desc, ok := findMeta(doc, "property", "og:description"); ok {
		elements.MetaDescription = desc
	}

	for _, level := range serp.HeadingLevels {
		doc.Find(level.String()).Each(func(_ int, sel *goquery.Selection) {
			elements.Headings.Add(level, sel.Text())
		})
	}

	return elements, nil
}

// findTitle returns the trimmed text of the first title element.
func findTitle(doc *goquery.Document) (string, bool) {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.Text()), true
}

// findMeta returns the trimmed content of the first meta element whose attr
// equals value, ignoring case. Elements with a blank content are skipped.
func findMeta(doc *goquery.Document, attr, value string) (string, bool) {
	var content string
	var found bool
	doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		v, ok := sel.Attr(attr)
		if !ok || !strings.EqualFold(strings.TrimSpace(v), value) {
			return true
		}
		c, ok := sel.Attr("content")
		c = strings.TrimSpace(c)
		if !ok || c == "" {
			return true
		}
		content, found = c, true
		return false
	})
	return content, found
}
