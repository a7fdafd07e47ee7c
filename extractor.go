package serp

// Extractor extracts the SEO-relevant structure of an HTML page.
type Extractor interface {
	// Extract parses raw HTML and returns its title, meta description and
	// headings. Missing elements produce empty values, never errors.
	// Returns EPARSE if the input cannot be parsed as HTML.
	Extract(html string) (*Elements, error)
}
