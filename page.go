package serp

import (
	"strconv"
	"strings"
)

// HeadingLevel identifies an HTML section heading (h1 through h6).
type HeadingLevel int

// Heading levels in order of importance.
const (
	H1 HeadingLevel = iota + 1
	H2
	H3
	H4
	H5
	H6
)

// HeadingLevels lists every heading level from H1 to H6.
var HeadingLevels = []HeadingLevel{H1, H2, H3, H4, H5, H6}

// String returns the lowercase tag name, e.g. "h2".
func (l HeadingLevel) String() string {
	return "h" + strconv.Itoa(int(l))
}

// Valid reports whether l is between H1 and H6.
func (l HeadingLevel) Valid() bool {
	return l >= H1 && l <= H6
}

// Headings holds the heading texts of a page grouped by level, each list in
// document order. The fields are flattened into the enclosing JSON object.
type Headings struct {
	H1 []string `json:"h1"`
	H2 []string `json:"h2"`
	H3 []string `json:"h3"`
	H4 []string `json:"h4"`
	H5 []string `json:"h5"`
	H6 []string `json:"h6"`
}

// NewHeadings returns Headings with an empty, non-nil list for every level
// so that JSON output always contains arrays.
func NewHeadings() Headings {
	return Headings{
		H1: []string{},
		H2: []string{},
		H3: []string{},
		H4: []string{},
		H5: []string{},
		H6: []string{},
	}
}

func (h *Headings) list(l HeadingLevel) *[]string {
	switch l {
	case H1:
		return &h.H1
	case H2:
		return &h.H2
	case H3:
		return &h.H3
	case H4:
		return &h.H4
	case H5:
		return &h.H5
	case H6:
		return &h.H6
	}
	return nil
}

// Level returns the heading texts for l. Invalid levels return nil.
func (h Headings) Level(l HeadingLevel) []string {
	p := h.list(l)
	if p == nil {
		return nil
	}
	return *p
}

// Add appends text to the list for level l after trimming it.
// Blank text and invalid levels are ignored; Add reports whether text was kept.
func (h *Headings) Add(l HeadingLevel, text string) bool {
	p := h.list(l)
	if p == nil {
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	*p = append(*p, text)
	return true
}

// Count returns the number of headings at level l.
func (h Headings) Count(l HeadingLevel) int {
	return len(h.Level(l))
}

// Total returns the number of headings across all levels.
func (h Headings) Total() int {
	var n int
	for _, l := range HeadingLevels {
		n += h.Count(l)
	}
	return n
}

// Elements holds the structural elements extracted from a single HTML page.
type Elements struct {
	Title           string
	MetaDescription string
	Headings        Headings
}

// PageRecord is the analysis result for one successfully processed URL.
type PageRecord struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	Headings
	Rank int `json:"rank"`
}

// NewPageRecord builds an unranked record for url from extracted elements.
func NewPageRecord(url string, e *Elements) *PageRecord {
	rec := &PageRecord{
		URL:             url,
		Title:           e.Title,
		MetaDescription: e.MetaDescription,
		Headings:        NewHeadings(),
	}
	for _, l := range HeadingLevels {
		for _, text := range e.Headings.Level(l) {
			rec.Headings.Add(l, text)
		}
	}
	return rec
}

// Validate returns an error if the record contains invalid fields.
func (r *PageRecord) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "record URL required")
	}
	if r.Rank < 1 {
		return Errorf(EINVALID, "record rank must be positive, got %d", r.Rank)
	}
	for _, l := range HeadingLevels {
		for i, text := range r.Headings.Level(l) {
			if strings.TrimSpace(text) == "" {
				return Errorf(EINVALID, "record %s heading %d is blank", l, i+1)
			}
		}
	}
	return nil
}
