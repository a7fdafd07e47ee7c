// Package serp analyzes how top-ranking search results structure their
// content. It queries a search provider for a keyword, fetches the result
// pages, and extracts the title, meta description, and H1-H6 headings of
// each page into ranked records that can be exported to JSON and XLSX.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, xlsx/).
package serp
