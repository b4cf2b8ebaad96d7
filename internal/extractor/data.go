package extractor

import (
	"encoding/json"
	"time"
)

// PageRecord is the normalized result of extracting one page. It is
// immutable once created; ownership passes to the export bundle.
//
// Collections are never nil so every record serializes with the same
// schema: missing data means empty values, not omitted keys.
type PageRecord struct {
	URL             string   `json:"url"`
	FinalURL        string   `json:"finalUrl"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription"`
	MetaKeywords    string   `json:"metaKeywords"`
	Text            string   `json:"text"`
	WordCount       int      `json:"wordCount"`
	Links           []string `json:"links"`
	Images          []string `json:"images"`
	Emails          []string `json:"emails"`
	Phones          []string `json:"phones"`
	// SocialMedia groups outbound profile links by platform name.
	SocialMedia map[string][]string `json:"socialMedia"`
	// StructuredData holds the page's JSON-LD blocks verbatim, compacted.
	StructuredData []json.RawMessage `json:"structuredData"`
	Markdown       string            `json:"markdown"`
	ContentHash    string            `json:"contentHash"`
	FetchedAt      time.Time         `json:"fetchedAt"`
	StatusCode     int               `json:"statusCode"`
	Depth          int               `json:"depth"`
}

// emptyRecord is the degenerate extraction outcome: all collections
// allocated, all scalars zero. Malformed input degrades to this rather
// than an error.
func emptyRecord(sourceURL string) PageRecord {
	return PageRecord{
		URL:            sourceURL,
		Links:          []string{},
		Images:         []string{},
		Emails:         []string{},
		Phones:         []string{},
		SocialMedia:    map[string][]string{},
		StructuredData: []json.RawMessage{},
	}
}
