package sanitizer

import "github.com/PuerkitoBio/goquery"

/*
Responsibilities
- Strip non-content nodes before text extraction
- Never fail: sanitizing is best-effort node removal

Only nodes that can never carry visible text are removed. Chrome like
navigation and footers stays: a universal scraper cannot know which parts
of an arbitrary site are noise.
*/

// Clean removes script/style/template noise from the document in place
// and returns the same document for chaining.
func Clean(doc *goquery.Document) *goquery.Document {
	for _, selector := range noiseSelectors {
		doc.Find(selector).Remove()
	}
	return doc
}
