package extractor

import (
	"bytes"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/internal/mdconvert"
	"github.com/rohmanhakim/webgrab/internal/sanitizer"
	"github.com/rohmanhakim/webgrab/pkg/hashutil"
	"github.com/rohmanhakim/webgrab/pkg/urlutil"
)

/*
Responsibilities
- Parse raw markup into a normalized PageRecord
- Resolve relative links and image sources against the base URL
- Collect contact addresses from visible text

Extraction is total and deterministic: for any byte sequence, including
empty or malformed input, Extract returns a PageRecord. Missing elements
yield empty fields, never an error. It performs no network I/O and no
retries; fetch concerns live elsewhere.
*/

// maxTextRunes caps the stored text content. Word count is computed
// before capping.
const maxTextRunes = 5000

type DomExtractor struct {
	mdRule mdconvert.StrictConversionRule
	logger *zap.Logger
}

func NewDomExtractor(logger *zap.Logger) DomExtractor {
	return DomExtractor{
		mdRule: mdconvert.NewRule(),
		logger: logger,
	}
}

// Extract parses body and resolves everything against baseUrl. Links
// outside this step are never normalized again, except for the
// frontier's canonicalization at enqueue time.
func (d DomExtractor) Extract(body []byte, baseUrl url.URL) PageRecord {
	record := emptyRecord(baseUrl.String())

	if hash, err := hashutil.HashBytes(body, hashutil.HashAlgoBLAKE3); err == nil {
		record.ContentHash = hash
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		// Tolerant parsing means this is rare (x/net/html accepts almost
		// anything); degrade to the empty record.
		d.logger.Debug("unparseable body, returning empty record",
			zap.String("url", baseUrl.String()), zap.Error(err))
		return record
	}

	// JSON-LD lives in script elements, which sanitization strips.
	record.StructuredData = extractStructuredData(doc)

	sanitizer.Clean(doc)

	record.Title = extractTitle(doc)
	record.MetaDescription, record.MetaKeywords = extractMeta(doc)
	record.Links = extractLinks(doc, baseUrl)
	record.Images = extractImages(doc, baseUrl)
	record.SocialMedia = extractSocialMedia(record.Links)

	fullText := collapseWhitespace(doc.Text())
	record.WordCount = len(strings.Fields(fullText))
	record.Text = capRunes(fullText, maxTextRunes)
	record.Emails = extractEmails(fullText)
	record.Phones = extractPhones(fullText)
	record.Markdown = d.convertMarkdown(doc, baseUrl)

	return record
}

// ExtractOpaque builds a record for a body that is not markup, such as
// a PDF or image response. Only the content hash derives from the body;
// every other field stays empty.
func (d DomExtractor) ExtractOpaque(body []byte, baseUrl url.URL) PageRecord {
	record := emptyRecord(baseUrl.String())
	if hash, err := hashutil.HashBytes(body, hashutil.HashAlgoBLAKE3); err == nil {
		record.ContentHash = hash
	}
	return record
}

// extractTitle returns the first non-empty value from the title tag and
// the primary heading, or empty.
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func extractMeta(doc *goquery.Document) (description, keywords string) {
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok {
			name, _ = s.Attr("property")
		}
		content, _ := s.Attr("content")
		switch strings.ToLower(name) {
		case "description", "og:description":
			if description == "" {
				description = strings.TrimSpace(content)
			}
		case "keywords":
			if keywords == "" {
				keywords = strings.TrimSpace(content)
			}
		}
	})
	return description, keywords
}

// extractLinks collects every resolvable anchor target as an absolute
// URI, fragment stripped, in document order with duplicates collapsed.
func extractLinks(doc *goquery.Document, baseUrl url.URL) []string {
	links := []string{}
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved, ok := resolve(baseUrl, href)
		if !ok {
			return
		}
		if !urlutil.IsFetchable(*resolved) {
			return
		}
		resolved.Fragment = ""
		resolved.RawFragment = ""
		link := resolved.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

// extractImages keeps document order, duplicates included: images are an
// ordered sequence, not a set.
func extractImages(doc *goquery.Document, baseUrl url.URL) []string {
	images := []string{}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		resolved, ok := resolve(baseUrl, src)
		if !ok {
			return
		}
		images = append(images, resolved.String())
	})

	return images
}

// extractSocialMedia groups profile links by platform. Matching is by
// host, so a platform mentioned in prose does not count, only an actual
// link to a profile or channel.
func extractSocialMedia(links []string) map[string][]string {
	social := map[string][]string{}

	for _, link := range links {
		parsed, err := url.Parse(link)
		if err != nil {
			continue
		}
		if parsed.Path == "" || parsed.Path == "/" {
			continue
		}
		host := strings.ToLower(parsed.Hostname())
		for platform, domain := range socialHosts {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				social[platform] = append(social[platform], link)
			}
		}
	}

	return social
}

// extractStructuredData collects the page's JSON-LD blocks in document
// order. Blocks that do not parse as JSON are dropped, never an error.
func extractStructuredData(doc *goquery.Document) []json.RawMessage {
	blocks := []json.RawMessage{}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, []byte(raw)); err != nil {
			return
		}
		blocks = append(blocks, json.RawMessage(compact.Bytes()))
	})

	return blocks
}

func extractEmails(text string) []string {
	return sortedSet(emailPattern.FindAllString(text, -1))
}

func extractPhones(text string) []string {
	var matches []string
	for _, pattern := range phonePatterns {
		for _, m := range pattern.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if len(digitPattern.FindAllString(m, -1)) >= 7 {
				matches = append(matches, m)
			}
		}
	}
	return sortedSet(matches)
}

func (d DomExtractor) convertMarkdown(doc *goquery.Document, baseUrl url.URL) string {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	markdown, err := d.mdRule.Convert(body.Nodes[0])
	if err != nil {
		d.logger.Debug("markdown conversion failed",
			zap.String("url", baseUrl.String()), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(markdown)
}

// resolve turns href into an absolute URL against base. Unparseable or
// empty values report ok=false.
func resolve(base url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, false
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return nil, false
	}
	if resolved.Host == "" {
		return nil, false
	}
	return resolved, true
}

// sortedSet collapses duplicates and sorts, so set-valued fields are
// deterministic regardless of document layout.
func sortedSet(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func capRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
