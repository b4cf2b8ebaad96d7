package extractor

import "regexp"

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// phonePatterns match common international and US-style numbers in
// visible text. Matches shorter than 7 digits are discarded as noise.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
}

var digitPattern = regexp.MustCompile(`\d`)

// socialHosts maps platform names to the domains their profile links
// live on. Subdomains of these count as well.
var socialHosts = map[string]string{
	"facebook":  "facebook.com",
	"twitter":   "twitter.com",
	"linkedin":  "linkedin.com",
	"instagram": "instagram.com",
	"youtube":   "youtube.com",
	"pinterest": "pinterest.com",
}
