package urlutil

import "net/url"

// Canonicalize applies a deterministic normalization to a URL, producing
// the form under which the frontier tracks it. It maps equivalent URL
// spellings to a single canonical representation.
//
// Rules:
//   - Scheme and host are lowercased
//   - Fragments are removed (two URLs differing only by fragment are the
//     same page)
//   - Trailing slashes are stripped from the path; the root path "/"
//     becomes empty, so "host" and "host/" are the same page
//   - Default ports are omitted (:80 for http, :443 for https)
//   - Query strings are KEPT: two URLs differing in query are distinct
//     pages
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if canonical.Path != "" {
		canonical.Path = stripTrailingSlash(canonical.Path)
		canonical.RawPath = ""
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""

	return canonical
}

// CanonicalKey returns the canonical string form used for visited-set
// membership.
func CanonicalKey(sourceUrl url.URL) string {
	c := Canonicalize(sourceUrl)
	return c.String()
}

// IsFetchable reports whether the URL uses a scheme the fetcher can
// handle. mailto:, tel:, javascript: and friends are discovery noise.
func IsFetchable(sourceUrl url.URL) bool {
	scheme := lowerASCII(sourceUrl.Scheme)
	return scheme == "http" || scheme == "https"
}

// lowerASCII converts ASCII characters to lowercase without allocating
// when the input is already lowercase.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func stripTrailingSlash(path string) string {
	for len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
