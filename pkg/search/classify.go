package search

import (
	"net/url"
	"strings"
)

// QueryKind is the outcome of classifying raw query input.
type QueryKind int

const (
	// FreeText input needs exact or vector retrieval before traversal.
	FreeText QueryKind = iota
	// Identifier input is a node URI usable directly as a traversal seed.
	Identifier
)

// Classify decides whether input is a node identifier or free text. The
// check is purely syntactic and never consults the store: a URI-shaped
// string that names no stored node simply produces an empty traversal
// downstream, not an error.
func Classify(input string) QueryKind {
	if IsIdentifier(input) {
		return Identifier
	}
	return FreeText
}

// IsIdentifier reports whether input parses as an absolute resource
// identifier (scheme plus authority or opaque part, no whitespace).
func IsIdentifier(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" || strings.ContainsAny(input, " \t\n") {
		return false
	}

	u, err := url.Parse(input)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != "" || u.Path != ""
}
