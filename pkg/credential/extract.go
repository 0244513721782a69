package credential

import (
	"net/http"
	"strings"
)

// Scheme is the only accepted authorization scheme. Matching is exact and
// case-sensitive.
const Scheme = "Bearer"

// Extract parses an Authorization header value into a bearer token.
//
// The header is split on single spaces. The first segment must equal
// "Bearer" and the second segment is returned verbatim, without trimming
// or charset checks. ok is false when the header is empty, uses another
// scheme, or has no second segment at all ("Bearer" alone). A header of
// "Bearer " yields an empty token with ok true.
func Extract(header string) (token string, ok bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if parts[0] != Scheme {
		return "", false
	}
	if len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}

// FromRequest extracts the bearer token from r's Authorization header.
func FromRequest(r *http.Request) (string, bool) {
	return Extract(r.Header.Get("Authorization"))
}
