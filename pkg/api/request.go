package api

import "strings"

// ProjectIDLength is the exact length a project identifier must have.
// Only the length is enforced, not the UUID structure.
const ProjectIDLength = 36

// Request is the part of an inbound HTTP request the decision pipeline
// consumes. The method is deliberately absent.
type Request struct {
	// Path is the escaped URL path, e.g. "/0f8fad5b-d9cb-469f-a165-70867728950e".
	Path string

	// Authorization is the raw Authorization header value, empty when absent.
	Authorization string
}

// ProjectID returns the path with its leading slash removed.
func (r Request) ProjectID() string {
	return strings.TrimPrefix(r.Path, "/")
}

// ValidProjectID reports whether id has the required length.
func ValidProjectID(id string) bool {
	return len(id) == ProjectIDLength
}
