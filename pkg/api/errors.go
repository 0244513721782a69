package api

import "fmt"

// Kind identifies the terminal outcome of a config read. The set is closed:
// every request ends in exactly one of these.
type Kind int

const (
	KindOK Kind = iota
	KindMissingToken
	KindInvalidToken
	KindInvalidProjectID
	KindUnauthorized
	KindNotFound
	KindInternalError
)

var kindNames = map[Kind]string{
	KindOK:               "ok",
	KindMissingToken:     "missing_token",
	KindInvalidToken:     "invalid_token",
	KindInvalidProjectID: "invalid_project_id",
	KindUnauthorized:     "unauthorized",
	KindNotFound:         "not_found",
	KindInternalError:    "internal_error",
}

var kindMessages = map[Kind]string{
	KindMissingToken:     "missing token",
	KindInvalidToken:     "invalid token",
	KindInvalidProjectID: "invalid project id",
	KindUnauthorized:     "unauthorized",
	KindNotFound:         "not found",
	KindInternalError:    "internal error",
}

// String returns the snake_case name used in logs and metric labels.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Message returns the fixed client-facing body for a rejection kind.
// KindOK has no message; its body is the configuration value.
func (k Kind) Message() string {
	return kindMessages[k]
}

// Rejected reports whether k is anything other than KindOK.
func (k Kind) Rejected() bool {
	return k != KindOK
}
