package transport

import (
	"io"
	"net/http"

	"github.com/rhuss/vexgate/pkg/api"
)

// HTTPStatus maps an outcome kind to the HTTP status code returned to the
// client. Unknown kinds map to 500.
func HTTPStatus(kind api.Kind) int {
	switch kind {
	case api.KindOK:
		return http.StatusOK
	case api.KindMissingToken, api.KindInvalidToken, api.KindUnauthorized:
		return http.StatusUnauthorized
	case api.KindInvalidProjectID:
		return http.StatusBadRequest
	case api.KindNotFound:
		return http.StatusNotFound
	case api.KindInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteOutcome writes out as a plain-text response. The body is the raw
// configuration value on success and the fixed kind message otherwise; the
// underlying error of an internal failure is never written.
func WriteOutcome(w http.ResponseWriter, out api.Outcome) {
	body := out.Body
	if out.Kind != api.KindOK {
		body = out.Kind.Message()
		if body == "" {
			body = api.KindInternalError.Message()
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(HTTPStatus(out.Kind))
	io.WriteString(w, body)
}
