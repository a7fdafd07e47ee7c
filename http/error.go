package http

import (
	"log/slog"
	"net/http"

	"github.com/fwojciec/serp"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	serp.EINVALID:  http.StatusBadRequest,
	serp.ENOTFOUND: http.StatusNotFound,
	serp.EEMPTY:    http.StatusUnprocessableEntity,
	serp.EFETCH:    http.StatusBadGateway,
	serp.EPARSE:    http.StatusUnprocessableEntity,
	serp.EINTERNAL: http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// Error writes err as a plain text response with the matching status code.
// Internal errors are logged and replaced with a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := serp.ErrorCode(err), serp.ErrorMessage(err)
	if code == serp.EINTERNAL {
		slog.Default().Error("http error", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	http.Error(w, message, ErrorStatusCode(code))
}
