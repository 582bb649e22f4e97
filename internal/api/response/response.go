// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/markdave123-py/s3handler/pkg/logger"
	"github.com/markdave123-py/s3handler/pkg/objectclient"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the standard API response envelope.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	URL     string `json:"url,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 success envelope with data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data})
}

// Message writes a 200 success envelope carrying a message and optional data.
func Message(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// URL writes a 200 success envelope carrying a URL.
func URL(w http.ResponseWriter, url string) {
	JSON(w, http.StatusOK, Envelope{Status: StatusSuccess, URL: url})
}

// Error writes an error envelope with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: StatusError, Message: message})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// FromError logs err and writes it with the status mapped from its kind.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	status := objectclient.HTTPStatusOf(err)
	event := logger.Log.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Log.Error()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("kind", string(objectclient.KindOf(err))).
		Int("status", status).
		Msg("request failed")
	Error(w, status, err.Error())
}
