// Package httpapi carries the response envelope and the error-kind to
// status-code mapping. This is the only layer that knows about HTTP
// status codes; the services never encode them.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"biblioteca/internal/apperr"
)

// Response is the envelope wrapping every API result.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Success builds a success envelope with an optional payload and message.
func Success(data any, message string) Response {
	return Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Failure builds an error envelope from a domain error.
func Failure(err error) Response {
	return Response{
		Success:   false,
		Message:   apperr.MessageOf(err),
		Code:      apperr.CodeOf(err),
		Timestamp: time.Now().UnixMilli(),
	}
}

// StatusOf maps a domain error kind to an HTTP status code.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidOperation:
		return http.StatusUnprocessableEntity
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// WriteSuccess writes a success envelope with the given status code.
func WriteSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Success(data, message))
}

// WriteError writes an error envelope, logging unexpected failures.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	writeJSON(w, status, Failure(err))
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// BearerToken extracts the session token from the Authorization header.
// An empty string means no token was presented.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return header
}
