// Package response writes the {"success": ...} JSON envelope used by every endpoint.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"shop-api/logger"
	"shop-api/services"

	"go.uber.org/zap"
)

// Fields are the keys written next to "success".
type Fields map[string]any

func write(w http.ResponseWriter, status int, body Fields) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// JSON sends a successful envelope with the given status and fields.
func JSON(w http.ResponseWriter, status int, fields Fields) {
	body := Fields{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	write(w, status, body)
}

// OK sends a 200 envelope.
func OK(w http.ResponseWriter, fields Fields) {
	JSON(w, http.StatusOK, fields)
}

// Created sends a 201 envelope.
func Created(w http.ResponseWriter, fields Fields) {
	JSON(w, http.StatusCreated, fields)
}

// Message sends a 200 envelope carrying only a message.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, Fields{"message": msg})
}

// Fail sends an error envelope with an explicit status.
func Fail(w http.ResponseWriter, status int, msg string) {
	write(w, status, Fields{"success": false, "error": msg})
}

// StatusFor maps a service error kind onto its HTTP status.
func StatusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation, services.KindConflict, services.KindInvalidTransition:
		return http.StatusBadRequest
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error sends the envelope for err. Server errors are logged with their cause
// and reported to the client as "Server error".
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.KindOf(err)
	status := StatusFor(kind)
	msg := "Server error"
	var serr *services.Error
	if errors.As(err, &serr) && kind != services.KindServer {
		msg = serr.Message
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	Fail(w, status, msg)
}
