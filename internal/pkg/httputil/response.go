package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

// NoticeKind is the banner style a client renders for a Notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is the envelope returned by every mutation endpoint.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
}

// ErrorResponse is the standard error envelope for all API errors.
type ErrorResponse struct {
	Error string     `json:"error"`
	Kind  NoticeKind `json:"kind"`
	Code  string     `json:"code,omitempty"`
}

// JSON writes a JSON response with the given status code. If encoding fails
// the failure is logged; headers are already on the wire by then.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("json encode failed", "err", err)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response with the given data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 response with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Notify writes a Notice with the given status.
func Notify(w http.ResponseWriter, status int, kind NoticeKind, message string, data any) {
	JSON(w, status, Notice{Kind: kind, Message: message, Data: data})
}

// Success writes a 200 success Notice.
func Success(w http.ResponseWriter, message string, data any) {
	Notify(w, http.StatusOK, NoticeSuccess, message, data)
}

// Successf is Success with a formatted message and no payload.
func Successf(w http.ResponseWriter, format string, args ...any) {
	Success(w, fmt.Sprintf(format, args...), nil)
}

// Error writes a JSON error response. Use for client errors (4xx).
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message, Kind: NoticeError})
}

// ErrorCode writes a JSON error response carrying a machine-readable code.
func ErrorCode(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorResponse{Error: message, Kind: NoticeError, Code: code})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Unauthorized writes a 401 error.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "unauthorized")
}

// InternalError writes a 500 error. Logs the real error but returns a
// generic message to the client (never leak internals).
func InternalError(w http.ResponseWriter, err error) {
	logger.Error("internal error", "err", err)
	Error(w, http.StatusInternalServerError, "internal server error")
}

// Decode reads JSON from the request body into dst.
// Returns false and writes a 400 response if parsing fails.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid JSON body")
		return false
	}
	return true
}
