// Package httpx provides HTTP response utilities for the {status, data} JSON envelope.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Envelope statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Envelope is the response body shared by every endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK sends a success envelope carrying data.
func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Status: StatusOK, Data: data})
}

// Message sends a success envelope carrying a human readable message.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Status: StatusOK, Message: msg})
}

// Fail sends an error envelope.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Status: StatusError, Message: msg})
}

// FailData sends an error envelope whose reason travels in data, the shape
// registration clients read.
func FailData(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Status: StatusError, Data: data})
}

// maxJSONBody bounds request bodies decoded by DecodeJSON.
const maxJSONBody = 1 << 20

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
