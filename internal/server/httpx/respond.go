// Package httpx writes the JSON response envelope shared by every endpoint.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies; auth payloads are a few hundred bytes.
const maxBodyBytes = 1 << 16

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// Envelope is the body of every API response.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param"`
	Location string `json:"location"`
}

// JSON sends v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success sends {success:true, message, data}.
func Success(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Fail sends {success:false, message, error}. errText may be empty.
func Fail(w http.ResponseWriter, status int, message, errText string) {
	JSON(w, status, Envelope{Message: message, Error: errText})
}

// ValidationFailed sends a 400 with per-field errors.
func ValidationFailed(w http.ResponseWriter, errs []FieldError) {
	JSON(w, http.StatusBadRequest, Envelope{Message: "Validation failed", Errors: errs})
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(target)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	return err
}
