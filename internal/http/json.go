package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxJSONBodyBytes = 1 << 20

// DecodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected. On failure the error response has already
// been written and false is returned.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = errors.New("body must contain a single JSON object")
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		WriteError(w, ErrorParams{
			Code:    http.StatusRequestEntityTooLarge,
			ErrCode: "payload_too_large",
			Err:     fmt.Errorf("body exceeds %d bytes", tooLarge.Limit),
		})
	case errors.Is(err, io.EOF):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: errors.New("empty body")})
	default:
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
	}
	return false
}

// WriteJSON encodes v before touching the response so an encoding failure
// can still become a clean 500.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes {"error": ErrCode, "message": ...}. A nil Err falls back
// to the status text.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	msg := http.StatusText(p.Code)
	if p.Err != nil {
		msg = p.Err.Error()
	}
	WriteJSON(w, p.Code, errorBody{Error: p.ErrCode, Message: msg})
}
