package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v as JSON with the given status code. Content-Type and
// X-Content-Type-Options headers are set automatically. Encoding errors are
// discarded; use this for handler responses, not for streaming.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes {"success": true, "data": data}.
func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// JSONError writes {"success": false, "error": message}.
func JSONError(w http.ResponseWriter, status int, message string) {
	Fail(w, status, message, nil)
}

// Fail writes {"success": false, "error": message, "fields": fields}.
// fields maps request field names to what is wrong with them.
func Fail(w http.ResponseWriter, status int, message string, fields map[string]string) {
	JSON(w, status, Envelope{Error: message, Fields: fields})
}
