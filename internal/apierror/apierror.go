// Package apierror writes the JSON error body shared by handlers and
// middleware.
package apierror

import (
	"encoding/json"
	"net/http"
	"time"
)

// Payload is the error body. Details is either a string or a list of
// field messages.
type Payload struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Details   any       `json:"errorDetails"`
	Timestamp time.Time `json:"timestamp"`
}

// Write sends status with a Payload body
func Write(w http.ResponseWriter, status int, message string, details any) {
	if details == nil {
		details = message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Payload{
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}
