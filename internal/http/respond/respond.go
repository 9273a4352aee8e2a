package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Fields are merged into a success body next to "success": true.
type Fields map[string]any

// Failure is the error body shared by every endpoint.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JSON writes a success body with fields flattened next to the success flag.
func JSON(w http.ResponseWriter, status int, fields Fields) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	write(w, status, body)
}

// Raw writes payload as-is, without the success flag.
func Raw(w http.ResponseWriter, status int, payload any) {
	write(w, status, payload)
}

// Error writes an error response with the shared body structure.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Failure{Success: false, Message: message})
}

func write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
