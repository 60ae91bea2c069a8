package utils

import (
	"encoding/json"
	"net/http"
	"time"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Flash     *Flash      `json:"flash,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// WriteJSON renders a page payload. The flash popped from the request, if
// any, rides along so the client can display it once.
func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
