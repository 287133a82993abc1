package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	JSON string
	Text string
}{
	JSON: "application/json",
	Text: "text/plain",
}

// APIResponse is the uniform JSON envelope returned by all handlers.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func WriteResponseBytes(w http.ResponseWriter, contentType string, message []byte, statusCode int) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response [%s]: %s", message, err)
	}
}

func WriteResponseBytesOK(w http.ResponseWriter, contentType string, message []byte) {
	WriteResponseBytes(w, contentType, message, http.StatusOK)
}

func WriteJSONResponseOK(w http.ResponseWriter, message string) {
	WriteResponseBytes(w, ContentType.JSON, []byte(message), http.StatusOK)
}

func WriteTextResponseOK(w http.ResponseWriter, message string) {
	WriteResponseBytes(w, ContentType.Text, []byte(message), http.StatusOK)
}

// WriteAPISuccess writes the success envelope with the given payload.
func WriteAPISuccess(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, APIResponse{
		Success: true,
		Data:    data,
	})
}

// WriteAPIList writes the success envelope for listing endpoints, with the count field set.
func WriteAPIList(w http.ResponseWriter, data any, count int) {
	writeEnvelope(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Count:   &count,
	})
}

// WriteAPIError writes the failure envelope with a diagnostic message.
func WriteAPIError(w http.ResponseWriter, statusCode int, message string) {
	writeEnvelope(w, statusCode, APIResponse{
		Success: false,
		Message: message,
	})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, resp APIResponse) {
	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to marshal response envelope: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	WriteResponseBytes(w, ContentType.JSON, respJson, statusCode)
}
