package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	apperrors "github.com/louisbranch/taskdeck/internal/platform/errors"
)

// errorPayload is the wire shape for every failed request.
type errorPayload struct {
	Error    string            `json:"error"`
	Code     string            `json:"code"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// writeJSON encodes payload with the given status. A nil payload writes the
// status with no body.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps a domain error onto the wire. Storage failures and other
// untyped errors are logged and masked behind a generic 500 message.
func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	payload := errorPayload{
		Error: "internal server error",
		Code:  string(apperrors.CodeUnknown),
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		payload.Error = appErr.Message
		payload.Code = string(appErr.Code)
		payload.Metadata = appErr.Metadata
	} else {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, payload)
}
