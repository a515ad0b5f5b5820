// Package response writes the API's JSON bodies: successful payloads, error envelopes
// and per-field validation failures.
package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/validation"
)

// ErrorResponse is the error envelope for every non-2xx answer except failed backtests,
// which use model.BacktestFailure.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details any               `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RespondJSON writes data as JSON with the given status. A nil data writes the status only.
// Encoding errors are logged; the status line has already been sent by then.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// RespondError writes an ErrorResponse. An empty-string details is omitted.
//
//	response.RespondError(w, http.StatusNotFound, "ticker not found", "")
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	if s, ok := details.(string); ok && s == "" {
		details = nil
	}
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// RespondValidation writes a 400 for a failed validation. A *validation.Error is
// reported per field; any other error as its message.
func RespondValidation(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: "validation failed"}
	var verr *validation.Error
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	} else {
		resp.Details = err.Error()
	}
	RespondJSON(w, http.StatusBadRequest, resp)
}
