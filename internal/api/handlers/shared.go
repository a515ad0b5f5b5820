package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/response"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/apperrors"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
)

// maxBodyBytes bounds request bodies; a backtest request is a few hundred bytes.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T. Unknown fields, trailing data and empty
// bodies are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, fmt.Errorf("request body is required")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return v, fmt.Errorf("request body is required")
		}
		return v, err
	}
	if dec.More() {
		return v, fmt.Errorf("request body must contain a single JSON object")
	}
	return v, nil
}

// respondBacktestError maps a failed run to its HTTP answer. Data failures are 422 with
// a bare {"error": ...} body and no numeric fields.
func respondBacktestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrDataUnavailable):
		response.RespondJSON(w, http.StatusUnprocessableEntity, model.BacktestFailure{Error: MsgNoValidPriceData})
	case errors.Is(err, apperrors.ErrInsufficientHistory):
		response.RespondJSON(w, http.StatusUnprocessableEntity, model.BacktestFailure{Error: MsgInsufficientData})
	case errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrEmptyPortfolio):
		response.RespondValidation(w, err)
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads the body
		response.RespondError(w, statusClientClosedRequest, "request cancelled", "")
	default:
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRunBacktest.Error(), err.Error())
	}
}

// statusClientClosedRequest is the de facto status for a client that hung up mid-request.
const statusClientClosedRequest = 499
