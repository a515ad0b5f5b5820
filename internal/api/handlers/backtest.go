package handlers

import (
	"net/http"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/request"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/response"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/service"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/validation"
)

// Failure messages returned to clients when a run aborts on its data.
const (
	MsgNoValidPriceData = "No valid price data"
	MsgInsufficientData = "Insufficient data"
)

// BacktestHandler handles HTTP requests for backtest endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// the run to the backtestService.
type BacktestHandler struct {
	backtestService *service.BacktestService
}

// NewBacktestHandler creates a new BacktestHandler with the provided service dependency.
func NewBacktestHandler(backtestService *service.BacktestService) *BacktestHandler {
	return &BacktestHandler{
		backtestService: backtestService,
	}
}

// RunBacktest handles POST requests to backtest a fixed-weight portfolio.
//
// Endpoint: POST /api/backtest
// Request Body: BacktestRequest (portfolio, startDate, endDate?, initialCapital?, benchmark?)
// Response: 200 OK with BacktestReport
// Error: 400 Bad Request if the body is invalid or validation fails
// Error: 422 Unprocessable Entity with {"error": "No valid price data"} or
// {"error": "Insufficient data"} when the market data cannot support a run
// Error: 500 Internal Server Error for anything else
func (h *BacktestHandler) RunBacktest(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.BacktestRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateBacktestRequest(req); err != nil {
		response.RespondValidation(w, err)
		return
	}

	report, err := h.backtestService.RunBacktest(r.Context(), req)
	if err != nil {
		respondBacktestError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}
