package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/request"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/response"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/apperrors"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/service"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/validation"
)

// UniverseHandler handles HTTP requests for the dividend universe endpoints.
type UniverseHandler struct {
	universeService *service.UniverseService
}

// NewUniverseHandler creates a new UniverseHandler with the provided service dependency.
func NewUniverseHandler(universeService *service.UniverseService) *UniverseHandler {
	return &UniverseHandler{
		universeService: universeService,
	}
}

// Universe handles GET requests to list the stored dividend universe.
// Optional query parameters filter the listing: frequency (exact label) and
// minYield (decimal, 0.05 for 5%).
//
// Endpoint: GET /api/universe
// Response: 200 OK with Universe
// Error: 400 Bad Request if a filter is invalid
// Error: 404 Not Found if no refresh has completed yet
// Error: 500 Internal Server Error if retrieval fails
func (h *UniverseHandler) Universe(w http.ResponseWriter, r *http.Request) {
	q := request.UniverseQuery{
		Frequency: r.URL.Query().Get("frequency"),
		MinYield:  r.URL.Query().Get("minYield"),
	}
	if err := validation.ValidateUniverseQuery(q); err != nil {
		response.RespondValidation(w, err)
		return
	}

	filter := service.UniverseFilter{Frequency: q.Frequency}
	if s := strings.TrimSpace(q.MinYield); s != "" {
		filter.MinYield, _ = strconv.ParseFloat(s, 64)
	}

	universe, err := h.universeService.GetUniverse(r.Context(), filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrUniverseNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrUniverseNotFound.Error(), "run a universe refresh first")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveUniverse.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, universe)
}

// Ticker handles GET requests to retrieve the profile of one ticker.
//
// Endpoint: GET /api/universe/{symbol}
// Response: 200 OK with UniverseTicker
// Error: 400 Bad Request if the symbol is malformed (validated by middleware)
// Error: 404 Not Found if the symbol is not in the universe
// Error: 500 Internal Server Error if retrieval fails
func (h *UniverseHandler) Ticker(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	ticker, err := h.universeService.GetTicker(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, apperrors.ErrSymbolNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSymbolNotFound.Error(), symbol)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveUniverse.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, ticker)
}

// Refresh handles POST requests to rebuild the universe from the seed list.
// The request blocks until the refresh finishes.
//
// Endpoint: POST /api/universe/refresh
// Response: 200 OK with the new Universe
// Error: 409 Conflict if a refresh is already running
// Error: 500 Internal Server Error if the refresh fails
func (h *UniverseHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	universe, err := h.universeService.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrRefreshInProgress) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrRefreshInProgress.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRefreshUniverse.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, universe)
}

// RefreshStatus handles GET requests to retrieve one refresh record.
//
// Endpoint: GET /api/universe/refresh/{uuid}
// Response: 200 OK with UniverseRefresh
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the refresh does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *UniverseHandler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")

	refresh, err := h.universeService.GetRefresh(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUniverseNotFound) {
			response.RespondError(w, http.StatusNotFound, "universe refresh not found", id)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveUniverse.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, refresh)
}
