package handlers

import (
	"net/http"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/response"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/apperrors"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// Health reports database connectivity and whether a dividend universe is stored.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with HealthStatus
// Error: 503 Service Unavailable with HealthStatus if the database cannot be queried
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.systemService.CheckHealth(r.Context())
	if err != nil {
		response.RespondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	response.RespondJSON(w, http.StatusOK, status)
}

// Version reports the build version, schema version, default benchmark, enabled
// features and the time of the last universe refresh.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfo
// Error: 500 Internal Server Error if version check fails
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	info, err := h.systemService.CheckVersion(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetVersionInfo.Error(), err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, info)
}
