package handler

import (
	"net/http"

	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// AnalyticsHandler handles analytics HTTP requests.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("handler", "analytics").Logger(),
	}
}

// DailySales handles GET /api/analytics/daily-sales requests.
func (h *AnalyticsHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListDailySales(r.Context(), queryInt(r, "limit", 30))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, rows)
}
