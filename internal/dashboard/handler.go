package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// Handler exposes the dashboard endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.metrics)
	r.Delete("/dashboard/cache", h.invalidate)
}

func (h *Handler) invalidate(w http.ResponseWriter, r *http.Request) {
	h.service.Invalidate(r.Context())
	httpx.NoContent(w)
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}
	m, err := h.service.Metrics(r.Context(), rng)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

// parseRange accepts YYYY-MM-DD bounds. The end bound is inclusive of the
// whole day.
func parseRange(start, end string) (Range, error) {
	var rng Range
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return Range{}, err
		}
		rng.From = &t
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return Range{}, err
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		rng.To = &t
	}
	return rng, nil
}
