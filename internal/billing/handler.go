package billing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// Handler exposes billing endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/billings", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/last-billing-number", h.lastNumber)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.updateState)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	billings, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if billings == nil {
		billings = []Billing{}
	}
	httpx.JSON(w, http.StatusOK, billings)
}

func (h *Handler) lastNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.LastNumber(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"number": n})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

type updateStateRequest struct {
	State string `json:"state" validate:"required"`
}

func (h *Handler) updateState(w http.ResponseWriter, r *http.Request) {
	var req updateStateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	b, err := h.service.UpdateState(r.Context(), chi.URLParam(r, "id"), req.State)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}
