package loans

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
	"github.com/comercia-pos/comercia-pos/internal/trade"
)

// Handler exposes loan endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	trade    *trade.Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, tradeSvc *trade.Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		trade:    tradeSvc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/loans", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/save", h.save)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if loans == nil {
		loans = []Loan{}
	}
	httpx.JSON(w, http.StatusOK, loans)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	loan, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	parent := trade.ParentRef{LoanID: loan.ID}
	details, err := h.trade.ListDetails(r.Context(), parent)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	payments, err := h.trade.ListPaymentsByParent(r.Context(), parent)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"loan":         loan,
		"loanDetails":  details,
		"transactions": payments,
	})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var in SaveInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	result, err := h.service.Save(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.NoContent(w)
}
