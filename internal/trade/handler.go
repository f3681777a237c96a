package trade

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
	"github.com/comercia-pos/comercia-pos/internal/shared"
)

// MetricsPort drops cached dashboard payloads after a write.
type MetricsPort interface {
	Invalidate(ctx context.Context)
}

// Handler exposes line item and transaction endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	idem     *shared.IdempotencyStore
	metrics  MetricsPort
	validate *validator.Validate
}

// NewHandler constructs Handler. idem may be nil; manual transactions then
// ignore the Idempotency-Key header. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, idem *shared.IdempotencyStore, metrics MetricsPort) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		idem:     idem,
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) invalidateMetrics(ctx context.Context) {
	if h.metrics != nil {
		h.metrics.Invalidate(ctx)
	}
}

// MountRoutes registers endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/sales-details", func(r chi.Router) {
		r.Get("/", h.listDetails)
		r.Patch("/{id}/status", h.updateDetailStatus)
	})
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.listPayments)
		r.Post("/", h.createPayment)
		r.Put("/{id}", h.updatePayment)
		r.Delete("/{id}", h.deletePayment)
	})
}

func parentFromQuery(r *http.Request) ParentRef {
	q := r.URL.Query()
	return ParentRef{
		SaleID:     q.Get("saleId"),
		PurchaseID: q.Get("purchaseId"),
		LoanID:     q.Get("loanId"),
		ExpenseID:  q.Get("expenseId"),
	}
}

func (h *Handler) listDetails(w http.ResponseWriter, r *http.Request) {
	parent := parentFromQuery(r)
	if err := parent.Validate(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	details, err := h.service.ListDetails(r.Context(), parent)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if details == nil {
		details = []Detail{}
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) updateDetailStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Status DetailStatus `json:"status" validate:"required"`
	}
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	if err := h.service.MarkDetailStatus(r.Context(), id, body.Status); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"saleDetailId": id, "status": string(body.Status)})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if parent := parentFromQuery(r); parent.Kind() != "" {
		payments, err := h.service.ListPaymentsByParent(r.Context(), parent)
		if err != nil {
			httpx.RespondError(w, h.logger, err)
			return
		}
		if payments == nil {
			payments = []Payment{}
		}
		httpx.JSON(w, http.StatusOK, payments)
		return
	}

	var filter PaymentFilter
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid query", "from must be RFC3339")
			return
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid query", "to must be RFC3339")
			return
		}
		filter.To = &t
	}
	filter.Type = PaymentType(q.Get("type"))
	filter.Origin = q.Get("origin")

	payments, err := h.service.ListPayments(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if payments == nil {
		payments = []Payment{}
	}
	httpx.JSON(w, http.StatusOK, payments)
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var in ManualPaymentInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if h.idem != nil && key != "" {
		if err := h.idem.CheckAndInsert(r.Context(), key, "transactions"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				httpx.Problem(w, http.StatusConflict, "Duplicate request", "this transaction was already registered")
				return
			}
			httpx.RespondError(w, h.logger, err)
			return
		}
	}

	payment, err := h.service.CreateManualPayment(r.Context(), in)
	if err != nil {
		if h.idem != nil && key != "" {
			if delErr := h.idem.Delete(r.Context(), key); delErr != nil {
				h.logger.Warn("idempotency key rollback failed", "key", key, "error", delErr)
			}
		}
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.invalidateMetrics(r.Context())
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) updatePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var upd PaymentUpdate
	if err := httpx.DecodeJSON(w, r, &upd); err != nil {
		return
	}
	if err := h.service.UpdatePayment(r.Context(), id, upd); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.invalidateMetrics(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]string{"transactionId": id})
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeletePayment(r.Context(), id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	h.invalidateMetrics(r.Context())
	httpx.NoContent(w)
}
