package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// WhatsAppEnqueuer queues a receipt notification for background delivery.
type WhatsAppEnqueuer interface {
	EnqueueWhatsAppReceipt(ctx context.Context, phone string, amount float64, pdfURL string) error
}

// Handler exposes the WhatsApp webhook and the send endpoint.
type Handler struct {
	logger      *slog.Logger
	verifyToken string
	enqueuer    WhatsAppEnqueuer
	validate    *validator.Validate
}

// NewHandler constructs Handler. enqueuer may be nil when no queue is wired;
// sends then fail with a conflict.
func NewHandler(logger *slog.Logger, verifyToken string, enqueuer WhatsAppEnqueuer) *Handler {
	return &Handler{
		logger:      logger,
		verifyToken: verifyToken,
		enqueuer:    enqueuer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/webhooks/whatsapp", func(r chi.Router) {
		r.Get("/", h.verify)
		r.Post("/", h.receive)
	})
	r.Post("/whatsapp/send", h.send)
}

// verify answers Meta's subscription challenge.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	httpx.Problem(w, http.StatusForbidden, "verification failed", "verify token mismatch")
}

// receive acknowledges inbound webhook events. Payloads are logged only.
func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err == nil && len(body) > 0 {
		h.logger.Info("whatsapp webhook event", "payload", json.RawMessage(body))
	}
	w.WriteHeader(http.StatusOK)
}

type sendRequest struct {
	PhoneNumber string  `json:"phoneNumber" validate:"required"`
	Amount      float64 `json:"importe" validate:"gt=0"`
	URL         string  `json:"url" validate:"required,url"`
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if h.enqueuer == nil {
		httpx.Problem(w, http.StatusConflict, "whatsapp not configured", "no message queue is wired")
		return
	}
	if err := h.enqueuer.EnqueueWhatsAppReceipt(r.Context(), req.PhoneNumber, req.Amount, req.URL); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
