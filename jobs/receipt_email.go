package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/comercia-pos/comercia-pos/internal/notify"
)

// ReceiptSender delivers one assembled email.
type ReceiptSender interface {
	Send(ctx context.Context, e notify.Email) error
}

// ReceiptEmailJob delivers queued receipt emails.
type ReceiptEmailJob struct {
	Mailer ReceiptSender
	Logger *slog.Logger
}

// NewReceiptEmailJob wires dependencies for the handler.
func NewReceiptEmailJob(mailer ReceiptSender, logger *slog.Logger) *ReceiptEmailJob {
	return &ReceiptEmailJob{Mailer: mailer, Logger: logger}
}

// Handle processes TaskTypeReceiptEmail tasks.
func (j *ReceiptEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Mailer == nil {
		return errors.New("receipt email: handler not configured")
	}
	var payload ReceiptEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	err := j.Mailer.Send(ctx, notify.Email{
		To:            payload.To,
		Subject:       "Su comprobante electrónico",
		Body:          "Adjuntamos su comprobante electrónico. Gracias por su compra.",
		AttachmentURL: payload.PDFURL,
	})
	if err != nil {
		j.Logger.Error("receipt email delivery failed", "to", payload.To, "error", err)
		return err
	}
	return nil
}
