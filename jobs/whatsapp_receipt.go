package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
)

// TemplateSender delivers the receipt template to one phone number.
type TemplateSender interface {
	SendReceiptTemplate(ctx context.Context, phone string, amount float64, pdfURL string) error
}

// WhatsAppReceiptJob delivers queued WhatsApp receipts.
type WhatsAppReceiptJob struct {
	Client TemplateSender
	Logger *slog.Logger
}

// NewWhatsAppReceiptJob wires dependencies for the handler.
func NewWhatsAppReceiptJob(client TemplateSender, logger *slog.Logger) *WhatsAppReceiptJob {
	return &WhatsAppReceiptJob{Client: client, Logger: logger}
}

// Handle processes TaskTypeWhatsAppReceipt tasks.
func (j *WhatsAppReceiptJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Client == nil {
		return errors.New("whatsapp receipt: handler not configured")
	}
	var payload WhatsAppReceiptPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := j.Client.SendReceiptTemplate(ctx, payload.Phone, payload.Amount, payload.PDFURL); err != nil {
		j.Logger.Error("whatsapp receipt delivery failed", "phone", payload.Phone, "error", err)
		return err
	}
	return nil
}
