package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeReceiptEmail delivers a receipt email with its PDF.
	TaskTypeReceiptEmail = "mail:receipt"
	// TaskTypeWhatsAppReceipt delivers a receipt over WhatsApp.
	TaskTypeWhatsAppReceipt = "whatsapp:receipt"
	// TaskTypeIdempotencyCleanup prunes expired idempotency keys.
	TaskTypeIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// ReceiptEmailPayload describes a queued receipt email.
type ReceiptEmailPayload struct {
	To     string `json:"to"`
	PDFURL string `json:"pdfUrl"`
}

// NewReceiptEmailTask constructs the Asynq task.
func NewReceiptEmailTask(payload ReceiptEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReceiptEmail, data), nil
}

// WhatsAppReceiptPayload describes a queued WhatsApp receipt.
type WhatsAppReceiptPayload struct {
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
	PDFURL string  `json:"pdfUrl"`
}

// NewWhatsAppReceiptTask constructs the Asynq task.
func NewWhatsAppReceiptTask(payload WhatsAppReceiptPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeWhatsAppReceipt, data), nil
}

// NewIdempotencyCleanupTask constructs the maintenance task. It carries no
// payload.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeIdempotencyCleanup, nil)
}
