package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// WhatsAppConfig holds the Meta Graph API credentials.
type WhatsAppConfig struct {
	BaseURL     string
	PhoneID     string
	AccessToken string
}

// WhatsAppClient sends receipt notifications through the WhatsApp Business
// API.
type WhatsAppClient struct {
	logger *slog.Logger
	cfg    WhatsAppConfig
	client *http.Client

	// companyAddress fills the receipt template body.
	companyAddress string
}

// NewWhatsAppClient constructs WhatsAppClient.
func NewWhatsAppClient(logger *slog.Logger, cfg WhatsAppConfig, companyAddress string) *WhatsAppClient {
	return &WhatsAppClient{
		logger:         logger,
		cfg:            cfg,
		client:         &http.Client{Timeout: 30 * time.Second},
		companyAddress: companyAddress,
	}
}

func (c *WhatsAppClient) post(ctx context.Context, body map[string]any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: whatsapp request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notify: whatsapp returned %d: %s", resp.StatusCode, data)
	}
	return nil
}

// SendText delivers a plain text message.
func (c *WhatsAppClient) SendText(ctx context.Context, phone, message string) error {
	return c.post(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone,
		"type":              "text",
		"text":              map[string]any{"body": message},
	})
}

// SendReceiptTemplate delivers the approved receipt template with the hosted
// PDF as document header.
func (c *WhatsAppClient) SendReceiptTemplate(ctx context.Context, phone string, amount float64, pdfURL string) error {
	err := c.post(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                phone,
		"type":              "template",
		"template": map[string]any{
			"name":     "recibo_de_venta",
			"language": map[string]any{"code": "es"},
			"components": []map[string]any{
				{
					"type": "header",
					"parameters": []map[string]any{{
						"type": "document",
						"document": map[string]any{
							"filename": "recibo_de_venta.pdf",
							"link":     pdfURL,
						},
					}},
				},
				{
					"type": "body",
					"parameters": []map[string]any{
						{"type": "text", "text": "S/." + strconv.FormatFloat(amount, 'f', 2, 64)},
						{"type": "text", "text": c.companyAddress},
					},
				},
			},
		},
	})
	if err != nil {
		return err
	}
	c.logger.Info("whatsapp receipt sent", "phone", phone)
	return nil
}
