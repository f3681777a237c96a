package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SunatClient talks to the e-invoicing provider.
type SunatClient interface {
	SuggestedNumber(ctx context.Context, docType DocType) (string, error)
	SendBill(ctx context.Context, payload map[string]any) (SendResult, error)
}

// SendResult is the provider's answer to a submitted document.
type SendResult struct {
	DocumentID string
	Accepted   bool
}

// Company identifies the issuing business on every receipt.
type Company struct {
	RUC              string
	Name             string
	RegistrationName string
	Address          string
}

// HTTPSunatClient implements SunatClient against the APISUNAT REST API.
type HTTPSunatClient struct {
	baseURL      string
	personaID    string
	personaToken string
	client       *http.Client
}

// NewHTTPSunatClient constructs HTTPSunatClient.
func NewHTTPSunatClient(baseURL, personaID, personaToken string, timeout time.Duration) *HTTPSunatClient {
	return &HTTPSunatClient{
		baseURL:      baseURL,
		personaID:    personaID,
		personaToken: personaToken,
		client:       &http.Client{Timeout: timeout},
	}
}

func (c *HTTPSunatClient) post(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("billing: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("billing: call %s: %w", path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("billing: read %s response: %w", path, err)
	}
	return resp, data, nil
}

// SuggestedNumber asks the provider for the next correlative of the series.
func (c *HTTPSunatClient) SuggestedNumber(ctx context.Context, docType DocType) (string, error) {
	resp, data, err := c.post(ctx, "/personas/lastDocument", map[string]any{
		"personaId":    c.personaID,
		"personaToken": c.personaToken,
		"type":         docType.TypeCode(),
		"serie":        docType.Serie(),
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("billing: lastDocument returned %d: %s", resp.StatusCode, data)
	}
	var out struct {
		SuggestedNumber string `json:"suggestedNumber"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("billing: decode lastDocument response: %w", err)
	}
	if out.SuggestedNumber == "" {
		return "", fmt.Errorf("billing: lastDocument returned no suggested number")
	}
	return out.SuggestedNumber, nil
}

// SendBill submits the assembled document.
func (c *HTTPSunatClient) SendBill(ctx context.Context, payload map[string]any) (SendResult, error) {
	resp, data, err := c.post(ctx, "/personas/v1/sendBill", payload)
	if err != nil {
		return SendResult{}, err
	}
	var out struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return SendResult{}, fmt.Errorf("billing: decode sendBill response: %w", err)
	}
	return SendResult{DocumentID: out.DocumentID, Accepted: resp.StatusCode == http.StatusOK}, nil
}
