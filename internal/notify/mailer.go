package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"
)

// Email is one outbound message, optionally carrying a hosted PDF.
type Email struct {
	To            string
	Subject       string
	Body          string
	AttachmentURL string
}

// SMTPConfig describes the outbound relay.
type SMTPConfig struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

// Mailer delivers receipt emails over SMTP. PDF attachments are fetched from
// the e-invoicing provider at send time.
type Mailer struct {
	logger *slog.Logger
	cfg    SMTPConfig
	http   *http.Client

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer constructs Mailer.
func NewMailer(logger *slog.Logger, cfg SMTPConfig) *Mailer {
	return &Mailer{
		logger: logger,
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		send:   smtp.SendMail,
	}
}

// Send fetches the attachment, assembles the MIME message and relays it.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	var attachment []byte
	if e.AttachmentURL != "" {
		var err error
		attachment, err = m.fetch(ctx, e.AttachmentURL)
		if err != nil {
			return err
		}
	}

	msg, err := buildMessage(m.cfg.From, e, attachment)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{e.To}, msg); err != nil {
		return fmt.Errorf("notify: send mail to %s: %w", e.To, err)
	}
	m.logger.Info("receipt email sent", "to", e.To, "subject", e.Subject)
	return nil
}

func (m *Mailer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notify: fetch attachment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notify: fetch attachment: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

func buildMessage(from string, e Email, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", e.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", e.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	text, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(e.Body)); err != nil {
		return nil, err
	}

	if attachment != nil {
		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/pdf"},
			"Content-Disposition":       {`attachment; filename="Factura-Boleta.pdf"`},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		enc := base64.NewEncoder(base64.StdEncoding, part)
		if _, err := enc.Write(attachment); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
