package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reservly/booking-platform/pkg/logging"
)

// WhatsAppSender sends WhatsApp messages to operators.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, body string) error
}

// MetaWhatsAppConfig holds configuration for the Meta Graph API.
type MetaWhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string // e.g. https://graph.facebook.com/v19.0
}

// MetaWhatsAppSender sends messages through the WhatsApp Business Cloud API.
type MetaWhatsAppSender struct {
	cfg        MetaWhatsAppConfig
	httpClient *http.Client
	logger     *logging.Logger
}

// NewMetaWhatsAppSender creates a Meta Graph API sender. Returns nil when
// the access token is not configured.
func NewMetaWhatsAppSender(cfg MetaWhatsAppConfig, logger *logging.Logger) *MetaWhatsAppSender {
	if cfg.AccessToken == "" || cfg.PhoneNumberID == "" {
		return nil
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com/v19.0"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MetaWhatsAppSender{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type metaTextMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             metaText `json:"text"`
}

type metaText struct {
	Body string `json:"body"`
}

// SendWhatsApp sends a plain text message.
func (s *MetaWhatsAppSender) SendWhatsApp(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(metaTextMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             metaText{Body: body},
	})
	if err != nil {
		return fmt.Errorf("notify: marshal whatsapp message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.cfg.BaseURL, s.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("whatsapp send failed", "error", err, "to", to)
		return fmt.Errorf("notify: whatsapp send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Error("whatsapp returned error status", "status", resp.StatusCode, "body", string(respBody), "to", to)
		return fmt.Errorf("notify: whatsapp returned status %d", resp.StatusCode)
	}

	s.logger.Info("whatsapp message sent", "to", to, "status", resp.StatusCode)
	return nil
}

// StubWhatsAppSender is a no-op sender for testing.
type StubWhatsAppSender struct {
	logger *logging.Logger
}

// NewStubWhatsAppSender creates a stub WhatsApp sender.
func NewStubWhatsAppSender(logger *logging.Logger) *StubWhatsAppSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubWhatsAppSender{logger: logger}
}

// SendWhatsApp logs but doesn't send.
func (s *StubWhatsAppSender) SendWhatsApp(ctx context.Context, to, body string) error {
	s.logger.Info("stub whatsapp sender: would send", "to", to, "body_preview", truncate(body, 50))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Ensure interface compliance
var _ WhatsAppSender = (*MetaWhatsAppSender)(nil)
var _ WhatsAppSender = (*StubWhatsAppSender)(nil)
