package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/duetap/duetap-backend-go/internal/config"
	"github.com/duetap/duetap-backend-go/internal/domain/notification"
)

type sender struct {
	cfg        config.WhatsAppConfig
	httpClient *http.Client
}

// NewSender creates a notification.Sender that posts messages to the
// configured WhatsApp Business API provider
func NewSender(cfg config.WhatsAppConfig) notification.Sender {
	return &sender{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
	Link string `json:"link,omitempty"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

func (s *sender) Send(ctx context.Context, msg notification.Message) (string, error) {
	// Skip sending if the provider is not configured
	if s.cfg.APIURL == "" {
		slog.Warn("WhatsApp provider not configured, skipping send", "to", msg.Recipient)
		return "", nil
	}

	body := msg.Body
	if msg.PaymentLink != "" {
		body = body + "\n\nPay here: " + msg.PaymentLink
	}

	payload, err := json.Marshal(sendRequest{
		To:   msg.Recipient,
		Body: body,
		Link: msg.PaymentLink,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read whatsapp response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("whatsapp API error [%d]: %s", resp.StatusCode, string(raw))
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Provider responded 2xx with a body we cannot parse; the message
		// went out, so treat it as sent without a message ID.
		slog.Warn("unparseable WhatsApp response", "to", msg.Recipient, "error", err)
		return "", nil
	}

	slog.Info("WhatsApp message sent", "to", msg.Recipient, "message_id", parsed.MessageID)
	return parsed.MessageID, nil
}
