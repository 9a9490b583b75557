package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"encore/internal/config"
)

// EmailGateway sends one transactional email.
type EmailGateway interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// NewEmailGateway builds a Resend-style email client from configuration.
// Returns nil when the channel is disabled.
func NewEmailGateway(cfg *config.Config) EmailGateway {
	if cfg == nil || !cfg.Email.Enabled {
		return nil
	}

	timeout := time.Duration(cfg.Email.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &resendGateway{
		apiKey:  cfg.Email.APIKey,
		from:    cfg.Email.FromAddress,
		baseURL: strings.TrimRight(cfg.Email.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type resendGateway struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

type emailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (g *resendGateway) SendEmail(ctx context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("email recipient is empty")
	}

	payload, err := json.Marshal(emailPayload{
		From:    g.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("email gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
