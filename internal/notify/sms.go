package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encore/internal/config"
)

const userAgent = "Encore-Go/0.1.0"

// SMSGateway sends one text message.
type SMSGateway interface {
	SendSMS(ctx context.Context, to, body string) error
}

// NewSMSGateway builds a Twilio-style SMS client from configuration. Returns
// nil when the channel is disabled; callers treat a nil gateway as "channel
// not configured".
func NewSMSGateway(cfg *config.Config) SMSGateway {
	if cfg == nil || !cfg.SMS.Enabled {
		return nil
	}

	timeout := time.Duration(cfg.SMS.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &twilioGateway{
		accountSID: cfg.SMS.AccountSID,
		authToken:  cfg.SMS.AuthToken,
		from:       cfg.SMS.FromNumber,
		baseURL:    strings.TrimRight(cfg.SMS.BaseURL, "/"),
		client:     &http.Client{Timeout: timeout},
	}
}

type twilioGateway struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

func (g *twilioGateway) SendSMS(ctx context.Context, to, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("sms recipient is empty")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", g.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", g.baseURL, g.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.SetBasicAuth(g.accountSID, g.authToken)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
