package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// TwilioSender sends messages through the Twilio Messages REST API.
type TwilioSender struct {
	AccountSID string
	AuthToken  string
	From       string
	APIBase    string // defaults to https://api.twilio.com
	Client     *http.Client
	Logger     *slog.Logger
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send implements Sender.
func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	base := strings.TrimRight(s.APIBase, "/")
	if base == "" {
		base = "https://api.twilio.com"
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", base, url.PathEscape(s.AccountSID))

	form := url.Values{"To": {to}, "From": {s.From}, "Body": {body}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(s.AccountSID, s.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var te twilioError
		_ = json.NewDecoder(resp.Body).Decode(&te)
		return fmt.Errorf("twilio returned %d: code=%d %s", resp.StatusCode, te.Code, te.Message)
	}

	var msg twilioMessage
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return fmt.Errorf("decode twilio response: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("SMS sent", "sid", msg.SID, "status", msg.Status)
	}
	return nil
}
