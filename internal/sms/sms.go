// Package sms delivers one-time login codes.
package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bakchoddost/bakchoddost/internal/config"
)

// ErrNotConfigured is returned when no real SMS provider is available.
var ErrNotConfigured = errors.New("sms provider not configured")

// Sender sends a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// New returns the sender selected by cfg.Provider.
func New(cfg config.SMSConfig, production bool, logger *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case "", "log":
		return &LogSender{Logger: logger, Production: production}, nil
	case "twilio":
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
			return nil, fmt.Errorf("twilio requires sms.twilio_account_sid, sms.twilio_auth_token and sms.twilio_from")
		}
		return &TwilioSender{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioFromNumber,
			APIBase:    cfg.TwilioAPIBase,
			Client:     &http.Client{Timeout: 10 * time.Second},
			Logger:     logger,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported sms provider: %s", cfg.Provider)
	}
}

// LogSender writes messages to the log instead of sending them. In
// production it refuses, so codes never end up in production logs.
type LogSender struct {
	Logger     *slog.Logger
	Production bool
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, to, body string) error {
	if s.Production {
		return ErrNotConfigured
	}
	s.Logger.Info("SMS not sent (log provider)", "to", to, "body", body)
	return nil
}
