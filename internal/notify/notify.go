// Package notify delivers SMS messages to account holders.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Message is a single SMS.
type Message struct {
	To   string
	Body string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrRejected marks a message the gateway refused permanently; retrying will not help.
var ErrRejected = errors.New("notify: message rejected")

// GatewayConfig configures an HTTP SMS gateway.
type GatewayConfig struct {
	URL      string
	Token    string
	SenderID string
	Timeout  time.Duration
}

// HTTPGateway posts messages as JSON to an SMS provider.
type HTTPGateway struct {
	cfg    GatewayConfig
	client *http.Client
}

// NewHTTPGateway builds a gateway sender.
func NewHTTPGateway(cfg GatewayConfig) (*HTTPGateway, error) {
	if cfg.URL == "" {
		return nil, errors.New("notify: gateway url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &HTTPGateway{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

type gatewayRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
}

// Send delivers msg. 4xx responses wrap ErrRejected, other failures are transient.
func (g *HTTPGateway) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(gatewayRequest{To: msg.To, Message: msg.Body, Sender: g.cfg.SenderID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: gateway: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return fmt.Errorf("%w: gateway status %d", ErrRejected, resp.StatusCode)
	default:
		return fmt.Errorf("notify: gateway status %d", resp.StatusCode)
	}
}

// LogSender writes messages to the log instead of delivering them. Development only.
type LogSender struct {
	Logger *slog.Logger
}

// Send logs msg with the recipient masked.
func (s LogSender) Send(ctx context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "sms (not delivered)", slog.String("to", Mask(msg.To)), slog.String("body", msg.Body))
	return nil
}

// Mask hides all but the last four digits of a phone number.
func Mask(number string) string {
	if len(number) <= 4 {
		return "****"
	}
	return "******" + number[len(number)-4:]
}
