package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages. Implementations must not block submission
// workflows on delivery problems; callers treat errors as non-fatal.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds the delivery API settings. An empty APIKey switches the
// client into log-only mode, which is how local and test deployments run.
type Config struct {
	APIURL    string
	APIKey    string
	FromEmail string
	FromName  string
}

// Client sends mail through a JSON delivery API.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

func (c *Client) Send(ctx context.Context, msg Message) error {
	if c.cfg.APIKey == "" {
		log.Info().
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Msg("mail api key not configured, logging instead of sending")
		return nil
	}

	body, err := json.Marshal(sendRequest{
		From:    fmt.Sprintf("%s <%s>", c.cfg.FromName, c.cfg.FromEmail),
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Token", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail api responded %d: %s", resp.StatusCode, detail)
	}

	log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail delivered")
	return nil
}

// Memory collects sent messages for tests.
type Memory struct {
	Messages []Message
	Err      error
}

func (m *Memory) Send(_ context.Context, msg Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msg)
	return nil
}
