package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"samvaad.app/intake/core/config"
	"samvaad.app/intake/internal/model"
)

// ReplySender delivers a normalized reply back to the channel adapter, which
// owns the actual wire protocol (WhatsApp, Telegram, ...).
type ReplySender interface {
	Send(ctx context.Context, env model.Envelope, reply model.Reply) error
}

type callbackPayload struct {
	Channel     string             `json:"channel"`
	RecipientID string             `json:"recipient_id"`
	Text        string             `json:"text"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
}

type httpReplySender struct {
	client      *http.Client
	callbackURL string
}

func NewHTTPReplySender(cfg config.ChannelConfig) ReplySender {
	return &httpReplySender{
		client:      &http.Client{Timeout: cfg.Timeout},
		callbackURL: cfg.CallbackURL,
	}
}

func (s *httpReplySender) Send(ctx context.Context, env model.Envelope, reply model.Reply) error {
	body, err := json.Marshal(callbackPayload{
		Channel:     env.Channel,
		RecipientID: env.SenderID,
		Text:        reply.Text,
		Attachments: reply.Attachments,
	})
	if err != nil {
		return fmt.Errorf("marshaling reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting reply: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}
