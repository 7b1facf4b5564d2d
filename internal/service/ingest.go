package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"samvaad.app/intake/common/id"
	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/queue"
	"samvaad.app/intake/internal/store"
)

// ErrInvalidEnvelope marks envelopes the caller should reject outright
// instead of retrying.
var ErrInvalidEnvelope = errors.New("invalid envelope")

type IngestResult struct {
	MessageID  int64
	Enqueued   bool
	Duplicated bool
}

// MessageIngestService records an inbound envelope exactly once and hands it
// to the worker stream. Channel retries of the same external message id are
// absorbed here.
type MessageIngestService interface {
	Ingest(ctx context.Context, env model.Envelope, traceID *string) (*IngestResult, error)
}

type messageIngestService struct {
	inbound store.InboundMessageStore
	queue   queue.Producer
	logger  *slog.Logger
}

func NewMessageIngestService(inbound store.InboundMessageStore, producer queue.Producer, logger *slog.Logger) MessageIngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &messageIngestService{
		inbound: inbound,
		queue:   producer,
		logger:  logger,
	}
}

func (s *messageIngestService) Ingest(ctx context.Context, env model.Envelope, traceID *string) (*IngestResult, error) {
	if env.Channel == "" || env.SenderID == "" || env.ExternalMessageID == "" {
		return nil, fmt.Errorf("%w: channel, sender_id, and external_message_id are required", ErrInvalidEnvelope)
	}
	if env.Text == "" && env.Media == nil && env.Location == nil {
		return nil, fmt.Errorf("%w: message has no content", ErrInvalidEnvelope)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling envelope: %w", err)
	}

	msg := &model.InboundMessage{
		ID:                id.New(),
		Channel:           env.Channel,
		SenderExternalID:  env.SenderID,
		ExternalMessageID: env.ExternalMessageID,
		Envelope:          raw,
	}

	stored, created, err := s.inbound.CreateOrGet(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("recording inbound message: %w", err)
	}

	if !created {
		s.logger.InfoContext(ctx, "duplicate message deduped", "message_id", stored.ID, "channel", env.Channel, "external_message_id", env.ExternalMessageID)
		return &IngestResult{MessageID: stored.ID, Duplicated: true}, nil
	}

	if err := s.queue.Enqueue(ctx, queue.MessageTask{
		MessageID: stored.ID,
		Channel:   env.Channel,
		SenderID:  env.SenderID,
		TraceID:   traceID,
		Attempt:   1,
	}); err != nil {
		return nil, fmt.Errorf("enqueueing message: %w", err)
	}

	return &IngestResult{MessageID: stored.ID, Enqueued: true}, nil
}
