package model

import (
	"encoding/json"
	"time"
)

// InboundMessage is the dedupe ledger entry for one ingested envelope.
// (channel, external_message_id) is unique, so channel retries never enqueue
// the same event twice.
type InboundMessage struct {
	ID                int64           `json:"id"`
	Channel           string          `json:"channel"`
	SenderExternalID  string          `json:"sender_external_id"`
	ExternalMessageID string          `json:"external_message_id"`
	Envelope          json.RawMessage `json:"envelope"`
	ProcessedAt       *time.Time      `json:"processed_at,omitempty"`
	ProcessingError   *string         `json:"processing_error,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Direction of a conversation log line.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// ConversationEntry is one line of the append-only audit log. It is written
// best-effort: a failed write never blocks the reply.
type ConversationEntry struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"` // nil for unregistered senders
	Channel   string    `json:"channel"`
	SenderID  string    `json:"sender_id"`
	Direction Direction `json:"direction"`
	Text      string    `json:"text"`
	MediaURL  *string   `json:"media_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
