package service

import (
	"context"
	"fmt"

	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// ConversationService reads the audit log back out, newest first. Used by
// review tooling to see what a sender and the bot actually said.
type ConversationService interface {
	History(ctx context.Context, channel, senderID string, limit int32) ([]model.ConversationEntry, error)
}

type conversationService struct {
	conversations store.ConversationStore
}

func NewConversationService(conversations store.ConversationStore) ConversationService {
	return &conversationService{conversations: conversations}
}

func (s *conversationService) History(ctx context.Context, channel, senderID string, limit int32) ([]model.ConversationEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := s.conversations.ListBySender(ctx, channel, senderID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing conversation history: %w", err)
	}
	return entries, nil
}
