package store

import (
	"context"

	"samvaad.app/intake/core/db"
	"samvaad.app/intake/internal/model"
)

type conversationStore struct {
	q db.Querier
}

func newConversationStore(q db.Querier) ConversationStore {
	return &conversationStore{q: q}
}

func (s *conversationStore) Append(ctx context.Context, entry *model.ConversationEntry) error {
	return s.q.QueryRow(ctx,
		`INSERT INTO conversation_log (id, user_id, channel, sender_id, direction, text, media_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		entry.ID, entry.UserID, entry.Channel, entry.SenderID, string(entry.Direction),
		entry.Text, entry.MediaURL).Scan(&entry.CreatedAt)
}

func (s *conversationStore) ListBySender(ctx context.Context, channel, senderID string, limit int32) ([]model.ConversationEntry, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, user_id, channel, sender_id, direction, text, media_url, created_at
		 FROM conversation_log
		 WHERE channel = $1 AND sender_id = $2
		 ORDER BY id DESC
		 LIMIT $3`,
		channel, senderID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ConversationEntry
	for rows.Next() {
		var (
			e         model.ConversationEntry
			direction string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Channel, &e.SenderID, &direction, &e.Text, &e.MediaURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Direction = model.Direction(direction)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
