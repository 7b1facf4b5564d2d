package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"samvaad.app/intake/core/db"
	"samvaad.app/intake/internal/model"
)

type inboundMessageStore struct {
	q db.Querier
}

func newInboundMessageStore(q db.Querier) InboundMessageStore {
	return &inboundMessageStore{q: q}
}

const inboundColumns = `id, channel, sender_external_id, external_message_id, envelope, processed_at, processing_error, created_at`

// CreateOrGet inserts the message, or returns the existing row when the
// (channel, external_message_id) pair was already ingested. The second return
// value reports whether a new row was created.
func (s *inboundMessageStore) CreateOrGet(ctx context.Context, msg *model.InboundMessage) (*model.InboundMessage, bool, error) {
	row := s.q.QueryRow(ctx,
		`INSERT INTO inbound_messages (id, channel, sender_external_id, external_message_id, envelope)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (channel, external_message_id) DO NOTHING
		 RETURNING `+inboundColumns,
		msg.ID, msg.Channel, msg.SenderExternalID, msg.ExternalMessageID, msg.Envelope)

	created, err := scanInbound(row)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	existing, err := s.getByExternalID(ctx, msg.Channel, msg.ExternalMessageID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *inboundMessageStore) GetByID(ctx context.Context, id int64) (*model.InboundMessage, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+inboundColumns+` FROM inbound_messages WHERE id = $1`, id)
	return scanInbound(row)
}

func (s *inboundMessageStore) getByExternalID(ctx context.Context, channel, externalMessageID string) (*model.InboundMessage, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+inboundColumns+` FROM inbound_messages WHERE channel = $1 AND external_message_id = $2`,
		channel, externalMessageID)
	return scanInbound(row)
}

func (s *inboundMessageStore) MarkProcessed(ctx context.Context, id int64) error {
	_, err := s.q.Exec(ctx,
		`UPDATE inbound_messages SET processed_at = now(), processing_error = NULL WHERE id = $1`, id)
	return err
}

func (s *inboundMessageStore) MarkFailed(ctx context.Context, id int64, errMsg *string) error {
	_, err := s.q.Exec(ctx,
		`UPDATE inbound_messages SET processing_error = $2 WHERE id = $1`, id, errMsg)
	return err
}

func scanInbound(row pgx.Row) (*model.InboundMessage, error) {
	var m model.InboundMessage
	if err := row.Scan(&m.ID, &m.Channel, &m.SenderExternalID, &m.ExternalMessageID,
		&m.Envelope, &m.ProcessedAt, &m.ProcessingError, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
