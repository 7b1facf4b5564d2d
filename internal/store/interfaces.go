package store

import (
	"context"
	"errors"

	"samvaad.app/intake/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// DirectoryStore resolves senders to registered users. The intake core reads
// it once per message and never writes roles.
type DirectoryStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByChannelIdentity(ctx context.Context, channel, externalID string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// StateStore persists per-conversation workflow state keyed by user and scope.
// Get returns a default-initialized state when no row exists; Put replaces the
// full value for that exact key. The store performs no merging itself.
type StateStore interface {
	GetFieldWorker(ctx context.Context, userID int64, scopeDate string) (*model.FieldWorkerState, error)
	PutFieldWorker(ctx context.Context, state *model.FieldWorkerState) error
	GetContractor(ctx context.Context, userID int64) (*model.ContractorState, error)
	PutContractor(ctx context.Context, state *model.ContractorState) error
}

// ReportStore persists finalized daily reports. Upsert is keyed on
// (user_id, report_date) so re-finalization never duplicates.
type ReportStore interface {
	Upsert(ctx context.Context, rec *model.DailyReportRecord) error
	GetByUserAndDate(ctx context.Context, userID int64, reportDate string) (*model.DailyReportRecord, error)
}

// ProfileStore persists finalized contractor profiles. Upsert is keyed on
// user_id.
type ProfileStore interface {
	Upsert(ctx context.Context, rec *model.ContractorProfileRecord) error
	GetByUser(ctx context.Context, userID int64) (*model.ContractorProfileRecord, error)
}

// ConversationStore is the append-only audit log of inbound and outbound
// lines. Writes are best-effort from the dispatcher's point of view.
type ConversationStore interface {
	Append(ctx context.Context, entry *model.ConversationEntry) error
	ListBySender(ctx context.Context, channel, senderID string, limit int32) ([]model.ConversationEntry, error)
}

// InboundMessageStore is the dedupe ledger for ingested envelopes.
type InboundMessageStore interface {
	CreateOrGet(ctx context.Context, msg *model.InboundMessage) (*model.InboundMessage, bool, error)
	GetByID(ctx context.Context, id int64) (*model.InboundMessage, error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errMsg *string) error
}
