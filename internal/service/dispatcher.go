package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"samvaad.app/intake/common/id"
	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/store"
)

// ErrRecordNotFound is returned by record reads when nothing has been
// finalized yet for the requested key.
var ErrRecordNotFound = errors.New("record not found")

const replyRegister = "You're not registered with us yet. Please contact your department office to get onboarded before using this number."

// Dispatcher resolves the sender and routes the envelope to the workflow for
// their role. It also writes the conversation audit log around the exchange.
type Dispatcher interface {
	Dispatch(ctx context.Context, env model.Envelope) (*model.Reply, error)
}

type dispatcher struct {
	directory     store.DirectoryStore
	conversations store.ConversationStore
	fieldWorkers  FieldWorkerService
	contractors   ContractorService
	logger        *slog.Logger
}

func NewDispatcher(
	directory store.DirectoryStore,
	conversations store.ConversationStore,
	fieldWorkers FieldWorkerService,
	contractors ContractorService,
	logger *slog.Logger,
) Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &dispatcher{
		directory:     directory,
		conversations: conversations,
		fieldWorkers:  fieldWorkers,
		contractors:   contractors,
		logger:        logger,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, env model.Envelope) (*model.Reply, error) {
	user, err := d.directory.GetByChannelIdentity(ctx, env.Channel, env.SenderID)
	if err != nil && err != store.ErrNotFound {
		return nil, fmt.Errorf("resolving sender: %w", err)
	}

	var userID *int64
	if user != nil {
		userID = &user.ID
	}
	d.logEntry(ctx, env, userID, model.DirectionInbound, env.Text, inboundMediaURL(env))

	if user == nil || user.Role == model.RoleUnknown {
		reply := &model.Reply{Text: replyRegister}
		d.logEntry(ctx, env, userID, model.DirectionOutbound, reply.Text, nil)
		return reply, nil
	}

	var reply *model.Reply
	switch user.Role {
	case model.RoleFieldWorker:
		reply, err = d.fieldWorkers.HandleMessage(ctx, user, env)
	case model.RoleContractor:
		reply, err = d.contractors.HandleMessage(ctx, user, env)
	default:
		reply = &model.Reply{Text: replyRegister}
	}
	if err != nil {
		return nil, err
	}

	d.logEntry(ctx, env, userID, model.DirectionOutbound, reply.Text, nil)
	return reply, nil
}

// logEntry is best-effort. The reply must go out even if the audit write
// fails.
func (d *dispatcher) logEntry(ctx context.Context, env model.Envelope, userID *int64, direction model.Direction, text string, mediaURL *string) {
	entry := &model.ConversationEntry{
		ID:        id.New(),
		UserID:    userID,
		Channel:   env.Channel,
		SenderID:  env.SenderID,
		Direction: direction,
		Text:      text,
		MediaURL:  mediaURL,
	}
	if err := d.conversations.Append(ctx, entry); err != nil {
		d.logger.WarnContext(ctx, "conversation log write failed", "channel", env.Channel, "sender_id", env.SenderID, "direction", string(direction), "error", err)
	}
}

func inboundMediaURL(env model.Envelope) *string {
	if env.Media != nil && env.Media.URL != "" {
		return &env.Media.URL
	}
	return nil
}
