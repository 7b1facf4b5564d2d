package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"samvaad.app/intake/common/logger"
	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/queue"
	"samvaad.app/intake/internal/service"
	"samvaad.app/intake/internal/store"
)

type Config struct {
	MaxAttempts int
}

// Worker drains the inbound-message stream: resolve the envelope, take the
// per-sender lock, run the dispatcher, deliver the reply, mark processed.
type Worker struct {
	consumer   *queue.RedisConsumer
	inbound    store.InboundMessageStore
	lock       queue.UserLock
	dispatcher service.Dispatcher
	sender     ReplySender
	cfg        Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(
	consumer *queue.RedisConsumer,
	inbound store.InboundMessageStore,
	lock queue.UserLock,
	dispatcher service.Dispatcher,
	sender ReplySender,
	cfg Config,
) *Worker {
	return &Worker{
		consumer:   consumer,
		inbound:    inbound,
		lock:       lock,
		dispatcher: dispatcher,
		sender:     sender,
		cfg:        cfg,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"stream_id", msg.ID,
				"message_id", msg.MessageID)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"stream_id", msg.ID,
				"message_id", msg.MessageID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID: logger.Ptr(msg.MessageID),
		Channel:   logger.Ptr(msg.Channel),
		Component: "intake.worker",
	})

	slog.InfoContext(ctx, "processing message",
		"stream_id", msg.ID,
		"message_id", msg.MessageID,
		"attempt", msg.Attempt)

	inbound, err := w.inbound.GetByID(ctx, msg.MessageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "inbound message row missing, dropping", "message_id", msg.MessageID)
			return w.consumer.Ack(ctx, msg)
		}
		return fmt.Errorf("loading inbound message: %w", err)
	}

	// Already handled by an earlier delivery of the same stream entry.
	if inbound.ProcessedAt != nil {
		slog.InfoContext(ctx, "message already processed, skipping", "message_id", msg.MessageID)
		return w.consumer.Ack(ctx, msg)
	}

	release, err := w.lock.Acquire(ctx, msg.Channel, msg.SenderID)
	if err != nil {
		if errors.Is(err, queue.ErrLockHeld) {
			// Another worker holds this sender. Put the message back without
			// consuming a retry attempt.
			slog.InfoContext(ctx, "sender busy, requeueing", "message_id", msg.MessageID)
			return w.consumer.RequeueWithAttempt(ctx, msg, msg.Attempt, "sender busy")
		}
		return fmt.Errorf("acquiring user lock: %w", err)
	}
	defer release()

	var env model.Envelope
	if err := json.Unmarshal(inbound.Envelope, &env); err != nil {
		// A malformed envelope never gets better on retry.
		slog.ErrorContext(ctx, "unparseable envelope, dropping", "message_id", msg.MessageID, "error", err)
		w.markFailed(ctx, msg.MessageID, fmt.Sprintf("unparseable envelope: %v", err))
		return w.consumer.Ack(ctx, msg)
	}

	reply, err := w.dispatcher.Dispatch(ctx, env)
	if err != nil {
		w.markFailed(ctx, msg.MessageID, err.Error())
		return fmt.Errorf("dispatching message: %w", err)
	}

	if err := w.sender.Send(ctx, env, *reply); err != nil {
		w.markFailed(ctx, msg.MessageID, err.Error())
		return fmt.Errorf("sending reply: %w", err)
	}

	if err := w.inbound.MarkProcessed(ctx, msg.MessageID); err != nil {
		return fmt.Errorf("marking message processed: %w", err)
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The processed marker makes a redelivery a no-op, so just log it.
		slog.WarnContext(ctx, "failed to ACK message", "error", err, "stream_id", msg.ID)
	}

	return nil
}

func (w *Worker) markFailed(ctx context.Context, messageID int64, errMsg string) {
	if err := w.inbound.MarkFailed(ctx, messageID, &errMsg); err != nil {
		slog.WarnContext(ctx, "failed to record processing error", "message_id", messageID, "error", err)
	}
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"stream_id", msg.ID,
			"message_id", msg.MessageID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"stream_id", msg.ID,
		"message_id", msg.MessageID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
