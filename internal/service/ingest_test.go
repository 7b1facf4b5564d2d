package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"samvaad.app/intake/common/id"
	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/queue"
	"samvaad.app/intake/internal/service"
)

var _ = Describe("MessageIngestService", func() {
	var (
		svc      service.MessageIngestService
		inbound  *mockInboundMessageStore
		producer *mockProducer
		ctx      context.Context
	)

	env := model.Envelope{
		Channel:           "whatsapp",
		SenderID:          "+919800000001",
		Text:              "laid pipes today",
		ExternalMessageID: "wamid.100",
	}

	BeforeEach(func() {
		ctx = context.Background()
		inbound = &mockInboundMessageStore{}
		producer = &mockProducer{}

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())

		svc = service.NewMessageIngestService(inbound, producer, nil)
	})

	It("stores the envelope and enqueues a task pointing at it", func() {
		result, err := svc.Ingest(ctx, env, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Enqueued).To(BeTrue())
		Expect(result.Duplicated).To(BeFalse())

		Expect(producer.enqueued).To(HaveLen(1))
		Expect(producer.enqueued[0].MessageID).To(Equal(result.MessageID))
		Expect(producer.enqueued[0].Channel).To(Equal("whatsapp"))
		Expect(producer.enqueued[0].Attempt).To(Equal(1))
	})

	It("dedupes a channel retry without enqueueing again", func() {
		inbound.createOrGetFn = func(ctx context.Context, msg *model.InboundMessage) (*model.InboundMessage, bool, error) {
			return &model.InboundMessage{ID: 555, Channel: msg.Channel, ExternalMessageID: msg.ExternalMessageID}, false, nil
		}

		result, err := svc.Ingest(ctx, env, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Duplicated).To(BeTrue())
		Expect(result.Enqueued).To(BeFalse())
		Expect(result.MessageID).To(Equal(int64(555)))
		Expect(producer.enqueued).To(BeEmpty())
	})

	It("rejects envelopes without identity fields", func() {
		_, err := svc.Ingest(ctx, model.Envelope{Text: "hi"}, nil)

		Expect(err).To(MatchError(service.ErrInvalidEnvelope))
	})

	It("rejects envelopes with no content at all", func() {
		_, err := svc.Ingest(ctx, model.Envelope{
			Channel:           "whatsapp",
			SenderID:          "+919800000001",
			ExternalMessageID: "wamid.101",
		}, nil)

		Expect(err).To(MatchError(service.ErrInvalidEnvelope))
	})

	It("forwards the trace id to the queue", func() {
		trace := "abc123"
		_, err := svc.Ingest(ctx, env, &trace)

		Expect(err).NotTo(HaveOccurred())
		Expect(producer.enqueued[0].TraceID).To(Equal(&trace))
	})

	It("surfaces enqueue failures", func() {
		producer.enqueueFn = func(ctx context.Context, task queue.MessageTask) error {
			return errors.New("redis down")
		}

		_, err := svc.Ingest(ctx, env, nil)

		Expect(err).To(HaveOccurred())
	})
})
