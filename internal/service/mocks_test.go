package service_test

import (
	"context"

	"samvaad.app/intake/internal/adapter"
	"samvaad.app/intake/internal/model"
	"samvaad.app/intake/internal/queue"
	"samvaad.app/intake/internal/store"
)

type mockStateStore struct {
	getFieldWorkerFn func(ctx context.Context, userID int64, scopeDate string) (*model.FieldWorkerState, error)
	putFieldWorkerFn func(ctx context.Context, state *model.FieldWorkerState) error
	getContractorFn  func(ctx context.Context, userID int64) (*model.ContractorState, error)
	putContractorFn  func(ctx context.Context, state *model.ContractorState) error

	savedFieldWorker []*model.FieldWorkerState
	savedContractor  []*model.ContractorState
}

func (m *mockStateStore) GetFieldWorker(ctx context.Context, userID int64, scopeDate string) (*model.FieldWorkerState, error) {
	if m.getFieldWorkerFn != nil {
		return m.getFieldWorkerFn(ctx, userID, scopeDate)
	}
	return model.NewFieldWorkerState(userID, scopeDate), nil
}

func (m *mockStateStore) PutFieldWorker(ctx context.Context, state *model.FieldWorkerState) error {
	copied := *state
	m.savedFieldWorker = append(m.savedFieldWorker, &copied)
	if m.putFieldWorkerFn != nil {
		return m.putFieldWorkerFn(ctx, state)
	}
	return nil
}

func (m *mockStateStore) GetContractor(ctx context.Context, userID int64) (*model.ContractorState, error) {
	if m.getContractorFn != nil {
		return m.getContractorFn(ctx, userID)
	}
	return model.NewContractorState(userID), nil
}

func (m *mockStateStore) PutContractor(ctx context.Context, state *model.ContractorState) error {
	copied := *state
	m.savedContractor = append(m.savedContractor, &copied)
	if m.putContractorFn != nil {
		return m.putContractorFn(ctx, state)
	}
	return nil
}

func (m *mockStateStore) lastFieldWorker() *model.FieldWorkerState {
	if len(m.savedFieldWorker) == 0 {
		return nil
	}
	return m.savedFieldWorker[len(m.savedFieldWorker)-1]
}

func (m *mockStateStore) lastContractor() *model.ContractorState {
	if len(m.savedContractor) == 0 {
		return nil
	}
	return m.savedContractor[len(m.savedContractor)-1]
}

type mockReportStore struct {
	upsertFn        func(ctx context.Context, rec *model.DailyReportRecord) error
	getByUserDateFn func(ctx context.Context, userID int64, reportDate string) (*model.DailyReportRecord, error)
	upsertedRecords []*model.DailyReportRecord
}

func (m *mockReportStore) Upsert(ctx context.Context, rec *model.DailyReportRecord) error {
	m.upsertedRecords = append(m.upsertedRecords, rec)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, rec)
	}
	return nil
}

func (m *mockReportStore) GetByUserAndDate(ctx context.Context, userID int64, reportDate string) (*model.DailyReportRecord, error) {
	if m.getByUserDateFn != nil {
		return m.getByUserDateFn(ctx, userID, reportDate)
	}
	return nil, store.ErrNotFound
}

type mockProfileStore struct {
	upsertFn        func(ctx context.Context, rec *model.ContractorProfileRecord) error
	getByUserFn     func(ctx context.Context, userID int64) (*model.ContractorProfileRecord, error)
	upsertedRecords []*model.ContractorProfileRecord
}

func (m *mockProfileStore) Upsert(ctx context.Context, rec *model.ContractorProfileRecord) error {
	m.upsertedRecords = append(m.upsertedRecords, rec)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, rec)
	}
	return nil
}

func (m *mockProfileStore) GetByUser(ctx context.Context, userID int64) (*model.ContractorProfileRecord, error) {
	if m.getByUserFn != nil {
		return m.getByUserFn(ctx, userID)
	}
	return nil, store.ErrNotFound
}

type mockDirectoryStore struct {
	getByIDFn              func(ctx context.Context, id int64) (*model.User, error)
	getByChannelIdentityFn func(ctx context.Context, channel, externalID string) (*model.User, error)
}

func (m *mockDirectoryStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockDirectoryStore) GetByChannelIdentity(ctx context.Context, channel, externalID string) (*model.User, error) {
	if m.getByChannelIdentityFn != nil {
		return m.getByChannelIdentityFn(ctx, channel, externalID)
	}
	return nil, store.ErrNotFound
}

func (m *mockDirectoryStore) Create(ctx context.Context, user *model.User) error {
	return nil
}

type mockConversationStore struct {
	appendFn       func(ctx context.Context, entry *model.ConversationEntry) error
	listBySenderFn func(ctx context.Context, channel, senderID string, limit int32) ([]model.ConversationEntry, error)
	entries        []*model.ConversationEntry
	lastLimit      int32
}

func (m *mockConversationStore) Append(ctx context.Context, entry *model.ConversationEntry) error {
	m.entries = append(m.entries, entry)
	if m.appendFn != nil {
		return m.appendFn(ctx, entry)
	}
	return nil
}

func (m *mockConversationStore) ListBySender(ctx context.Context, channel, senderID string, limit int32) ([]model.ConversationEntry, error) {
	m.lastLimit = limit
	if m.listBySenderFn != nil {
		return m.listBySenderFn(ctx, channel, senderID, limit)
	}
	return nil, nil
}

type mockInboundMessageStore struct {
	createOrGetFn   func(ctx context.Context, msg *model.InboundMessage) (*model.InboundMessage, bool, error)
	getByIDFn       func(ctx context.Context, id int64) (*model.InboundMessage, error)
	markProcessedFn func(ctx context.Context, id int64) error
	markFailedFn    func(ctx context.Context, id int64, errMsg *string) error
}

func (m *mockInboundMessageStore) CreateOrGet(ctx context.Context, msg *model.InboundMessage) (*model.InboundMessage, bool, error) {
	if m.createOrGetFn != nil {
		return m.createOrGetFn(ctx, msg)
	}
	return msg, true, nil
}

func (m *mockInboundMessageStore) GetByID(ctx context.Context, id int64) (*model.InboundMessage, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockInboundMessageStore) MarkProcessed(ctx context.Context, id int64) error {
	if m.markProcessedFn != nil {
		return m.markProcessedFn(ctx, id)
	}
	return nil
}

func (m *mockInboundMessageStore) MarkFailed(ctx context.Context, id int64, errMsg *string) error {
	if m.markFailedFn != nil {
		return m.markFailedFn(ctx, id, errMsg)
	}
	return nil
}

type mockProducer struct {
	enqueueFn func(ctx context.Context, task queue.MessageTask) error
	enqueued  []queue.MessageTask
}

func (m *mockProducer) Enqueue(ctx context.Context, task queue.MessageTask) error {
	m.enqueued = append(m.enqueued, task)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, task)
	}
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}

type mockExtractor struct {
	extractFn    func(ctx context.Context, text string, partial map[string]string, required []string) (*adapter.ExtractionResult, error)
	lastPartial  map[string]string
	lastRequired []string
}

func (m *mockExtractor) Extract(ctx context.Context, text string, partial map[string]string, required []string) (*adapter.ExtractionResult, error) {
	m.lastPartial = partial
	m.lastRequired = required
	if m.extractFn != nil {
		return m.extractFn(ctx, text, partial, required)
	}
	return &adapter.ExtractionResult{Fields: map[string]string{}}, nil
}

type mockProofValidator struct {
	validateFn func(ctx context.Context, report model.DailyReport, mediaURL string) (*adapter.ProofAnalysis, error)
	calls      int
}

func (m *mockProofValidator) ValidateProof(ctx context.Context, report model.DailyReport, mediaURL string) (*adapter.ProofAnalysis, error) {
	m.calls++
	if m.validateFn != nil {
		return m.validateFn(ctx, report, mediaURL)
	}
	return &adapter.ProofAnalysis{Valid: true, Confidence: 0.9}, nil
}

type mockDocumentAnalyzer struct {
	analyzeFn func(ctx context.Context, mediaURL string) (*adapter.DocumentAnalysis, error)
}

func (m *mockDocumentAnalyzer) AnalyzeDocument(ctx context.Context, mediaURL string) (*adapter.DocumentAnalysis, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, mediaURL)
	}
	return &adapter.DocumentAnalysis{Valid: true, Extracted: map[string]string{}}, nil
}

type mockScorer struct {
	scoreFn func(ctx context.Context, report model.DailyReport, analysis adapter.ProofAnalysis) (float64, error)
}

func (m *mockScorer) Score(ctx context.Context, report model.DailyReport, analysis adapter.ProofAnalysis) (float64, error) {
	if m.scoreFn != nil {
		return m.scoreFn(ctx, report, analysis)
	}
	return 7.5, nil
}

type mockObjectStore struct {
	uploadFn func(ctx context.Context, ownerID int64, media model.Media) (string, error)
	uploads  int
}

func (m *mockObjectStore) Upload(ctx context.Context, ownerID int64, media model.Media) (string, error) {
	m.uploads++
	if m.uploadFn != nil {
		return m.uploadFn(ctx, ownerID, media)
	}
	return "https://media.example/proof.jpg", nil
}
