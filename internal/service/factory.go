package service

import (
	"log/slog"

	"samvaad.app/intake/core/config"
	"samvaad.app/intake/internal/adapter"
	"samvaad.app/intake/internal/queue"
	"samvaad.app/intake/internal/store"
)

// Adapters bundles the external capabilities the workflows consume.
type Adapters struct {
	Extractor        adapter.Extractor
	ProofValidator   adapter.ProofValidator
	DocumentAnalyzer adapter.DocumentAnalyzer
	Scorer           adapter.Scorer
	ObjectStore      adapter.ObjectStore
}

type ServicesConfig struct {
	Stores          *store.Stores
	Adapters        Adapters
	Workflow        config.WorkflowConfig
	MessageProducer queue.Producer // nil in processes that never ingest
	Logger          *slog.Logger
}

type Services struct {
	cfg ServicesConfig
}

func NewServices(cfg ServicesConfig) *Services {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Services{cfg: cfg}
}

func (s *Services) Ingest() MessageIngestService {
	return NewMessageIngestService(s.cfg.Stores.InboundMessages(), s.cfg.MessageProducer, s.cfg.Logger)
}

func (s *Services) FieldWorkers() FieldWorkerService {
	return NewFieldWorkerService(
		s.cfg.Stores.States(),
		s.cfg.Stores.Reports(),
		s.cfg.Adapters.Extractor,
		s.cfg.Adapters.ProofValidator,
		s.cfg.Adapters.Scorer,
		s.cfg.Adapters.ObjectStore,
		s.cfg.Workflow,
		s.cfg.Logger,
	)
}

func (s *Services) Contractors() ContractorService {
	return NewContractorService(
		s.cfg.Stores.States(),
		s.cfg.Stores.Profiles(),
		s.cfg.Adapters.Extractor,
		s.cfg.Adapters.DocumentAnalyzer,
		s.cfg.Adapters.ObjectStore,
		s.cfg.Workflow,
		s.cfg.Logger,
	)
}

func (s *Services) Conversations() ConversationService {
	return NewConversationService(s.cfg.Stores.Conversations())
}

func (s *Services) Dispatcher() Dispatcher {
	return NewDispatcher(
		s.cfg.Stores.Directory(),
		s.cfg.Stores.Conversations(),
		s.FieldWorkers(),
		s.Contractors(),
		s.cfg.Logger,
	)
}
