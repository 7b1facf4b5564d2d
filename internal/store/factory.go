package store

import (
	"samvaad.app/intake/core/db"
)

type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Directory() DirectoryStore {
	return newDirectoryStore(s.q)
}

func (s *Stores) States() StateStore {
	return newStateStore(s.q)
}

func (s *Stores) Reports() ReportStore {
	return newReportStore(s.q)
}

func (s *Stores) Profiles() ProfileStore {
	return newProfileStore(s.q)
}

func (s *Stores) Conversations() ConversationStore {
	return newConversationStore(s.q)
}

func (s *Stores) InboundMessages() InboundMessageStore {
	return newInboundMessageStore(s.q)
}
