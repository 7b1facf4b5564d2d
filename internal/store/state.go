package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"samvaad.app/intake/core/db"
	"samvaad.app/intake/internal/model"
)

// ScopeKeyOnboarding is the fixed sentinel scope for the lifetime-scoped
// contractor onboarding state. Daily report scopes are calendar dates.
const ScopeKeyOnboarding = "onboarding"

type stateStore struct {
	q db.Querier
}

func newStateStore(q db.Querier) StateStore {
	return &stateStore{q: q}
}

func (s *stateStore) GetFieldWorker(ctx context.Context, userID int64, scopeDate string) (*model.FieldWorkerState, error) {
	raw, err := s.get(ctx, userID, scopeDate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.NewFieldWorkerState(userID, scopeDate), nil
		}
		return nil, err
	}

	var state model.FieldWorkerState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decoding field worker state: %w", err)
	}
	// Missing is derived; never trust the stored copy.
	state.RecomputeMissing()
	return &state, nil
}

func (s *stateStore) PutFieldWorker(ctx context.Context, state *model.FieldWorkerState) error {
	return s.put(ctx, state.UserID, state.ScopeDate, state)
}

func (s *stateStore) GetContractor(ctx context.Context, userID int64) (*model.ContractorState, error) {
	raw, err := s.get(ctx, userID, ScopeKeyOnboarding)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.NewContractorState(userID), nil
		}
		return nil, err
	}

	var state model.ContractorState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decoding contractor state: %w", err)
	}
	state.RecomputeMissing()
	return &state, nil
}

func (s *stateStore) PutContractor(ctx context.Context, state *model.ContractorState) error {
	return s.put(ctx, state.UserID, ScopeKeyOnboarding, state)
}

func (s *stateStore) get(ctx context.Context, userID int64, scopeKey string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := s.q.QueryRow(ctx,
		`SELECT state FROM workflow_states WHERE user_id = $1 AND scope_key = $2`,
		userID, scopeKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

// put replaces the full state for the exact (user, scope) key. Exactly one
// live state per key: the primary key makes a second row impossible.
func (s *stateStore) put(ctx context.Context, userID int64, scopeKey string, state any) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding workflow state: %w", err)
	}

	_, err = s.q.Exec(ctx,
		`INSERT INTO workflow_states (user_id, scope_key, state, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id, scope_key) DO UPDATE SET state = $3, updated_at = now()`,
		userID, scopeKey, raw)
	if err != nil {
		return fmt.Errorf("storing workflow state: %w", err)
	}
	return nil
}
