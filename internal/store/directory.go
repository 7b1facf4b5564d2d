package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"samvaad.app/intake/core/db"
	"samvaad.app/intake/internal/model"
)

type directoryStore struct {
	q db.Querier
}

func newDirectoryStore(q db.Querier) DirectoryStore {
	return &directoryStore{q: q}
}

const userColumns = `id, channel, external_id, name, role, department_id, created_at, updated_at`

func (s *directoryStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *directoryStore) GetByChannelIdentity(ctx context.Context, channel, externalID string) (*model.User, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE channel = $1 AND external_id = $2`,
		channel, externalID)
	return scanUser(row)
}

func (s *directoryStore) Create(ctx context.Context, user *model.User) error {
	row := s.q.QueryRow(ctx,
		`INSERT INTO users (id, channel, external_id, name, role, department_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		user.ID, user.Channel, user.ExternalID, user.Name, string(user.Role), user.DepartmentID)

	created, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Channel, &u.ExternalID, &u.Name, &role, &u.DepartmentID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = model.ParseRole(role)
	return &u, nil
}
