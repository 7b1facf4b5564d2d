package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"samvaad.app/intake/core/db"
	"samvaad.app/intake/internal/model"
)

type profileStore struct {
	q db.Querier
}

func newProfileStore(q db.Querier) ProfileStore {
	return &profileStore{q: q}
}

const profileColumns = `id, user_id, company_name, license_number, gst, category, document_urls, verification_status, created_at`

// Upsert never touches verification_status on conflict: once the review
// process owns the row, a re-finalization must not regress it.
func (s *profileStore) Upsert(ctx context.Context, rec *model.ContractorProfileRecord) error {
	row := s.q.QueryRow(ctx,
		`INSERT INTO contractor_profiles
		   (id, user_id, company_name, license_number, gst, category, document_urls, verification_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
		   company_name = EXCLUDED.company_name,
		   license_number = EXCLUDED.license_number,
		   gst = EXCLUDED.gst,
		   category = EXCLUDED.category,
		   document_urls = EXCLUDED.document_urls
		 RETURNING `+profileColumns,
		rec.ID, rec.UserID, rec.CompanyName, rec.LicenseNumber, rec.GST, rec.Category,
		rec.DocumentURLs, string(rec.VerificationStatus))

	stored, err := scanProfile(row)
	if err != nil {
		return err
	}
	*rec = *stored
	return nil
}

func (s *profileStore) GetByUser(ctx context.Context, userID int64) (*model.ContractorProfileRecord, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM contractor_profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

func scanProfile(row pgx.Row) (*model.ContractorProfileRecord, error) {
	var (
		rec    model.ContractorProfileRecord
		status string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.CompanyName, &rec.LicenseNumber, &rec.GST,
		&rec.Category, &rec.DocumentURLs, &status, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.VerificationStatus = model.VerificationStatus(status)
	return &rec, nil
}
