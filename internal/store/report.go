package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"samvaad.app/intake/core/db"
	"samvaad.app/intake/internal/model"
)

type reportStore struct {
	q db.Querier
}

func newReportStore(q db.Querier) ReportStore {
	return &reportStore{q: q}
}

const reportColumns = `id, user_id, report_date, description, site, hours, blockers, proof_urls, productivity_score, created_at`

func (s *reportStore) Upsert(ctx context.Context, rec *model.DailyReportRecord) error {
	row := s.q.QueryRow(ctx,
		`INSERT INTO daily_reports
		   (id, user_id, report_date, description, site, hours, blockers, proof_urls, productivity_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, report_date) DO UPDATE SET
		   description = EXCLUDED.description,
		   site = EXCLUDED.site,
		   hours = EXCLUDED.hours,
		   blockers = EXCLUDED.blockers,
		   proof_urls = EXCLUDED.proof_urls,
		   productivity_score = EXCLUDED.productivity_score
		 RETURNING `+reportColumns,
		rec.ID, rec.UserID, rec.ReportDate, rec.Description, rec.Site, rec.Hours,
		rec.Blockers, rec.ProofURLs, rec.ProductivityScore)

	stored, err := scanReport(row)
	if err != nil {
		return err
	}
	*rec = *stored
	return nil
}

func (s *reportStore) GetByUserAndDate(ctx context.Context, userID int64, reportDate string) (*model.DailyReportRecord, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM daily_reports WHERE user_id = $1 AND report_date = $2`,
		userID, reportDate)
	return scanReport(row)
}

func scanReport(row pgx.Row) (*model.DailyReportRecord, error) {
	var rec model.DailyReportRecord
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.ReportDate, &rec.Description, &rec.Site,
		&rec.Hours, &rec.Blockers, &rec.ProofURLs, &rec.ProductivityScore, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
