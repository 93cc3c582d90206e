package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"minbar/internal/models"
	"minbar/internal/store"
)

const reportColumns = `id, content_type, content_id, author_id,
	toxicity, severe_toxicity, obscene, threat, insult, identity_attack, sexual_explicit,
	is_negative, reason, is_resolved, reporter_kind, created_at`

func scanReport(row pgx.Row) (*models.ModerationReport, error) {
	report := &models.ModerationReport{}
	err := row.Scan(
		&report.ID,
		&report.ContentType,
		&report.ContentID,
		&report.AuthorID,
		&report.Scores.Toxicity,
		&report.Scores.SevereToxicity,
		&report.Scores.Obscene,
		&report.Scores.Threat,
		&report.Scores.Insult,
		&report.Scores.IdentityAttack,
		&report.Scores.SexualExplicit,
		&report.IsNegative,
		&report.Reason,
		&report.IsResolved,
		&report.ReporterKind,
		&report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *StoreImpl) CreateReport(ctx context.Context, report *models.ModerationReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	query := `
		INSERT INTO moderation_reports (
			id, content_type, content_id, author_id,
			toxicity, severe_toxicity, obscene, threat, insult, identity_attack, sexual_explicit,
			is_negative, reason, is_resolved, reporter_kind, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at`

	err := s.db.QueryRow(ctx, query,
		report.ID, report.ContentType, report.ContentID, report.AuthorID,
		report.Scores.Toxicity, report.Scores.SevereToxicity, report.Scores.Obscene,
		report.Scores.Threat, report.Scores.Insult, report.Scores.IdentityAttack,
		report.Scores.SexualExplicit,
		report.IsNegative, report.Reason, report.IsResolved, report.ReporterKind,
		time.Now(),
	).Scan(&report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert moderation report: %w", err)
	}
	return nil
}

func (s *StoreImpl) GetReport(ctx context.Context, id uuid.UUID) (*models.ModerationReport, error) {
	query := `SELECT ` + reportColumns + ` FROM moderation_reports WHERE id = $1`
	report, err := scanReport(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get moderation report %s: %w", id, err)
	}
	return report, nil
}

func (s *StoreImpl) ListReports(ctx context.Context, limit, offset int) ([]*models.ModerationReport, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + reportColumns + `
		FROM moderation_reports ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.ModerationReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moderation report rows: %w", err)
	}
	return reports, nil
}

var _ store.ModerationStore = (*StoreImpl)(nil)
