package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencivic/infrawatch/internal/assessment"
)

// PGXPool is the subset of pgxpool.Pool used by PostgresRepository; it
// matches pgxmock for tests.
type PGXPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores reports in the relational database. The risk
// assessment is held as a JSONB column since it is written once and read
// whole.
type PostgresRepository struct {
	pool PGXPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("reports: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithPool accepts any PGXPool, used by tests.
func NewPostgresRepositoryWithPool(pool PGXPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert stores a new report row.
func (r *PostgresRepository) Insert(ctx context.Context, report *Report) error {
	var raJSON []byte
	if report.RiskAssessment != nil {
		var err error
		raJSON, err = json.Marshal(report.RiskAssessment)
		if err != nil {
			return fmt.Errorf("reports: marshal assessment: %w", err)
		}
	}

	query := `
		INSERT INTO reports (id, category, description, location, image_url, risk_assessment, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.pool.Exec(ctx, query,
		report.ID,
		report.Category,
		report.Description,
		report.Location,
		report.ImageURL,
		raJSON,
		report.Status,
		report.Timestamp,
	); err != nil {
		return fmt.Errorf("%w: insert: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

// GetByID fetches one report.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Report, error) {
	query := `
		SELECT id, category, description, location, image_url, risk_assessment, status, created_at
		FROM reports
		WHERE id = $1
	`
	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("reports: select failed: %w", err)
	}
	return report, nil
}

// ListNewestFirst returns all reports ordered by creation time descending.
func (r *PostgresRepository) ListNewestFirst(ctx context.Context) ([]*Report, error) {
	query := `
		SELECT id, category, description, location, image_url, risk_assessment, status, created_at
		FROM reports
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reports: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("reports: scan failed: %w", err)
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: rows error: %w", err)
	}
	return out, nil
}

// UpdateStatus advances the lifecycle status of a report.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	tag, err := r.pool.Exec(ctx, `UPDATE reports SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("reports: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// AddFeedback appends a feedback row for a report.
func (r *PostgresRepository) AddFeedback(ctx context.Context, fb *Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO report_feedback (id, report_id, feedback_type, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.pool.Exec(ctx, query, fb.ID, fb.ReportID, fb.FeedbackType, fb.Comment, fb.CreatedAt); err != nil {
		return fmt.Errorf("reports: insert feedback: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*Report, error) {
	var report Report
	var raJSON []byte
	if err := row.Scan(
		&report.ID,
		&report.Category,
		&report.Description,
		&report.Location,
		&report.ImageURL,
		&raJSON,
		&report.Status,
		&report.Timestamp,
	); err != nil {
		return nil, err
	}
	if len(raJSON) > 0 {
		var ra assessment.RiskAssessment
		if err := json.Unmarshal(raJSON, &ra); err != nil {
			return nil, fmt.Errorf("decode assessment: %w", err)
		}
		report.RiskAssessment = &ra
	}
	return &report, nil
}
