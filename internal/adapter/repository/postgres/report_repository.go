package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/srgjo27/smart_parking/internal/core/domain"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) SaveMonthly(ctx context.Context, report *domain.MonthlyReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	query := `
	INSERT INTO monthly_reports (month, generated_at, payload)
	VALUES ($1, $2, $3)
	ON CONFLICT (month) DO UPDATE
	SET generated_at = EXCLUDED.generated_at, payload = EXCLUDED.payload
	`

	_, err = r.db.ExecContext(ctx, query, report.Month, report.GeneratedAt, payload)

	return err
}

func (r *ReportRepository) GetMonthly(ctx context.Context, month string) (*domain.MonthlyReport, error) {
	var payload []byte

	err := r.db.QueryRowContext(ctx, `SELECT payload FROM monthly_reports WHERE month = $1`, month).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}

		return nil, err
	}

	var report domain.MonthlyReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", month, err)
	}

	return &report, nil
}
