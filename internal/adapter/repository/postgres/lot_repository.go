package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/srgjo27/smart_parking/internal/core/domain"
)

type LotRepository struct {
	db *sql.DB
}

func NewLotRepository(db *sql.DB) *LotRepository {
	return &LotRepository{db: db}
}

func (r *LotRepository) Capacity(ctx context.Context, lot string) (int, error) {
	var capacity int

	err := r.db.QueryRowContext(ctx, `SELECT capacity FROM lots WHERE name = $1`, lot).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrLotNotFound
		}

		return 0, err
	}

	return capacity, nil
}

func (r *LotRepository) List(ctx context.Context) ([]domain.Lot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, capacity FROM lots ORDER BY name`)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var lots []domain.Lot
	for rows.Next() {
		var lot domain.Lot
		if err := rows.Scan(&lot.Name, &lot.Capacity); err != nil {
			return nil, err
		}

		lots = append(lots, lot)
	}

	return lots, rows.Err()
}

func (r *LotRepository) Upsert(ctx context.Context, lot domain.Lot) error {
	query := `
	INSERT INTO lots (name, capacity)
	VALUES ($1, $2)
	ON CONFLICT (name) DO UPDATE SET capacity = EXCLUDED.capacity
	`

	_, err := r.db.ExecContext(ctx, query, lot.Name, lot.Capacity)

	return err
}
