package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// At most one open session may hold a space, a subscriber or a parking code.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS subscribers (
		code BIGINT PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(32) NOT NULL DEFAULT '',
		tag_id VARCHAR(64) UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS lots (
		name VARCHAR(64) PRIMARY KEY,
		capacity INTEGER NOT NULL CHECK (capacity >= 0)
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		order_number BIGSERIAL PRIMARY KEY,
		subscriber_code BIGINT NOT NULL REFERENCES subscribers(code),
		arrival_at TIMESTAMPTZ NOT NULL,
		confirmation_code CHAR(6) NOT NULL,
		booked_on TIMESTAMPTZ NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'ACTIVE'
	)`,

	`CREATE TABLE IF NOT EXISTS parking_events (
		id BIGSERIAL PRIMARY KEY,
		subscriber_code BIGINT NOT NULL REFERENCES subscribers(code),
		space_number INTEGER NOT NULL,
		entry_at TIMESTAMPTZ NOT NULL,
		exit_at TIMESTAMPTZ,
		extended BOOLEAN NOT NULL DEFAULT FALSE,
		notified BOOLEAN NOT NULL DEFAULT FALSE,
		lot VARCHAR(64) NOT NULL REFERENCES lots(name),
		vehicle_id VARCHAR(32) NOT NULL,
		parking_code CHAR(6) NOT NULL,
		order_number BIGINT REFERENCES orders(order_number),
		CHECK (exit_at IS NULL OR exit_at >= entry_at)
	)`,

	`CREATE TABLE IF NOT EXISTS monthly_reports (
		month CHAR(7) PRIMARY KEY,
		generated_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_orders_subscriber ON orders(subscriber_code)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status_arrival ON orders(status, arrival_at)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_orders_active_code ON orders(confirmation_code) WHERE status = 'ACTIVE'`,
	`CREATE INDEX IF NOT EXISTS idx_events_subscriber ON parking_events(subscriber_code)`,
	`CREATE INDEX IF NOT EXISTS idx_events_entry ON parking_events(entry_at)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_events_open_space ON parking_events(lot, space_number) WHERE exit_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_events_open_subscriber ON parking_events(subscriber_code) WHERE exit_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_events_open_code ON parking_events(parking_code) WHERE exit_at IS NULL`,
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}

	logrus.Infof("Database migrations completed successfully (%d statements)", len(migrations))
	return nil
}
