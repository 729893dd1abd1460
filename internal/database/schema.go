package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied statement by statement on start-up.  Every statement is
// idempotent so restarting against an existing database is a no-op.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(120)    NOT NULL,
		beds        VARCHAR(120)    NOT NULL DEFAULT '',
		capacity    INT             NOT NULL DEFAULT 1,
		price_cents INT UNSIGNED    NOT NULL DEFAULT 0,
		available   INT             NOT NULL DEFAULT 0,
		occupied    INT             NOT NULL DEFAULT 0,
		maintenance TINYINT(1)      NOT NULL DEFAULT 0,
		status      VARCHAR(32)     NOT NULL DEFAULT 'available',
		features    JSON            NULL,
		created_at  DATETIME(3)     NOT NULL,
		updated_at  DATETIME(3)     NOT NULL,
		UNIQUE KEY uq_rooms_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_name        VARCHAR(191)    NOT NULL,
		room_id          BIGINT UNSIGNED NOT NULL,
		check_in         DATE            NOT NULL,
		check_out        DATE            NOT NULL,
		guest_count      INT             NOT NULL,
		total_amount     DECIMAL(12,2)   NOT NULL,
		special_requests TEXT            NOT NULL,
		extra_beds       INT             NOT NULL DEFAULT 0,
		extra_persons    INT             NOT NULL DEFAULT 0,
		status           ENUM('pending','confirmed','cancelled','rejected','checked out') NOT NULL DEFAULT 'pending',
		created_at       DATETIME(3)     NOT NULL,
		updated_at       DATETIME(3)     NOT NULL,
		KEY idx_reservations_room_window (room_id, status, check_in, check_out),
		KEY idx_reservations_status_checkout (status, check_out),
		KEY idx_reservations_user (user_name),
		CONSTRAINT fk_reservations_room FOREIGN KEY (room_id) REFERENCES rooms (id) ON DELETE RESTRICT,
		CONSTRAINT chk_reservations_window CHECK (check_out > check_in)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS payments (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		reservation_id    BIGINT UNSIGNED NOT NULL,
		amount            DECIMAL(12,2)   NOT NULL,
		currency          CHAR(3)         NOT NULL DEFAULT 'PHP',
		method            VARCHAR(32)     NOT NULL,
		status            ENUM('pending','completed','failed','refunded') NOT NULL DEFAULT 'completed',
		payment_reference VARCHAR(191)    NOT NULL,
		transaction_id    VARCHAR(191)    NOT NULL,
		created_at        DATETIME(3)     NOT NULL,
		KEY idx_payments_reservation_status (reservation_id, status),
		KEY idx_payments_status (status),
		CONSTRAINT fk_payments_reservation FOREIGN KEY (reservation_id) REFERENCES reservations (id) ON DELETE RESTRICT
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS customer_profiles (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		full_name      VARCHAR(191)    NOT NULL,
		email          VARCHAR(191)    NOT NULL,
		address        VARCHAR(255)    NOT NULL DEFAULT '',
		contact_number VARCHAR(32)     NOT NULL DEFAULT '',
		gender         VARCHAR(32)     NOT NULL DEFAULT '',
		plate_no       VARCHAR(32)     NOT NULL DEFAULT '',
		created_at     DATETIME(3)     NOT NULL,
		updated_at     DATETIME(3)     NOT NULL,
		UNIQUE KEY uq_customer_profiles_email (email),
		KEY idx_customer_profiles_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the rooms, reservations, payments and
// customer_profiles tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
