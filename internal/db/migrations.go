package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('active', 'completed', 'cancelled');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'order_status') THEN
			CREATE TYPE order_status AS ENUM ('pending', 'delivered', 'cancelled');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS clients (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(64) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id BIGSERIAL PRIMARY KEY,
		correlative_number VARCHAR(16) NOT NULL,
		client_id BIGINT NOT NULL REFERENCES clients(id),
		total_volume NUMERIC(18,3) NOT NULL,
		attended_volume NUMERIC(18,3) NOT NULL DEFAULT 0,
		pending_volume NUMERIC(18,3) NOT NULL,
		sale_price NUMERIC(18,4) NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		status contract_status NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_correlative ON contracts (correlative_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_client_id ON contracts (client_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE TABLE IF NOT EXISTS purchase_orders (
		id BIGSERIAL PRIMARY KEY,
		contract_id BIGINT NOT NULL REFERENCES contracts(id),
		volume NUMERIC(18,3) NOT NULL,
		price NUMERIC(18,4) NOT NULL,
		order_date TIMESTAMPTZ NOT NULL,
		delivery_date TIMESTAMPTZ,
		status order_status NOT NULL DEFAULT 'pending',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_orders_contract_id ON purchase_orders (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_orders_status ON purchase_orders (status);`,
	`CREATE TABLE IF NOT EXISTS system_settings (
		id BIGSERIAL PRIMARY KEY,
		company_name VARCHAR(255) NOT NULL,
		session_timeout_minutes INT NOT NULL,
		maintenance_mode BOOLEAN NOT NULL DEFAULT FALSE,
		currency VARCHAR(8) NOT NULL,
		date_format VARCHAR(16) NOT NULL,
		time_zone VARCHAR(64) NOT NULL,
		max_file_size_mb INT NOT NULL,
		allowed_file_types TEXT NOT NULL DEFAULT '',
		backup_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		backup_frequency VARCHAR(16) NOT NULL,
		email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
