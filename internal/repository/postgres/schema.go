package postgres

import (
	"context"
	"fmt"

	"github.com/hanssonfredrik/customers/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name        VARCHAR(200) NOT NULL,
		email       VARCHAR(254) NOT NULL,
		phone       VARCHAR(15)  NOT NULL,
		street      VARCHAR(200),
		city        VARCHAR(100),
		state       VARCHAR(100),
		postal_code VARCHAR(20),
		country     VARCHAR(100),
		signup_date TIMESTAMPTZ  NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_customers_email ON customers (lower(email))`,
	`CREATE INDEX IF NOT EXISTS ix_customers_name ON customers (name)`,
	`CREATE INDEX IF NOT EXISTS ix_customers_city ON customers (city)`,
	`CREATE INDEX IF NOT EXISTS ix_customers_signup_date ON customers (signup_date DESC, id DESC)`,
}

// EnsureSchema creates the customers table and its indexes when missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool, log *logger.Logger) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	log.Info("Customer schema is up to date")
	return nil
}
