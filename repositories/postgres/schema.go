package postgres

import (
	"context"
	"fmt"

	"github.com/upb/newsletter/repositories"
)

// schemaStatements create the tables the service needs. Each is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id UUID NOT NULL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		subscribed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_subscribed_at ON subscriptions(subscribed_at)`,
}

// InitSchema creates the schema in a single transaction, so a failed
// statement leaves no partial schema behind.
func InitSchema(ctx context.Context, db *DB, txManager repositories.TransactionManager) error {
	err := txManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		executor := GetExecutor(ctx, db)
		for _, stmt := range schemaStatements {
			if _, err := executor.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
