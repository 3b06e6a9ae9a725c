package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/upb/newsletter/internal/observability"
	"github.com/upb/newsletter/models"
	"github.com/upb/newsletter/repositories"
	"go.uber.org/zap"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation pq.ErrorCode = "23505"

// SubscriptionRepository implements the repositories.SubscriptionRepository interface
type SubscriptionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *DB, logger *zap.Logger) repositories.SubscriptionRepository {
	return &SubscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a new subscription. Log lines are written through the span
// logger carried by ctx so they share the caller's correlation fields.
func (r *SubscriptionRepository) Insert(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, email, name, subscribed_at)
		VALUES ($1, $2, $3, $4)
	`

	logger := observability.LoggerFromContextOr(ctx, r.logger)
	logger.Debug("executing subscription insert", zap.String("subscription_id", sub.ID.String()))

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		sub.ID,
		sub.Email,
		sub.Name,
		sub.SubscribedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("failed to insert subscription: %w: %w", repositories.ErrDuplicateSubscription, err)
		}
		return fmt.Errorf("failed to insert subscription: %w", err)
	}

	logger.Debug("subscription inserted", zap.String("subscription_id", sub.ID.String()))
	return nil
}

// GetByEmail retrieves a subscription by email
func (r *SubscriptionRepository) GetByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	query := `
		SELECT id, email, name, subscribed_at
		FROM subscriptions
		WHERE email = $1
	`

	executor := GetExecutor(ctx, r.db)
	sub := &models.Subscription{}

	err := executor.QueryRowContext(ctx, query, email).Scan(
		&sub.ID,
		&sub.Email,
		&sub.Name,
		&sub.SubscribedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", repositories.ErrSubscriptionNotFound, email)
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}
