package repositories

import (
	"context"
	"errors"

	"github.com/upb/newsletter/models"
)

var (
	// ErrSubscriptionNotFound is returned when no subscription matches a lookup.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrDuplicateSubscription is returned when an insert violates a unique
	// constraint, typically on email.
	ErrDuplicateSubscription = errors.New("subscription already exists")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error
}

// SubscriptionRepository persists newsletter subscriptions.
// Implementations must be safe for concurrent use.
type SubscriptionRepository interface {
	// Insert stores a new subscription. It either fully succeeds or fails.
	Insert(ctx context.Context, sub *models.Subscription) error

	// GetByEmail retrieves a subscription by email
	GetByEmail(ctx context.Context, email string) (*models.Subscription, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Subscriptions SubscriptionRepository
}
