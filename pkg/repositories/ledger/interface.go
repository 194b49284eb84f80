package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fadedpez/blackjack/pkg/entities"
)

// Repository defines the interface for chip ledger operations.
// Listings are newest first; a limit of zero or less returns everything.
type Repository interface {
	// AddTransactions records a batch of chip movements atomically
	AddTransactions(ctx context.Context, transactions []*entities.Transaction) error

	// GetTableTransactions retrieves recent transactions at a table
	GetTableTransactions(ctx context.Context, tableID string, limit int) ([]*entities.Transaction, error)

	// GetPlayerTransactions retrieves recent transactions for a seat name
	GetPlayerTransactions(ctx context.Context, player string, limit int) ([]*entities.Transaction, error)

	// Close releases the underlying storage
	Close() error
}

// prepare fills in the ID and timestamp of a transaction when missing
func prepare(tx *entities.Transaction, now func() time.Time) {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = now()
	}
}
