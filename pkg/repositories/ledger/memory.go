package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/fadedpez/blackjack/pkg/entities"
)

// MemoryRepository implements Repository using in-memory storage
type MemoryRepository struct {
	transactions []*entities.Transaction
	mu           sync.RWMutex
}

// NewMemoryRepository creates a new in-memory ledger repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// AddTransactions records a batch of chip movements
func (r *MemoryRepository) AddTransactions(ctx context.Context, transactions []*entities.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tx := range transactions {
		prepare(tx, time.Now)
		// Make a copy to prevent concurrent modification
		txCopy := *tx
		r.transactions = append(r.transactions, &txCopy)
	}
	return nil
}

// GetTableTransactions retrieves recent transactions at a table
func (r *MemoryRepository) GetTableTransactions(ctx context.Context, tableID string, limit int) ([]*entities.Transaction, error) {
	return r.filter(func(tx *entities.Transaction) bool { return tx.TableID == tableID }, limit), nil
}

// GetPlayerTransactions retrieves recent transactions for a seat name
func (r *MemoryRepository) GetPlayerTransactions(ctx context.Context, player string, limit int) ([]*entities.Transaction, error) {
	return r.filter(func(tx *entities.Transaction) bool { return tx.Player == player }, limit), nil
}

// Close is a no-op for the in-memory repository
func (r *MemoryRepository) Close() error {
	return nil
}

// filter walks the ledger backwards so the newest matches come first
func (r *MemoryRepository) filter(match func(*entities.Transaction) bool, limit int) []*entities.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Transaction, 0)
	for i := len(r.transactions) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		if match(r.transactions[i]) {
			txCopy := *r.transactions[i]
			result = append(result, &txCopy)
		}
	}
	return result
}
