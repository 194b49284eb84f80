package entities

import (
	"time"
)

// TransactionType represents the type of chip movement
type TransactionType string

const (
	TransactionTypeBet    TransactionType = "BET"
	TransactionTypeDouble TransactionType = "DOUBLE"
	TransactionTypeSplit  TransactionType = "SPLIT"
	TransactionTypePayout TransactionType = "PAYOUT"
)

// Transaction represents a single chip movement at a table
type Transaction struct {
	ID           string          `json:"id"`            // Unique identifier
	TableID      string          `json:"table_id"`      // Table the chips moved at
	RoundID      string          `json:"round_id"`      // Round the movement belongs to
	Player       string          `json:"player"`        // Seat name
	Seat         int             `json:"seat"`          // Seat index
	Hand         int             `json:"hand"`          // Hand index within the seat
	Amount       int64           `json:"amount"`        // Positive for credits, negative for debits
	Type         TransactionType `json:"type"`          // Type of transaction
	BalanceAfter int64           `json:"balance_after"` // Seat chips after this transaction
	Timestamp    time.Time       `json:"timestamp"`     // When the transaction occurred
}
