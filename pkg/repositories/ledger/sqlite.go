package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fadedpez/blackjack/pkg/db/migrations"
	"github.com/fadedpez/blackjack/pkg/entities"
)

const selectTransactionsSQL = `
	SELECT id, table_id, round_id, player, seat, hand, amount, type, balance_after, timestamp
	FROM transactions`

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db    *sql.DB
	owned bool
}

// NewSQLiteRepository opens (or creates) a database file and applies the schema
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrations.NewMigrator(db).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}

	return &SQLiteRepository{db: db, owned: true}, nil
}

// NewSQLiteRepositoryFromDB uses a database another repository already opened
// and migrated. Close leaves the handle open.
func NewSQLiteRepositoryFromDB(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// AddTransactions records a batch of chip movements in one transaction
func (r *SQLiteRepository) AddTransactions(ctx context.Context, transactions []*entities.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, tx := range transactions {
		prepare(tx, time.Now)
		_, err := dbTx.ExecContext(ctx, `
			INSERT INTO transactions (
				id, table_id, round_id, player, seat, hand, amount, type, balance_after, timestamp
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.ID, tx.TableID, tx.RoundID, tx.Player, tx.Seat, tx.Hand,
			tx.Amount, string(tx.Type), tx.BalanceAfter, tx.Timestamp.UTC(),
		)
		if err != nil {
			return fmt.Errorf("error adding transaction: %w", err)
		}
	}

	return dbTx.Commit()
}

// GetTableTransactions retrieves recent transactions at a table
func (r *SQLiteRepository) GetTableTransactions(ctx context.Context, tableID string, limit int) ([]*entities.Transaction, error) {
	return r.query(ctx, selectTransactionsSQL+`
		WHERE table_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, tableID, sqlLimit(limit))
}

// GetPlayerTransactions retrieves recent transactions for a seat name
func (r *SQLiteRepository) GetPlayerTransactions(ctx context.Context, player string, limit int) ([]*entities.Transaction, error) {
	return r.query(ctx, selectTransactionsSQL+`
		WHERE player = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, player, sqlLimit(limit))
}

// Close closes the database connection if this repository opened it
func (r *SQLiteRepository) Close() error {
	if !r.owned {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entities.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*entities.Transaction, 0)
	for rows.Next() {
		var tx entities.Transaction
		var txType string
		if err := rows.Scan(
			&tx.ID, &tx.TableID, &tx.RoundID, &tx.Player, &tx.Seat, &tx.Hand,
			&tx.Amount, &txType, &tx.BalanceAfter, &tx.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		tx.Type = entities.TransactionType(txType)
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

// sqlLimit maps "no limit" onto SQLite's -1
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
