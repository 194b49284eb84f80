package ledger

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fadedpez/blackjack/pkg/entities"
)

//go:embed schema.sql
var postgresSchema string

const selectTransactionsPG = `
	SELECT id, table_id, round_id, player, seat, hand, amount, type, balance_after, timestamp
	  FROM transactions`

// PostgresRepository implements Repository on a pgx connection pool
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to dsn and ensures the ledger table exists
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error applying ledger schema: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

// AddTransactions records a batch of chip movements in one transaction
func (r *PostgresRepository) AddTransactions(ctx context.Context, transactions []*entities.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tx := range transactions {
		prepare(tx, time.Now)
		batch.Queue(`
			INSERT INTO transactions (id, table_id, round_id, player, seat, hand, amount, type, balance_after, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			tx.ID, tx.TableID, tx.RoundID, tx.Player, tx.Seat, tx.Hand,
			tx.Amount, string(tx.Type), tx.BalanceAfter, tx.Timestamp.UTC(),
		)
	}

	return pgx.BeginFunc(ctx, r.pool, func(dbTx pgx.Tx) error {
		if err := dbTx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("error adding transactions: %w", err)
		}
		return nil
	})
}

// GetTableTransactions retrieves recent transactions at a table
func (r *PostgresRepository) GetTableTransactions(ctx context.Context, tableID string, limit int) ([]*entities.Transaction, error) {
	return r.query(ctx, selectTransactionsPG+`
	 WHERE table_id = $1
	 ORDER BY timestamp DESC, seq DESC
	 LIMIT $2`, tableID, pgLimit(limit))
}

// GetPlayerTransactions retrieves recent transactions for a seat name
func (r *PostgresRepository) GetPlayerTransactions(ctx context.Context, player string, limit int) ([]*entities.Transaction, error) {
	return r.query(ctx, selectTransactionsPG+`
	 WHERE player = $1
	 ORDER BY timestamp DESC, seq DESC
	 LIMIT $2`, player, pgLimit(limit))
}

// Close closes the pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*entities.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}

	transactions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entities.Transaction, error) {
		var tx entities.Transaction
		var txType string
		err := row.Scan(
			&tx.ID, &tx.TableID, &tx.RoundID, &tx.Player, &tx.Seat, &tx.Hand,
			&tx.Amount, &txType, &tx.BalanceAfter, &tx.Timestamp,
		)
		tx.Type = entities.TransactionType(txType)
		return &tx, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning transactions: %w", err)
	}
	return transactions, nil
}

// pgLimit maps "no limit" onto a NULL LIMIT
func pgLimit(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
