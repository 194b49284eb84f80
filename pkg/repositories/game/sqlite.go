package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fadedpez/blackjack/pkg/db/migrations"
	"github.com/fadedpez/blackjack/pkg/entities"
)

// SQLiteRepository implements the Repository interface using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository and applies the schema
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	// Ensure the directory exists
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// SQLite serialises writers; one connection also keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if err := migrations.NewMigrator(db).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// DB exposes the underlying handle so other repositories can share the file
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

// SaveRoundResult stores a round, its hands and the players' updated statistics
func (r *SQLiteRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dealerCards, err := json.Marshal(result.DealerCards)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO round_results (
			round_id, table_id, completed_at, dealer_cards, dealer_score, dealer_bust, dealer_blackjack
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RoundID, result.TableID, result.CompletedAt.UTC(), string(dealerCards),
		result.DealerScore, result.DealerBust, result.DealerBlackjack)
	if err != nil {
		return fmt.Errorf("failed to insert round result: %w", err)
	}

	for _, h := range result.Hands {
		cards, err := json.Marshal(h.Cards)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO hand_results (
				round_id, player, seat, hand, cards, score, bet, payout, outcome,
				blackjack, bust, split, doubled, is_ai
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.RoundID, h.Player, h.Seat, h.Hand, string(cards), h.Score, h.Bet, h.Payout,
			string(h.Outcome), h.Blackjack, h.Bust, h.Split, h.Doubled, h.IsAI)
		if err != nil {
			return fmt.Errorf("failed to insert hand result: %w", err)
		}
	}

	if err := updatePlayerStatistics(ctx, tx, result); err != nil {
		return err
	}

	return tx.Commit()
}

// GetTableResults retrieves recent round results for a table
func (r *SQLiteRepository) GetTableResults(ctx context.Context, tableID string, limit int) ([]*entities.RoundResult, error) {
	return r.queryRounds(ctx, `
		SELECT round_id, table_id, completed_at, dealer_cards, dealer_score, dealer_bust, dealer_blackjack
		FROM round_results
		WHERE table_id = ?
		ORDER BY completed_at DESC
		LIMIT ?`, tableID, sqlLimit(limit))
}

// GetPlayerResults retrieves recent round results a player took part in
func (r *SQLiteRepository) GetPlayerResults(ctx context.Context, player string, limit int) ([]*entities.RoundResult, error) {
	return r.queryRounds(ctx, `
		SELECT rr.round_id, rr.table_id, rr.completed_at, rr.dealer_cards, rr.dealer_score,
		       rr.dealer_bust, rr.dealer_blackjack
		FROM round_results rr
		WHERE rr.round_id IN (SELECT round_id FROM hand_results WHERE player = ?)
		ORDER BY rr.completed_at DESC
		LIMIT ?`, player, sqlLimit(limit))
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// queryRounds loads round rows and then their hands
func (r *SQLiteRepository) queryRounds(ctx context.Context, query string, args ...interface{}) ([]*entities.RoundResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query round results: %w", err)
	}

	results := []*entities.RoundResult{}
	byID := make(map[string]*entities.RoundResult)
	for rows.Next() {
		var (
			result      entities.RoundResult
			dealerCards string
			completedAt time.Time
		)
		if err := rows.Scan(&result.RoundID, &result.TableID, &completedAt, &dealerCards,
			&result.DealerScore, &result.DealerBust, &result.DealerBlackjack); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan round result: %w", err)
		}
		result.CompletedAt = completedAt
		if err := json.Unmarshal([]byte(dealerCards), &result.DealerCards); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to decode dealer cards: %w", err)
		}
		results = append(results, &result)
		byID[result.RoundID] = &result
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating round results: %w", err)
	}
	rows.Close()

	if len(results) == 0 {
		return results, nil
	}
	if err := r.loadHands(ctx, byID); err != nil {
		return nil, err
	}
	return results, nil
}

// loadHands attaches hand rows to the rounds in byID
func (r *SQLiteRepository) loadHands(ctx context.Context, byID map[string]*entities.RoundResult) error {
	placeholders := make([]string, 0, len(byID))
	args := make([]interface{}, 0, len(byID))
	for id := range byID {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}

	query := `
		SELECT round_id, player, seat, hand, cards, score, bet, payout, outcome,
		       blackjack, bust, split, doubled, is_ai
		FROM hand_results
		WHERE round_id IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY seat, hand`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query hand results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			roundID string
			cards   string
			outcome string
			h       entities.HandResult
		)
		if err := rows.Scan(&roundID, &h.Player, &h.Seat, &h.Hand, &cards, &h.Score, &h.Bet, &h.Payout,
			&outcome, &h.Blackjack, &h.Bust, &h.Split, &h.Doubled, &h.IsAI); err != nil {
			return fmt.Errorf("failed to scan hand result: %w", err)
		}
		if err := json.Unmarshal([]byte(cards), &h.Cards); err != nil {
			return fmt.Errorf("failed to decode hand cards: %w", err)
		}
		h.Outcome = entities.Outcome(outcome)
		if result, ok := byID[roundID]; ok {
			result.Hands = append(result.Hands, &h)
		}
	}

	return rows.Err()
}

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
