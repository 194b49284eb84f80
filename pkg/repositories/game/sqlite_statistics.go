package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fadedpez/blackjack/pkg/entities"
)

const selectStatisticsSQL = `
	SELECT player, rounds_played, hands_played, wins, losses, pushes,
	       blackjacks, busts, splits, double_downs, total_bet, total_payout, last_updated
	FROM player_statistics`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStatistics(row rowScanner, stats *entities.PlayerStatistics) error {
	return row.Scan(
		&stats.Player, &stats.RoundsPlayed, &stats.HandsPlayed, &stats.Wins,
		&stats.Losses, &stats.Pushes, &stats.Blackjacks, &stats.Busts,
		&stats.Splits, &stats.DoubleDowns, &stats.TotalBet, &stats.TotalPayout, &stats.LastUpdated,
	)
}

// GetPlayerStatistics retrieves statistics for a specific player
func (r *SQLiteRepository) GetPlayerStatistics(ctx context.Context, player string) (*entities.PlayerStatistics, error) {
	var stats entities.PlayerStatistics
	err := scanStatistics(r.db.QueryRowContext(ctx, selectStatisticsSQL+` WHERE player = ?`, player), &stats)
	if errors.Is(err, sql.ErrNoRows) {
		// Return empty statistics if not found
		return &entities.PlayerStatistics{Player: player}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player statistics: %w", err)
	}
	return &stats, nil
}

// GetAllPlayerStatistics retrieves statistics for all players by net profit
func (r *SQLiteRepository) GetAllPlayerStatistics(ctx context.Context) ([]*entities.PlayerStatistics, error) {
	rows, err := r.db.QueryContext(ctx, selectStatisticsSQL+` ORDER BY (total_payout - total_bet) DESC, player ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query player statistics: %w", err)
	}
	defer rows.Close()

	statsList := []*entities.PlayerStatistics{}
	for rows.Next() {
		var stats entities.PlayerStatistics
		if err := scanStatistics(rows, &stats); err != nil {
			return nil, fmt.Errorf("failed to scan player statistics: %w", err)
		}
		statsList = append(statsList, &stats)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player statistics: %w", err)
	}
	return statsList, nil
}

// updatePlayerStatistics folds a round into every participating player's row
func updatePlayerStatistics(ctx context.Context, tx *sql.Tx, result *entities.RoundResult) error {
	for _, player := range result.Players() {
		var stats entities.PlayerStatistics
		err := scanStatistics(tx.QueryRowContext(ctx, selectStatisticsSQL+` WHERE player = ?`, player), &stats)
		if errors.Is(err, sql.ErrNoRows) {
			stats = entities.PlayerStatistics{Player: player}
		} else if err != nil {
			return fmt.Errorf("failed to get player statistics: %w", err)
		}

		stats.Apply(result)

		_, err = tx.ExecContext(ctx, `
			INSERT INTO player_statistics (
				player, rounds_played, hands_played, wins, losses, pushes,
				blackjacks, busts, splits, double_downs, total_bet, total_payout, last_updated
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(player) DO UPDATE SET
				rounds_played = excluded.rounds_played,
				hands_played = excluded.hands_played,
				wins = excluded.wins,
				losses = excluded.losses,
				pushes = excluded.pushes,
				blackjacks = excluded.blackjacks,
				busts = excluded.busts,
				splits = excluded.splits,
				double_downs = excluded.double_downs,
				total_bet = excluded.total_bet,
				total_payout = excluded.total_payout,
				last_updated = excluded.last_updated`,
			stats.Player, stats.RoundsPlayed, stats.HandsPlayed, stats.Wins, stats.Losses, stats.Pushes,
			stats.Blackjacks, stats.Busts, stats.Splits, stats.DoubleDowns, stats.TotalBet, stats.TotalPayout,
			stats.LastUpdated.UTC())
		if err != nil {
			return fmt.Errorf("failed to update player statistics: %w", err)
		}
	}
	return nil
}
