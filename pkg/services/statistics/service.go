package statistics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/coder/quartz"

	"github.com/fadedpez/blackjack/internal/types"
	"github.com/fadedpez/blackjack/pkg/entities"
	"github.com/fadedpez/blackjack/pkg/repositories/game"
)

const (
	// DefaultPlayersPerPage is the leaderboard page size when none is given
	DefaultPlayersPerPage = 10
	// DefaultHistoryLimit caps history listings when no limit is given
	DefaultHistoryLimit = 20
	// MaxHistoryLimit caps history listings regardless of the request
	MaxHistoryLimit = 200
)

// Service provides methods for recording rounds and reading player statistics
type Service struct {
	repository game.Repository
	clock      quartz.Clock
}

// NewService creates a new statistics service
func NewService(repository game.Repository, clock quartz.Clock) *Service {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Service{
		repository: repository,
		clock:      clock,
	}
}

// PlayerRank represents a player's statistics with ranking information
type PlayerRank struct {
	*entities.PlayerStatistics
	Rank        int     `json:"rank"`
	NetProfit   int64   `json:"net_profit"`
	WinRate     float64 `json:"win_rate"`
	ProfitRate  float64 `json:"profit_rate"`
	IsTopWinner bool    `json:"is_top_winner"`
	IsTopPlayer bool    `json:"is_top_player"`
}

// BlackjackLeaderboard represents a paginated leaderboard of player statistics
type BlackjackLeaderboard struct {
	Players        []*PlayerRank `json:"players"`
	TotalPlayers   int           `json:"total_players"`
	CurrentPage    int           `json:"current_page"`
	TotalPages     int           `json:"total_pages"`
	PlayersPerPage int           `json:"players_per_page"`
	LastUpdated    time.Time     `json:"last_updated"`
}

// RecordRound stores a settled round; the repository folds it into statistics
func (s *Service) RecordRound(ctx context.Context, result *entities.RoundResult) error {
	if result == nil {
		return types.NewGameError(types.ErrInvalidArgument, "round result is required")
	}
	return s.repository.SaveRoundResult(ctx, result)
}

// GetBlackjackLeaderboard retrieves a paginated leaderboard ranked by net profit
func (s *Service) GetBlackjackLeaderboard(ctx context.Context, page, playersPerPage int) (*BlackjackLeaderboard, error) {
	// Default values
	if page < 1 {
		page = 1
	}
	if playersPerPage < 1 {
		playersPerPage = DefaultPlayersPerPage
	}

	allStats, err := s.repository.GetAllPlayerStatistics(ctx)
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to load statistics", err)
	}

	playerRanks := make([]*PlayerRank, 0, len(allStats))
	for _, stats := range allStats {
		// Skip players with no hands
		if stats.HandsPlayed == 0 {
			continue
		}

		var profitRate float64
		if stats.TotalBet > 0 {
			profitRate = float64(stats.NetProfit()) / float64(stats.TotalBet)
		}

		playerRanks = append(playerRanks, &PlayerRank{
			PlayerStatistics: stats,
			NetProfit:        stats.NetProfit(),
			WinRate:          stats.WinRate(),
			ProfitRate:       profitRate,
		})
	}

	sort.SliceStable(playerRanks, func(i, j int) bool {
		if playerRanks[i].NetProfit != playerRanks[j].NetProfit {
			return playerRanks[i].NetProfit > playerRanks[j].NetProfit
		}
		return playerRanks[i].Player < playerRanks[j].Player
	})

	if len(playerRanks) > 0 {
		playerRanks[0].IsTopWinner = true

		// Most hands played
		mostHandsIdx := 0
		for i := 1; i < len(playerRanks); i++ {
			if playerRanks[i].HandsPlayed > playerRanks[mostHandsIdx].HandsPlayed {
				mostHandsIdx = i
			}
		}
		playerRanks[mostHandsIdx].IsTopPlayer = true
	}

	for i := range playerRanks {
		playerRanks[i].Rank = i + 1
	}

	// Calculate pagination
	totalPlayers := len(playerRanks)
	totalPages := (totalPlayers + playersPerPage - 1) / playersPerPage
	if page > totalPages && totalPages > 0 {
		page = totalPages
	}

	start := (page - 1) * playersPerPage
	end := start + playersPerPage
	if end > totalPlayers {
		end = totalPlayers
	}

	currentPagePlayers := []*PlayerRank{}
	if start < totalPlayers {
		currentPagePlayers = playerRanks[start:end]
	}

	return &BlackjackLeaderboard{
		Players:        currentPagePlayers,
		TotalPlayers:   totalPlayers,
		CurrentPage:    page,
		TotalPages:     totalPages,
		PlayersPerPage: playersPerPage,
		LastUpdated:    s.clock.Now(),
	}, nil
}

// GetPlayerStatistics returns one player's statistics; unknown players have zero stats
func (s *Service) GetPlayerStatistics(ctx context.Context, player string) (*entities.PlayerStatistics, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return nil, types.NewGameError(types.ErrInvalidArgument, "player name is required")
	}
	stats, err := s.repository.GetPlayerStatistics(ctx, player)
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to load statistics", err)
	}
	return stats, nil
}

// GetPlayerHistory returns the most recent rounds a player took part in
func (s *Service) GetPlayerHistory(ctx context.Context, player string, limit int) ([]*entities.RoundResult, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return nil, types.NewGameError(types.ErrInvalidArgument, "player name is required")
	}
	results, err := s.repository.GetPlayerResults(ctx, player, clampLimit(limit))
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to load history", err)
	}
	return results, nil
}

// GetTableHistory returns the most recent rounds played at a table
func (s *Service) GetTableHistory(ctx context.Context, tableID string, limit int) ([]*entities.RoundResult, error) {
	results, err := s.repository.GetTableResults(ctx, tableID, clampLimit(limit))
	if err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "failed to load history", err)
	}
	return results, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
