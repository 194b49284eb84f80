package game

import (
	"context"

	"github.com/fadedpez/blackjack/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_game

// Repository stores settled rounds and the per-player statistics derived
// from them. Result lists are most recent first; a limit <= 0 means all.
type Repository interface {
	// SaveRoundResult stores a round and folds it into each player's statistics
	SaveRoundResult(ctx context.Context, result *entities.RoundResult) error

	// Round history
	GetTableResults(ctx context.Context, tableID string, limit int) ([]*entities.RoundResult, error)
	GetPlayerResults(ctx context.Context, player string, limit int) ([]*entities.RoundResult, error)

	// Statistics
	GetPlayerStatistics(ctx context.Context, player string) (*entities.PlayerStatistics, error)
	GetAllPlayerStatistics(ctx context.Context) ([]*entities.PlayerStatistics, error)

	// Close closes any resources used by the repository
	Close() error
}
