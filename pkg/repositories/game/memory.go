package game

import (
	"context"
	"sort"
	"sync"

	"github.com/fadedpez/blackjack/pkg/entities"
)

// MemoryRepository implements Repository interface with in-memory storage
type MemoryRepository struct {
	mu sync.RWMutex
	// Map of tableID to round results, oldest first
	tableResults map[string][]*entities.RoundResult
	// Map of player name to round results, oldest first
	playerResults map[string][]*entities.RoundResult
	// Map of player name to statistics
	stats map[string]*entities.PlayerStatistics
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tableResults:  make(map[string][]*entities.RoundResult),
		playerResults: make(map[string][]*entities.RoundResult),
		stats:         make(map[string]*entities.PlayerStatistics),
	}
}

// SaveRoundResult stores a round result and updates table, player and statistics views
func (r *MemoryRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tableResults[result.TableID] = append(r.tableResults[result.TableID], result)

	for _, player := range result.Players() {
		r.playerResults[player] = append(r.playerResults[player], result)

		stats, ok := r.stats[player]
		if !ok {
			stats = &entities.PlayerStatistics{Player: player}
			r.stats[player] = stats
		}
		stats.Apply(result)
	}

	return nil
}

// GetTableResults retrieves recent round results for a table
func (r *MemoryRepository) GetTableResults(ctx context.Context, tableID string, limit int) ([]*entities.RoundResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return recentFirst(r.tableResults[tableID], limit), nil
}

// GetPlayerResults retrieves recent round results a player took part in
func (r *MemoryRepository) GetPlayerResults(ctx context.Context, player string, limit int) ([]*entities.RoundResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return recentFirst(r.playerResults[player], limit), nil
}

// GetPlayerStatistics returns a copy of a player's statistics, empty if unknown
func (r *MemoryRepository) GetPlayerStatistics(ctx context.Context, player string) (*entities.PlayerStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats, ok := r.stats[player]
	if !ok {
		return &entities.PlayerStatistics{Player: player}, nil
	}
	copied := *stats
	return &copied, nil
}

// GetAllPlayerStatistics returns every player's statistics by net profit
func (r *MemoryRepository) GetAllPlayerStatistics(ctx context.Context) ([]*entities.PlayerStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*entities.PlayerStatistics, 0, len(r.stats))
	for _, stats := range r.stats {
		copied := *stats
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].NetProfit() != all[j].NetProfit() {
			return all[i].NetProfit() > all[j].NetProfit()
		}
		return all[i].Player < all[j].Player
	})
	return all, nil
}

// Close is a no-op for memory repository since there are no resources to close
func (r *MemoryRepository) Close() error {
	return nil
}

// recentFirst returns up to limit results, newest first
func recentFirst(results []*entities.RoundResult, limit int) []*entities.RoundResult {
	n := len(results)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*entities.RoundResult, 0, n)
	for i := len(results) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, results[i])
	}
	return out
}
