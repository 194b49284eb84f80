package scheduler

import (
	"context"
	"time"

	"github.com/coder/quartz"

	"github.com/fadedpez/blackjack/internal/logging"
	"github.com/fadedpez/blackjack/pkg/repositories/game"
)

// DefaultPruneInterval is how often expired rounds are removed from the index
const DefaultPruneInterval = 24 * time.Hour

// RoundPruner removes indexed rounds that are past retention
type RoundPruner interface {
	PruneExpired(ctx context.Context, now time.Time) (int, error)
	GetConfig() game.ElasticsearchConfig
}

// ElasticsearchMaintenance registers index upkeep on a scheduler
type ElasticsearchMaintenance struct {
	repo   RoundPruner
	clock  quartz.Clock
	logger *logging.Logger
}

// NewElasticsearchMaintenance creates the maintenance tasks for an Elasticsearch repository
func NewElasticsearchMaintenance(repo RoundPruner, clock quartz.Clock, logger *logging.Logger) *ElasticsearchMaintenance {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = logging.Default
	}
	return &ElasticsearchMaintenance{repo: repo, clock: clock, logger: logger.WithPrefix("es-maintenance")}
}

// Register adds the pruning task. Nothing is scheduled without a retention period.
func (m *ElasticsearchMaintenance) Register(s *Scheduler, interval time.Duration) bool {
	if m.repo.GetConfig().RetentionPeriod <= 0 {
		return false
	}
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	s.AddTask("index_pruning", interval, m.pruneExpiredRounds)
	return true
}

// pruneExpiredRounds deletes rounds older than the retention period
func (m *ElasticsearchMaintenance) pruneExpiredRounds(ctx context.Context) error {
	deleted, err := m.repo.PruneExpired(ctx, m.clock.Now())
	if err != nil {
		return err
	}
	if deleted > 0 {
		m.logger.Info("Pruned %d expired rounds", deleted)
	}
	return nil
}
