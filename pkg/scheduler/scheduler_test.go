package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/suite"

	"github.com/fadedpez/blackjack/internal/logging"
	"github.com/fadedpez/blackjack/pkg/repositories/game"
)

type SchedulerTestSuite struct {
	suite.Suite
	clock     *quartz.Mock
	scheduler *Scheduler
	ctx       context.Context
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func (s *SchedulerTestSuite) SetupTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	s.T().Cleanup(cancel)
	s.ctx = ctx
	s.clock = quartz.NewMock(s.T())
	s.scheduler = NewScheduler(s.clock, logging.Discard())
}

func (s *SchedulerTestSuite) TearDownTest() {
	s.scheduler.Stop()
}

func (s *SchedulerTestSuite) waitRun(runs <-chan struct{}) {
	select {
	case <-runs:
	case <-s.ctx.Done():
		s.FailNow("task did not run")
	}
}

func (s *SchedulerTestSuite) TestRunsImmediatelyThenOnInterval() {
	// Setup
	runs := make(chan struct{}, 4)
	s.scheduler.AddTask("tick", time.Minute, func(context.Context) error {
		runs <- struct{}{}
		return nil
	})

	// Execute
	s.scheduler.Start(s.ctx)

	// Assert
	s.waitRun(runs)
	s.clock.Advance(time.Minute).MustWait(s.ctx)
	s.waitRun(runs)
	s.clock.Advance(time.Minute).MustWait(s.ctx)
	s.waitRun(runs)
	s.Empty(runs)
}

func (s *SchedulerTestSuite) TestErrorsDoNotStopTask() {
	// Setup
	var calls atomic.Int32
	runs := make(chan struct{}, 4)
	s.scheduler.AddTask("flaky", time.Second, func(context.Context) error {
		calls.Add(1)
		runs <- struct{}{}
		return errors.New("boom")
	})

	// Execute
	s.scheduler.Start(s.ctx)
	s.waitRun(runs)
	s.clock.Advance(time.Second).MustWait(s.ctx)
	s.waitRun(runs)

	// Assert
	s.Equal(int32(2), calls.Load())
}

func (s *SchedulerTestSuite) TestStopCancelsTasks() {
	// Setup
	stopped := make(chan struct{})
	started := make(chan struct{})
	s.scheduler.AddTask("blocking", time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	})
	s.scheduler.Start(s.ctx)
	<-started

	// Execute
	s.scheduler.Stop()

	// Assert
	select {
	case <-stopped:
	default:
		s.Fail("Stop returned before the task finished")
	}
	s.Equal([]string{"blocking"}, s.scheduler.Tasks())
}

type fakePruner struct {
	retention time.Duration
	calls     []time.Time
	deleted   int
	err       error
}

func (f *fakePruner) PruneExpired(_ context.Context, now time.Time) (int, error) {
	f.calls = append(f.calls, now)
	return f.deleted, f.err
}

func (f *fakePruner) GetConfig() game.ElasticsearchConfig {
	return game.ElasticsearchConfig{RetentionPeriod: f.retention}
}

func (s *SchedulerTestSuite) TestMaintenanceRegistersPruning() {
	// Setup
	pruner := &fakePruner{retention: 24 * time.Hour, deleted: 2}
	maintenance := NewElasticsearchMaintenance(pruner, s.clock, logging.Discard())

	// Execute
	registered := maintenance.Register(s.scheduler, 0)
	err := maintenance.pruneExpiredRounds(s.ctx)

	// Assert
	s.True(registered)
	s.NoError(err)
	s.Equal([]string{"index_pruning"}, s.scheduler.Tasks())
	s.Require().Len(pruner.calls, 1)
	s.True(s.clock.Now().Equal(pruner.calls[0]))
}

func (s *SchedulerTestSuite) TestMaintenanceSkippedWithoutRetention() {
	// Setup
	maintenance := NewElasticsearchMaintenance(&fakePruner{}, s.clock, logging.Discard())

	// Execute
	registered := maintenance.Register(s.scheduler, time.Hour)

	// Assert
	s.False(registered)
	s.Empty(s.scheduler.Tasks())
}
