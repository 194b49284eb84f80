package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/fadedpez/blackjack/internal/logging"
)

// Task represents a scheduled task
type Task struct {
	Name     string
	Interval time.Duration
	Fn       func(context.Context) error
}

// Scheduler runs named tasks on fixed intervals against an injectable clock
type Scheduler struct {
	tasks   []*Task
	running bool
	mutex   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	clock   quartz.Clock
	logger  *logging.Logger
}

// NewScheduler creates a new scheduler. A nil clock uses the real one.
func NewScheduler(clock quartz.Clock, logger *logging.Logger) *Scheduler {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = logging.Default
	}
	return &Scheduler{
		tasks:  make([]*Task, 0),
		clock:  clock,
		logger: logger.WithPrefix("scheduler"),
	}
}

// AddTask adds a task to the scheduler. Tasks added after Start run on the next Start.
func (s *Scheduler) AddTask(name string, interval time.Duration, fn func(context.Context) error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tasks = append(s.tasks, &Task{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
}

// Tasks returns the names of the registered tasks
func (s *Scheduler) Tasks() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	names := make([]string, len(s.tasks))
	for i, task := range s.tasks {
		names[i] = task.Name
	}
	return names
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.runTask(ctx, task)
	}

	s.logger.Info("Scheduler started with %d tasks", len(s.tasks))
}

// Run starts the scheduler and blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start(ctx)
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop stops the scheduler and waits for running tasks to return
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mutex.Unlock()

	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// runTask runs a task at the specified interval
func (s *Scheduler) runTask(ctx context.Context, task *Task) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(task.Interval, "scheduler", task.Name)
	defer ticker.Stop()

	// Run the task immediately on startup
	s.logger.Debug("Running task %s immediately on startup", task.Name)
	s.execute(ctx, task)

	for {
		select {
		case <-ticker.C:
			s.logger.Debug("Running scheduled task: %s", task.Name)
			s.execute(ctx, task)
		case <-ctx.Done():
			s.logger.Debug("Task %s stopped", task.Name)
			return
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, task *Task) {
	if err := task.Fn(ctx); err != nil {
		s.logger.With("task", task.Name).Error("Error running task: %v", err)
	}
}
