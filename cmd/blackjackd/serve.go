package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/fadedpez/blackjack/internal/api"
	"github.com/fadedpez/blackjack/internal/config"
	"github.com/fadedpez/blackjack/internal/logging"
	"github.com/fadedpez/blackjack/internal/randutil"
	"github.com/fadedpez/blackjack/pkg/scheduler"
	"github.com/fadedpez/blackjack/pkg/services/blackjack"
	"github.com/fadedpez/blackjack/pkg/services/statistics"
	"github.com/fadedpez/blackjack/pkg/services/table"
)

// ServeCmd runs the server. Flags override the environment.
type ServeCmd struct {
	Addr     string `help:"Listen address (ADDR)"`
	Static   string `help:"Directory of front end files to serve at / (STATIC_DIR)"`
	Store    string `help:"Storage backend: memory, sqlite or postgres (STORE)"`
	LogLevel string `help:"debug, info, warn or error (LOG_LEVEL)"`
	AISeats  *int   `name:"ai-seats" help:"AI seats per table (AI_SEATS)"`
	Seed     *int64 `help:"Deterministic shuffle seed (optional)"`
}

func (c *ServeCmd) apply(cfg *config.Config) error {
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.Static != "" {
		cfg.StaticDir = c.Static
	}
	if c.Store != "" {
		cfg.Store = c.Store
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.AISeats != nil {
		cfg.AISeats = *c.AISeats
	}
	return cfg.Validate()
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := c.apply(cfg); err != nil {
		return err
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))
	logger.Info("Starting blackjackd %s (store=%s, ai_seats=%d, decks=%d)", version, cfg.Store, cfg.AISeats, cfg.Decks)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close(logger)

	clock := quartz.NewReal()
	stats := statistics.NewService(st.results, clock)

	tables, err := table.NewManager(c.tableConfig(cfg, logger),
		table.WithClock(clock),
		table.WithRecorder(stats),
		table.WithLedger(st.ledger),
		table.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer tables.Close()

	sched := scheduler.NewScheduler(clock, logger)
	sched.AddTask("table_reaper", cfg.ReapInterval, func(context.Context) error {
		tables.Reap(cfg.TableIdleTimeout)
		return nil
	})
	if st.search != nil {
		scheduler.NewElasticsearchMaintenance(st.search, clock, logger).Register(sched, 0)
	}

	srv := api.NewServer(api.Options{
		Tables:     tables,
		Statistics: stats,
		Ledger:     st.ledger,
		StaticDir:  cfg.StaticDir,
		Logger:     logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx, cfg.Addr) })
	g.Go(func() error { return sched.Run(gctx) })

	err = g.Wait()
	logger.Info("Shut down")
	return err
}

func (c *ServeCmd) tableConfig(cfg *config.Config, logger *logging.Logger) table.Config {
	rules := blackjack.DefaultRules()
	rules.Decks = cfg.Decks
	rules.HitSoft17 = cfg.HitSoft17
	rules.AIBet = cfg.AIBet

	tcfg := table.Config{
		Rules:         rules,
		StartingChips: cfg.StartingChips,
		AISeats:       cfg.AISeats,
		PlayerName:    table.DefaultPlayerName,
	}

	if c.Seed != nil {
		seed := *c.Seed
		logger.Info("Using deterministic seed %d", seed)
		// each table gets its own generator so tables never share one
		var tablesOpened atomic.Int64
		tcfg.NewShoe = func(rules blackjack.Rules) *blackjack.Shoe {
			return blackjack.NewShoe(rules.Decks, randutil.New(seed+tablesOpened.Add(1)))
		}
	}
	return tcfg
}
