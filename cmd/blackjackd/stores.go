package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fadedpez/blackjack/internal/config"
	"github.com/fadedpez/blackjack/internal/logging"
	"github.com/fadedpez/blackjack/pkg/repositories/game"
	"github.com/fadedpez/blackjack/pkg/repositories/ledger"
)

// stores holds the repositories the server writes to
type stores struct {
	results game.Repository
	ledger  ledger.Repository
	search  *game.ElasticsearchRepository // nil without ELASTICSEARCH_URL
}

// openStores selects the backends. Round results live in SQLite for both
// sqlite and postgres; postgres moves the chip ledger onto DATABASE_URL.
func openStores(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.Store {
	case config.StoreMemory:
		logger.Info("Using in-memory repositories (data will be lost on restart)")
		st.results = game.NewMemoryRepository()
		st.ledger = ledger.NewMemoryRepository()

	case config.StoreSQLite, config.StorePostgres:
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, err
		}
		dbPath := filepath.Join(cfg.DataDir, "blackjack.db")
		logger.Info("Initializing SQLite repository at %s", dbPath)
		sqliteRepo, err := game.NewSQLiteRepository(dbPath)
		if err != nil {
			return nil, err
		}
		st.results = sqliteRepo

		if cfg.Store == config.StorePostgres {
			logger.Info("Using Postgres for the chip ledger")
			pg, err := ledger.NewPostgresRepository(ctx, cfg.DatabaseURL)
			if err != nil {
				sqliteRepo.Close()
				return nil, err
			}
			st.ledger = pg
		} else {
			st.ledger = ledger.NewSQLiteRepositoryFromDB(sqliteRepo.DB())
		}

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if cfg.ElasticsearchURL != "" {
		esCfg := game.DefaultElasticsearchConfig()
		esCfg.URL = cfg.ElasticsearchURL
		esCfg.IndexPrefix = cfg.ElasticsearchPrefix
		esCfg.Username = cfg.ElasticsearchUser
		esCfg.Password = cfg.ElasticsearchPass

		esRepo, err := game.NewElasticsearchRepository(st.results, esCfg)
		if err != nil {
			// history falls back to the base repository
			logger.Warn("Elasticsearch unavailable, continuing without it: %v", err)
		} else {
			logger.Info("Indexing round results in Elasticsearch at %s", cfg.ElasticsearchURL)
			st.results = esRepo
			st.search = esRepo
		}
	}

	return st, nil
}

// Close closes every repository, logging failures
func (s *stores) Close(logger *logging.Logger) {
	if err := s.ledger.Close(); err != nil {
		logger.Error("Error closing ledger: %v", err)
	}
	if err := s.results.Close(); err != nil {
		logger.Error("Error closing results repository: %v", err)
	}
}
