package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadedpez/blackjack/internal/config"
	"github.com/fadedpez/blackjack/internal/logging"
	"github.com/fadedpez/blackjack/pkg/entities"
	"github.com/fadedpez/blackjack/pkg/repositories/game"
	"github.com/fadedpez/blackjack/pkg/repositories/ledger"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Addr:             ":0",
		LogLevel:         "info",
		DataDir:          t.TempDir(),
		Store:            config.StoreMemory,
		StartingChips:    1000,
		AIBet:            10,
		Decks:            6,
		HitSoft17:        true,
		TableIdleTimeout: 1,
		ReapInterval:     1,
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	// Setup
	cfg := testConfig(t)
	seats := 3
	cmd := &ServeCmd{Addr: ":9000", Store: "sqlite", AISeats: &seats}

	// Execute
	err := cmd.apply(cfg)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, config.StoreSQLite, cfg.Store)
	assert.Equal(t, 3, cfg.AISeats)
}

func TestFlagsAreValidated(t *testing.T) {
	cfg := testConfig(t)
	seats := 9
	assert.Error(t, (&ServeCmd{AISeats: &seats}).apply(cfg))
	assert.Error(t, (&ServeCmd{Store: "redis"}).apply(testConfig(t)))
}

func TestTableConfigFromEnvironment(t *testing.T) {
	// Setup
	cfg := testConfig(t)
	cfg.Decks = 2
	cfg.HitSoft17 = false
	cfg.AISeats = 2
	seed := int64(42)

	// Execute
	tcfg := (&ServeCmd{Seed: &seed}).tableConfig(cfg, logging.Discard())

	// Assert
	assert.Equal(t, 2, tcfg.Rules.Decks)
	assert.False(t, tcfg.Rules.HitSoft17)
	assert.Equal(t, 2, tcfg.AISeats)
	require.NotNil(t, tcfg.NewShoe)
	first := tcfg.NewShoe(tcfg.Rules)
	second := tcfg.NewShoe(tcfg.Rules)
	assert.Equal(t, 104, first.Size())
	var a, b []entities.Card
	for i := 0; i < 8; i++ {
		a = append(a, first.Draw())
		b = append(b, second.Draw())
	}
	assert.NotEqual(t, a, b, "tables should not share a shuffle")
	assert.NoError(t, tcfg.Validate())
}

func TestOpenStores(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		st, err := openStores(context.Background(), testConfig(t), logging.Discard())
		require.NoError(t, err)
		defer st.Close(logging.Discard())

		assert.IsType(t, &game.MemoryRepository{}, st.results)
		assert.IsType(t, &ledger.MemoryRepository{}, st.ledger)
		assert.Nil(t, st.search)
	})

	t.Run("sqlite shares one database", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Store = config.StoreSQLite
		st, err := openStores(context.Background(), cfg, logging.Discard())
		require.NoError(t, err)
		defer st.Close(logging.Discard())

		assert.IsType(t, &game.SQLiteRepository{}, st.results)
		assert.IsType(t, &ledger.SQLiteRepository{}, st.ledger)
	})
}
