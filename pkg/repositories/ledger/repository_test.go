package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fadedpez/blackjack/pkg/entities"
	"github.com/fadedpez/blackjack/pkg/repositories/game"
)

var baseTime = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

// RepositoryTestSuite runs the same contract against every backend
type RepositoryTestSuite struct {
	suite.Suite
	newRepo func() Repository
	repo    Repository
	ctx     context.Context
	table   string
}

func TestMemoryRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func() Repository { return NewMemoryRepository() }})
}

func TestSQLiteRepository(t *testing.T) {
	s := &RepositoryTestSuite{}
	s.newRepo = func() Repository {
		repo, err := NewSQLiteRepository(filepath.Join(s.T().TempDir(), "data", "ledger.db"))
		s.Require().NoError(err)
		return repo
	}
	suite.Run(t, s)
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	s := &RepositoryTestSuite{}
	s.newRepo = func() Repository {
		repo, err := NewPostgresRepository(context.Background(), dsn)
		s.Require().NoError(err)
		return repo
	}
	suite.Run(t, s)
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.newRepo()
	// unique per test so a shared postgres database stays isolated
	s.table = uuid.NewString()
}

func (s *RepositoryTestSuite) TearDownTest() {
	s.Require().NoError(s.repo.Close())
}

func (s *RepositoryTestSuite) tx(player string, typ entities.TransactionType, amount, balance int64, offset time.Duration) *entities.Transaction {
	return &entities.Transaction{
		TableID:      s.table,
		RoundID:      "r1",
		Player:       player,
		Seat:         0,
		Amount:       amount,
		Type:         typ,
		BalanceAfter: balance,
		Timestamp:    baseTime.Add(offset),
	}
}

func (s *RepositoryTestSuite) TestAddAssignsIDs() {
	// Setup
	bet := s.tx("Ann", entities.TransactionTypeBet, -10, 90, 0)
	bet.Timestamp = time.Time{}

	// Execute
	err := s.repo.AddTransactions(s.ctx, []*entities.Transaction{bet})

	// Assert
	s.Require().NoError(err)
	s.NotEmpty(bet.ID)
	s.False(bet.Timestamp.IsZero())
}

func (s *RepositoryTestSuite) TestTableTransactionsNewestFirst() {
	// Setup
	s.Require().NoError(s.repo.AddTransactions(s.ctx, []*entities.Transaction{
		s.tx("Ann", entities.TransactionTypeBet, -10, 90, 0),
		s.tx("Ann", entities.TransactionTypeDouble, -10, 80, time.Second),
	}))
	s.Require().NoError(s.repo.AddTransactions(s.ctx, []*entities.Transaction{
		s.tx("Ann", entities.TransactionTypePayout, 40, 120, 2*time.Second),
	}))

	// Execute
	all, err := s.repo.GetTableTransactions(s.ctx, s.table, 0)
	s.Require().NoError(err)
	limited, err := s.repo.GetTableTransactions(s.ctx, s.table, 2)
	s.Require().NoError(err)

	// Assert
	s.Require().Len(all, 3)
	s.Equal(entities.TransactionTypePayout, all[0].Type)
	s.Equal(int64(40), all[0].Amount)
	s.Equal(int64(120), all[0].BalanceAfter)
	s.True(baseTime.Add(2 * time.Second).Equal(all[0].Timestamp))
	s.Equal(entities.TransactionTypeBet, all[2].Type)
	s.Len(limited, 2)
	s.Equal(entities.TransactionTypeDouble, limited[1].Type)
}

func (s *RepositoryTestSuite) TestPlayerTransactions() {
	// Setup
	player := "P-" + s.table
	s.Require().NoError(s.repo.AddTransactions(s.ctx, []*entities.Transaction{
		s.tx(player, entities.TransactionTypeBet, -10, 90, 0),
		s.tx("Someone else", entities.TransactionTypeBet, -20, 80, time.Second),
		s.tx(player, entities.TransactionTypeSplit, -10, 80, 2*time.Second),
	}))

	// Execute
	txs, err := s.repo.GetPlayerTransactions(s.ctx, player, 10)

	// Assert
	s.Require().NoError(err)
	s.Require().Len(txs, 2)
	s.Equal(entities.TransactionTypeSplit, txs[0].Type)
	for _, tx := range txs {
		s.Equal(player, tx.Player)
	}
}

func (s *RepositoryTestSuite) TestEmptyResults() {
	// Execute
	txs, err := s.repo.GetTableTransactions(s.ctx, "missing-"+s.table, 5)

	// Assert
	s.Require().NoError(err)
	s.NotNil(txs)
	s.Empty(txs)
	s.NoError(s.repo.AddTransactions(s.ctx, nil))
}

func TestSharedSQLiteDatabase(t *testing.T) {
	// Setup
	results, err := game.NewSQLiteRepository(filepath.Join(t.TempDir(), "game.db"))
	require.NoError(t, err)
	defer results.Close()
	repo := NewSQLiteRepositoryFromDB(results.DB())

	// Execute
	err = repo.AddTransactions(context.Background(), []*entities.Transaction{
		{TableID: "t1", RoundID: "r1", Player: "Ann", Amount: -10, Type: entities.TransactionTypeBet, BalanceAfter: 90},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Assert
	txs, err := repo.GetTableTransactions(context.Background(), "t1", 0)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
