package table

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/fadedpez/blackjack/internal/logging"
	"github.com/fadedpez/blackjack/internal/randutil"
	"github.com/fadedpez/blackjack/internal/types"
	"github.com/fadedpez/blackjack/pkg/entities"
	"github.com/fadedpez/blackjack/pkg/repositories/game"
	mock_game "github.com/fadedpez/blackjack/pkg/repositories/game/mock"
	"github.com/fadedpez/blackjack/pkg/repositories/ledger"
	"github.com/fadedpez/blackjack/pkg/services/blackjack"
	"github.com/fadedpez/blackjack/pkg/services/statistics"
)

type ManagerTestSuite struct {
	suite.Suite
	ctx     context.Context
	ctrl    *gomock.Controller
	results *mock_game.MockRepository
	ledger  *ledger.MemoryRepository
	clock   *quartz.Mock
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (s *ManagerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.results = mock_game.NewMockRepository(s.ctrl)
	s.ledger = ledger.NewMemoryRepository()
	s.clock = quartz.NewMock(s.T())
	s.clock.Set(time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC))
}

// cards builds a deck from values, cycling through the suits
func cards(values ...int) []entities.Card {
	out := make([]entities.Card, len(values))
	for i, v := range values {
		out[i] = entities.NewCard(entities.Suit(i%4), v)
	}
	return out
}

// manager builds a manager whose tables deal the given cards in order
func (s *ManagerTestSuite) manager(chips int64, aiSeats int, values ...int) *Manager {
	cfg := DefaultConfig()
	cfg.StartingChips = chips
	cfg.AISeats = aiSeats
	if len(values) > 0 {
		cfg.NewShoe = func(blackjack.Rules) *blackjack.Shoe {
			return blackjack.NewStackedShoe(cards(values...), randutil.New(7))
		}
	}
	m, err := NewManager(cfg,
		WithClock(s.clock),
		WithRecorder(statistics.NewService(s.results, s.clock)),
		WithLedger(s.ledger),
		WithLogger(logging.Discard()),
	)
	s.Require().NoError(err)
	return m
}

func (s *ManagerTestSuite) requireCode(err error, code types.ErrorCode) {
	s.Require().Error(err)
	s.True(types.IsGameError(err, code), "expected %s, got %v", code, err)
}

func (s *ManagerTestSuite) TestConfigValidation() {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no chips", mutate: func(c *Config) { c.StartingChips = 0 }},
		{name: "too many AI seats", mutate: func(c *Config) { c.AISeats = blackjack.MaxPlayers }},
		{name: "negative AI seats", mutate: func(c *Config) { c.AISeats = -1 }},
		{name: "bad rules", mutate: func(c *Config) { c.Rules.Decks = 0 }},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			_, err := NewManager(cfg)
			s.requireCode(err, types.ErrInvalidArgument)
		})
	}
}

func (s *ManagerTestSuite) TestCreateSeatsPlayerAndAI() {
	// Setup
	m := s.manager(200, 2)

	// Execute
	snap, err := m.Create(s.ctx, "")

	// Assert
	s.Require().NoError(err)
	s.NotEmpty(snap.TableID)
	s.Equal(blackjack.StateBetting, snap.GameState)
	s.Require().Len(snap.Players, 3)
	s.Equal("Player-"+snap.TableID[:8], snap.Players[0].Name)
	s.False(snap.Players[0].IsAI)
	s.Equal("AI 2", snap.Players[2].Name)
	s.True(snap.Players[2].IsAI)
	s.Equal(int64(200), snap.PlayerChips)
	s.Equal(1, m.Count())
	s.Equal([]string{snap.TableID}, m.TableIDs())
}

func (s *ManagerTestSuite) TestRoundIsRecordedAndJournaled() {
	// Setup: player 10,10 against dealer 9,8
	m := s.manager(200, 0, 10, 9, 10, 8)
	snap, err := m.Create(s.ctx, "")
	s.Require().NoError(err)
	s.results.EXPECT().SaveRoundResult(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, result *entities.RoundResult) error {
			s.Equal(snap.TableID, result.TableID)
			s.Equal(17, result.DealerScore)
			s.Require().Len(result.Hands, 1)
			s.Equal(entities.OutcomePlayerWins, result.Hands[0].Outcome)
			s.Equal(int64(100), result.Hands[0].Payout)
			s.True(s.clock.Now().Equal(result.CompletedAt))
			return nil
		}).Times(1)

	// Execute
	_, err = m.Bet(s.ctx, snap.TableID, 0, 50)
	s.Require().NoError(err)
	final, err := m.Stand(s.ctx, snap.TableID, 0)
	s.Require().NoError(err)
	// reading state again must not record the round twice
	_, err = m.State(snap.TableID)
	s.Require().NoError(err)

	// Assert
	s.Equal(blackjack.StateGameOver, final.GameState)
	s.Equal(int64(250), final.PlayerChips)

	txs, err := s.ledger.GetTableTransactions(s.ctx, snap.TableID, 0)
	s.Require().NoError(err)
	s.Require().Len(txs, 2)
	s.Equal(entities.TransactionTypePayout, txs[0].Type)
	s.Equal(int64(100), txs[0].Amount)
	s.Equal(int64(250), txs[0].BalanceAfter)
	s.Equal(entities.TransactionTypeBet, txs[1].Type)
	s.Equal(int64(-50), txs[1].Amount)
	s.Equal(int64(150), txs[1].BalanceAfter)
	s.Equal(snap.Players[0].Name, txs[1].Player)
}

func (s *ManagerTestSuite) TestPlayersAreTrackedPerTable() {
	// Setup: every table deals player 10,10 against dealer 9,8
	cfg := DefaultConfig()
	cfg.StartingChips = 200
	cfg.NewShoe = func(blackjack.Rules) *blackjack.Shoe {
		return blackjack.NewStackedShoe(cards(10, 9, 10, 8), randutil.New(7))
	}
	stats := statistics.NewService(game.NewMemoryRepository(), s.clock)
	m, err := NewManager(cfg, WithClock(s.clock), WithRecorder(stats), WithLogger(logging.Discard()))
	s.Require().NoError(err)

	// Execute
	names := make([]string, 0, 3)
	for _, player := range []string{"", "", "  Ann "} {
		snap, err := m.Create(s.ctx, player)
		s.Require().NoError(err)
		_, err = m.Bet(s.ctx, snap.TableID, 0, 50)
		s.Require().NoError(err)
		_, err = m.Stand(s.ctx, snap.TableID, 0)
		s.Require().NoError(err)
		names = append(names, snap.Players[0].Name)
	}

	// Assert
	s.NotEqual(names[0], names[1])
	s.Equal("Ann", names[2])
	for _, name := range names {
		st, err := stats.GetPlayerStatistics(s.ctx, name)
		s.Require().NoError(err)
		s.Equal(1, st.RoundsPlayed, name)
	}
	board, err := stats.GetBlackjackLeaderboard(s.ctx, 1, 10)
	s.Require().NoError(err)
	s.Equal(3, board.TotalPlayers)
}

func (s *ManagerTestSuite) TestPlayerNameValidation() {
	m := s.manager(200, 1)

	_, err := m.Create(s.ctx, strings.Repeat("x", MaxPlayerNameLength+1))
	s.requireCode(err, types.ErrInvalidArgument)

	_, err = m.NewGame(s.ctx, "", "ai 1")
	s.requireCode(err, types.ErrInvalidArgument)
	s.Zero(m.Count())

	// a name given for a running table leaves its seat alone
	snap, err := m.Create(s.ctx, "Bo")
	s.Require().NoError(err)
	next, err := m.NewGame(s.ctx, snap.TableID, "Cy")
	s.Require().NoError(err)
	s.Equal("Bo", next.Players[0].Name)
}

func (s *ManagerTestSuite) TestUnknownTable() {
	m := s.manager(200, 0)

	_, err := m.Hit(s.ctx, "missing", 0)
	s.requireCode(err, types.ErrTableNotFound)

	_, err = m.State("missing")
	s.requireCode(err, types.ErrTableNotFound)

	_, _, err = m.Subscribe("missing")
	s.requireCode(err, types.ErrTableNotFound)
}

func (s *ManagerTestSuite) TestRejectedCommandChangesNothing() {
	// Setup
	m := s.manager(200, 0)
	snap, err := m.Create(s.ctx, "")
	s.Require().NoError(err)

	// Execute
	_, hitErr := m.Hit(s.ctx, snap.TableID, 0)
	_, betErr := m.Bet(s.ctx, snap.TableID, 0, 500)
	_, seatErr := m.Bet(s.ctx, snap.TableID, 3, 10)
	after, err := m.State(snap.TableID)

	// Assert
	s.Require().NoError(err)
	s.requireCode(hitErr, types.ErrInvalidAction)
	s.requireCode(betErr, types.ErrInsufficientFunds)
	s.requireCode(seatErr, types.ErrUnknownSeat)
	s.Equal(snap, after)
	txs, err := s.ledger.GetTableTransactions(s.ctx, snap.TableID, 0)
	s.Require().NoError(err)
	s.Empty(txs)
}

func (s *ManagerTestSuite) TestNewGame() {
	// Setup: player 10,7 against dealer 10,9, twice over
	m := s.manager(200, 0, 10, 10, 7, 9, 10, 10, 7, 9)
	s.results.EXPECT().SaveRoundResult(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	// Execute: an empty ID opens a table
	snap, err := m.NewGame(s.ctx, "", "")
	s.Require().NoError(err)
	tableID := snap.TableID
	_, err = m.Bet(s.ctx, tableID, 0, 20)
	s.Require().NoError(err)

	// Assert: no new game mid-hand
	_, err = m.NewGame(s.ctx, tableID, "")
	s.requireCode(err, types.ErrInvalidAction)

	_, err = m.Stand(s.ctx, tableID, 0)
	s.Require().NoError(err)
	next, err := m.NewGame(s.ctx, tableID, "")
	s.Require().NoError(err)
	s.Equal(tableID, next.TableID)
	s.Equal(blackjack.StateBetting, next.GameState)
	s.Equal(2, next.Round)
	s.Equal(int64(180), next.PlayerChips)

	// a stale ID opens a fresh table
	fresh, err := m.NewGame(s.ctx, "stale", "")
	s.Require().NoError(err)
	s.NotEqual("stale", fresh.TableID)
	s.Equal(2, m.Count())
}

func (s *ManagerTestSuite) TestBrokePlayerIsReseated() {
	// Setup: player 10,7 loses everything to dealer 10,9
	m := s.manager(50, 1, 10, 10, 10, 7, 8, 9)
	s.results.EXPECT().SaveRoundResult(gomock.Any(), gomock.Any()).Return(nil)
	snap, err := m.Create(s.ctx, "")
	s.Require().NoError(err)
	_, err = m.Bet(s.ctx, snap.TableID, 0, 50)
	s.Require().NoError(err)
	over, err := m.Stand(s.ctx, snap.TableID, 0)
	s.Require().NoError(err)
	s.Require().Equal(blackjack.StateGameOver, over.GameState)
	s.Require().Zero(over.PlayerChips)

	// Execute
	next, err := m.NewGame(s.ctx, snap.TableID, "")

	// Assert
	s.Require().NoError(err)
	s.Equal(blackjack.StateBetting, next.GameState)
	s.Equal(int64(50), next.PlayerChips)
	s.Equal(int64(50), next.Players[1].Chips)
}

func (s *ManagerTestSuite) TestSubscribeStreamsSnapshots() {
	// Setup
	m := s.manager(200, 0, 10, 9, 7, 8)
	snap, err := m.Create(s.ctx, "")
	s.Require().NoError(err)

	// Execute
	updates, cancel, err := m.Subscribe(snap.TableID)
	s.Require().NoError(err)
	_, err = m.Bet(s.ctx, snap.TableID, 0, 10)
	s.Require().NoError(err)

	// Assert
	first := <-updates
	s.Equal(blackjack.StateBetting, first.GameState)
	second := <-updates
	s.Equal(blackjack.StatePlaying, second.GameState)
	s.Len(second.Dealer.Hands[0], 1)

	cancel()
	cancel()
	_, open := <-updates
	s.False(open)
}

func (s *ManagerTestSuite) TestSlowSubscriberKeepsLatest() {
	// Setup
	m := s.manager(200, 0)
	snap, err := m.Create(s.ctx, "")
	s.Require().NoError(err)
	updates, cancel, err := m.Subscribe(snap.TableID)
	s.Require().NoError(err)
	defer cancel()

	// Execute: more changes than the buffer holds
	for i := 0; i < subscriberBuffer+3; i++ {
		_, err := m.NewGame(s.ctx, snap.TableID, "")
		s.Require().NoError(err)
	}

	// Assert
	s.Len(updates, subscriberBuffer)
}

func (s *ManagerTestSuite) TestReapIdleTables() {
	// Setup
	m := s.manager(200, 0)
	idle, err := m.Create(s.ctx, "")
	s.Require().NoError(err)
	busy, err := m.Create(s.ctx, "")
	s.Require().NoError(err)
	updates, _, err := m.Subscribe(idle.TableID)
	s.Require().NoError(err)
	<-updates

	s.clock.Advance(20 * time.Minute).MustWait(s.ctx)
	_, err = m.State(busy.TableID)
	s.Require().NoError(err)
	s.clock.Advance(15 * time.Minute).MustWait(s.ctx)

	// Execute
	reaped := m.Reap(30 * time.Minute)

	// Assert
	s.Equal(1, reaped)
	s.Equal(1, m.Count())
	_, err = m.State(idle.TableID)
	s.requireCode(err, types.ErrTableNotFound)
	_, open := <-updates
	s.False(open)
	_, err = m.State(busy.TableID)
	s.NoError(err)
}

func (s *ManagerTestSuite) TestStorageFailuresDoNotFailCommands() {
	// Setup
	m := s.manager(200, 0, 10, 9, 10, 8)
	s.results.EXPECT().SaveRoundResult(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	snap, err := m.Create(s.ctx, "")
	s.Require().NoError(err)
	_, err = m.Bet(s.ctx, snap.TableID, 0, 10)
	s.Require().NoError(err)

	// Execute
	final, err := m.Stand(s.ctx, snap.TableID, 0)

	// Assert
	s.Require().NoError(err)
	s.Equal(blackjack.StateGameOver, final.GameState)
}

func (s *ManagerTestSuite) TestTablesRunConcurrently() {
	// Setup
	m, err := NewManager(DefaultConfig(), WithClock(s.clock), WithLedger(s.ledger), WithLogger(logging.Discard()))
	s.Require().NoError(err)
	const tables, rounds = 8, 15

	// Execute
	var wg sync.WaitGroup
	errs := make(chan error, tables)
	for i := 0; i < tables; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := m.NewGame(s.ctx, "", "")
			if err != nil {
				errs <- err
				return
			}
			for r := 0; r < rounds; r++ {
				if _, err := m.NewGame(s.ctx, snap.TableID, ""); err != nil {
					errs <- fmt.Errorf("new game: %w", err)
					return
				}
				st, err := m.Bet(s.ctx, snap.TableID, 0, 10)
				if err != nil {
					errs <- fmt.Errorf("bet: %w", err)
					return
				}
				for st.GameState == blackjack.StatePlaying {
					if st, err = m.Stand(s.ctx, snap.TableID, 0); err != nil {
						errs <- fmt.Errorf("stand: %w", err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	// Assert
	for err := range errs {
		s.NoError(err)
	}
	s.Equal(tables, m.Count())
	for _, id := range m.TableIDs() {
		snap, err := m.State(id)
		s.Require().NoError(err)
		s.Equal(blackjack.StateGameOver, snap.GameState)
		s.Equal(rounds, snap.Round)
	}
}
