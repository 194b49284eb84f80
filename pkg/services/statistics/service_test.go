package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/fadedpez/blackjack/internal/types"
	"github.com/fadedpez/blackjack/pkg/entities"
	mock_game "github.com/fadedpez/blackjack/pkg/repositories/game/mock"
)

type ServiceTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	repo    *mock_game.MockRepository
	clock   *quartz.Mock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = mock_game.NewMockRepository(s.ctrl)
	s.clock = quartz.NewMock(s.T())
	s.clock.Set(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	s.service = NewService(s.repo, s.clock)
	s.ctx = context.Background()
}

func stats(name string, hands, wins int, bet, payout int64) *entities.PlayerStatistics {
	return &entities.PlayerStatistics{
		Player:      name,
		HandsPlayed: hands,
		Wins:        wins,
		TotalBet:    bet,
		TotalPayout: payout,
	}
}

func (s *ServiceTestSuite) TestLeaderboardRanksByNetProfit() {
	// Setup
	s.repo.EXPECT().GetAllPlayerStatistics(gomock.Any()).Return([]*entities.PlayerStatistics{
		stats("Bob", 10, 3, 100, 80),
		stats("Ann", 4, 3, 40, 90),
		stats("Idle", 0, 0, 0, 0),
		stats("Cat", 20, 10, 200, 200),
	}, nil)

	// Execute
	board, err := s.service.GetBlackjackLeaderboard(s.ctx, 1, 10)

	// Assert
	s.Require().NoError(err)
	s.Equal(3, board.TotalPlayers)
	s.Require().Len(board.Players, 3)
	s.Equal("Ann", board.Players[0].Player)
	s.Equal(int64(50), board.Players[0].NetProfit)
	s.InDelta(1.25, board.Players[0].ProfitRate, 0.0001)
	s.InDelta(75.0, board.Players[0].WinRate, 0.0001)
	s.True(board.Players[0].IsTopWinner)
	s.Equal("Cat", board.Players[1].Player)
	s.True(board.Players[1].IsTopPlayer)
	s.Equal("Bob", board.Players[2].Player)
	s.Equal(3, board.Players[2].Rank)
	s.True(s.clock.Now().Equal(board.LastUpdated))
}

func (s *ServiceTestSuite) TestLeaderboardPagination() {
	testCases := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPages   int
		wantPlayers []string
	}{
		{name: "first page", page: 1, perPage: 2, wantPage: 1, wantPages: 2, wantPlayers: []string{"A", "B"}},
		{name: "last page", page: 2, perPage: 2, wantPage: 2, wantPages: 2, wantPlayers: []string{"C"}},
		{name: "past the end clamps", page: 9, perPage: 2, wantPage: 2, wantPages: 2, wantPlayers: []string{"C"}},
		{name: "defaults", page: 0, perPage: 0, wantPage: 1, wantPages: 1, wantPlayers: []string{"A", "B", "C"}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			// Setup
			s.repo.EXPECT().GetAllPlayerStatistics(gomock.Any()).Return([]*entities.PlayerStatistics{
				stats("C", 1, 0, 10, 0),
				stats("A", 1, 1, 10, 30),
				stats("B", 1, 1, 10, 20),
			}, nil)

			// Execute
			board, err := s.service.GetBlackjackLeaderboard(s.ctx, tc.page, tc.perPage)

			// Assert
			s.Require().NoError(err)
			s.Equal(tc.wantPage, board.CurrentPage)
			s.Equal(tc.wantPages, board.TotalPages)
			names := make([]string, 0, len(board.Players))
			for _, p := range board.Players {
				names = append(names, p.Player)
			}
			s.Equal(tc.wantPlayers, names)
		})
	}
}

func (s *ServiceTestSuite) TestLeaderboardEmpty() {
	// Setup
	s.repo.EXPECT().GetAllPlayerStatistics(gomock.Any()).Return(nil, nil)

	// Execute
	board, err := s.service.GetBlackjackLeaderboard(s.ctx, 1, 10)

	// Assert
	s.Require().NoError(err)
	s.NotNil(board.Players)
	s.Empty(board.Players)
	s.Zero(board.TotalPages)
}

func (s *ServiceTestSuite) TestRepositoryErrorsAreWrapped() {
	// Setup
	s.repo.EXPECT().GetAllPlayerStatistics(gomock.Any()).Return(nil, errors.New("db down"))

	// Execute
	_, err := s.service.GetBlackjackLeaderboard(s.ctx, 1, 10)

	// Assert
	s.True(types.IsGameError(err, types.ErrDatabaseError))
}

func (s *ServiceTestSuite) TestPlayerStatistics() {
	// Setup
	s.repo.EXPECT().GetPlayerStatistics(gomock.Any(), "Ann").Return(stats("Ann", 2, 1, 20, 20), nil)

	// Execute
	got, err := s.service.GetPlayerStatistics(s.ctx, " Ann ")
	_, blankErr := s.service.GetPlayerStatistics(s.ctx, "  ")

	// Assert
	s.Require().NoError(err)
	s.Equal(2, got.HandsPlayed)
	s.True(types.IsGameError(blankErr, types.ErrInvalidArgument))
}

func (s *ServiceTestSuite) TestHistoryLimits() {
	// Setup
	s.repo.EXPECT().GetPlayerResults(gomock.Any(), "Ann", DefaultHistoryLimit).Return([]*entities.RoundResult{}, nil)
	s.repo.EXPECT().GetTableResults(gomock.Any(), "t1", MaxHistoryLimit).Return([]*entities.RoundResult{{RoundID: "r1"}}, nil)

	// Execute
	_, err := s.service.GetPlayerHistory(s.ctx, "Ann", 0)
	s.Require().NoError(err)
	rounds, err := s.service.GetTableHistory(s.ctx, "t1", 5000)

	// Assert
	s.Require().NoError(err)
	s.Len(rounds, 1)
}

func (s *ServiceTestSuite) TestRecordRound() {
	// Setup
	result := &entities.RoundResult{TableID: "t1", RoundID: "r1"}
	s.repo.EXPECT().SaveRoundResult(gomock.Any(), result).Return(nil)

	// Execute
	err := s.service.RecordRound(s.ctx, result)
	nilErr := s.service.RecordRound(s.ctx, nil)

	// Assert
	s.NoError(err)
	s.True(types.IsGameError(nilErr, types.ErrInvalidArgument))
}
