package entities

import "time"

// PlayerStatistics represents aggregated blackjack statistics for a player
type PlayerStatistics struct {
	Player       string    `json:"player"`
	RoundsPlayed int       `json:"rounds_played"`
	HandsPlayed  int       `json:"hands_played"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Pushes       int       `json:"pushes"`
	Blackjacks   int       `json:"blackjacks"`
	Busts        int       `json:"busts"`
	Splits       int       `json:"splits"`
	DoubleDowns  int       `json:"double_downs"`
	TotalBet     int64     `json:"total_bet"`
	TotalPayout  int64     `json:"total_payout"`
	LastUpdated  time.Time `json:"last_updated"`
}

// NetProfit calculates the player's net profit
func (s *PlayerStatistics) NetProfit() int64 {
	return s.TotalPayout - s.TotalBet
}

// WinRate calculates the player's hand win rate as a percentage
func (s *PlayerStatistics) WinRate() float64 {
	if s.HandsPlayed == 0 {
		return 0.0
	}
	return float64(s.Wins) / float64(s.HandsPlayed) * 100.0
}

// Apply folds one round's hands for this player into the statistics
func (s *PlayerStatistics) Apply(result *RoundResult) {
	played := false
	splitCounted := false
	for _, h := range result.Hands {
		if h.Player != s.Player {
			continue
		}
		played = true
		s.HandsPlayed++
		s.TotalBet += h.Bet
		s.TotalPayout += h.Payout
		switch h.Outcome {
		case OutcomePlayerWins:
			s.Wins++
		case OutcomeDealerWins:
			s.Losses++
		case OutcomePush:
			s.Pushes++
		}
		if h.Blackjack {
			s.Blackjacks++
		}
		if h.Bust {
			s.Busts++
		}
		if h.Doubled {
			s.DoubleDowns++
		}
		if h.Split && !splitCounted {
			s.Splits++
			splitCounted = true
		}
	}
	if played {
		s.RoundsPlayed++
		s.LastUpdated = result.CompletedAt
	}
}
