package blackjack

import (
	"github.com/fadedpez/blackjack/internal/types"
	"github.com/fadedpez/blackjack/pkg/entities"
)

const (
	StandardDecks   = 6  // Standard number of decks in the shoe
	BlackjackTotal  = 21 // Best possible total
	DealerStandsOn  = 17 // Dealer and AI seats stop drawing here
	MaxPlayers      = 7  // Max number of seats at a table
	MaxHandsPerSeat = 2  // One split per seat
	CutDivisor      = 4  // Reshuffle between rounds once fewer than 1/4 of the shoe remains
)

// Rules holds the table rules a round is played under
type Rules struct {
	Decks     int
	HitSoft17 bool

	// Natural payout ratio on top of the returned bet, 3/2 by default
	BlackjackPayNum int64
	BlackjackPayDen int64

	// Fixed bet placed by AI seats
	AIBet int64
}

// DefaultRules returns six decks, dealer hits soft 17, naturals pay 3:2
func DefaultRules() Rules {
	return Rules{
		Decks:           StandardDecks,
		HitSoft17:       true,
		BlackjackPayNum: 3,
		BlackjackPayDen: 2,
		AIBet:           10,
	}
}

// Validate rejects rules a table can't run with
func (r Rules) Validate() error {
	if r.Decks < 1 {
		return types.NewGameError(types.ErrInvalidArgument, "at least one deck is required")
	}
	if r.BlackjackPayNum <= 0 || r.BlackjackPayDen <= 0 {
		return types.NewGameError(types.ErrInvalidArgument, "blackjack payout ratio must be positive")
	}
	if r.AIBet <= 0 {
		return types.NewGameError(types.ErrInvalidArgument, "AI bet must be positive")
	}
	return nil
}

// BlackjackPayout is what a winning natural returns: the bet plus the ratio,
// truncated to whole chips
func (r Rules) BlackjackPayout(bet int64) int64 {
	return bet + bet*r.BlackjackPayNum/r.BlackjackPayDen
}

// ScoreResult is the evaluation of a set of cards
type ScoreResult struct {
	Total     int
	Soft      bool // an Ace is still counted as 11
	Bust      bool
	Blackjack bool // exactly two cards totalling 21
}

// Score evaluates cards, counting Aces as 11 and demoting them to 1 one at
// a time while the total is over 21
func Score(cards []entities.Card) ScoreResult {
	total := 0
	aces := 0

	for _, card := range cards {
		if card.IsAce() {
			aces++
		}
		total += card.Points()
	}

	for total > BlackjackTotal && aces > 0 {
		total -= 10
		aces--
	}

	return ScoreResult{
		Total:     total,
		Soft:      aces > 0,
		Bust:      total > BlackjackTotal,
		Blackjack: len(cards) == 2 && total == BlackjackTotal,
	}
}

// dealerShouldHit applies the dealer drawing policy
func dealerShouldHit(score ScoreResult, rules Rules) bool {
	if score.Total < DealerStandsOn {
		return true
	}
	return score.Total == DealerStandsOn && score.Soft && rules.HitSoft17
}
