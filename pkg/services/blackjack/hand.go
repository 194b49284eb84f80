package blackjack

import (
	"github.com/fadedpez/blackjack/pkg/entities"
)

// HandStatus represents the current state of a hand
type HandStatus string

const (
	StatusActive     HandStatus = "active"
	StatusStood      HandStatus = "stood"
	StatusBust       HandStatus = "bust"
	StatusBlackjack  HandStatus = "blackjack"
	StatusDoubled    HandStatus = "doubled"
	StatusPlayerWins HandStatus = "player_wins"
	StatusDealerWins HandStatus = "dealer_wins"
	StatusPush       HandStatus = "push"
)

// Terminal reports whether the hand takes no more player input
func (s HandStatus) Terminal() bool {
	return s != StatusActive
}

// Settled reports whether the hand has been paid out
func (s HandStatus) Settled() bool {
	return s == StatusPlayerWins || s == StatusDealerWins || s == StatusPush
}

// Outcome converts a settled status into a result outcome
func (s HandStatus) Outcome() entities.Outcome {
	switch s {
	case StatusPlayerWins:
		return entities.OutcomePlayerWins
	case StatusPush:
		return entities.OutcomePush
	default:
		return entities.OutcomeDealerWins
	}
}

// Hand represents one set of cards in front of a seat or the dealer
type Hand struct {
	Cards  []entities.Card
	Status HandStatus

	split   bool
	doubled bool
}

// NewHand creates a new, empty, active hand
func NewHand() *Hand {
	return &Hand{
		Cards:  make([]entities.Card, 0, 4),
		Status: StatusActive,
	}
}

// Add appends a card to the hand
func (h *Hand) Add(card entities.Card) {
	h.Cards = append(h.Cards, card)
}

// Score evaluates the hand
func (h *Hand) Score() ScoreResult {
	return Score(h.Cards)
}

// IsNatural reports a two-card 21 that didn't come from a split
func (h *Hand) IsNatural() bool {
	return !h.split && h.Score().Blackjack
}

// IsPair reports two cards of the same value
func (h *Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Value == h.Cards[1].Value
}

// IsSplit reports whether the hand came from a split
func (h *Hand) IsSplit() bool {
	return h.split
}

// IsDoubled reports whether the hand was doubled down
func (h *Hand) IsDoubled() bool {
	return h.doubled
}
