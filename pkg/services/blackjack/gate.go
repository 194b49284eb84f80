package blackjack

import (
	"github.com/fadedpez/blackjack/internal/types"
)

// Action is a player command
type Action string

const (
	ActionBet        Action = "bet"
	ActionHit        Action = "hit"
	ActionStand      Action = "stand"
	ActionDoubleDown Action = "doubledown"
	ActionSplit      Action = "split"
)

var allActions = []Action{ActionBet, ActionHit, ActionStand, ActionDoubleDown, ActionSplit}

// LegalActions returns what the seat whose turn it is may do. During betting
// that is the first human seat still to bet.
func LegalActions(r *Round) []Action {
	seat := r.turnSeat()
	if seat < 0 {
		return []Action{}
	}
	return LegalActionsFor(r, seat)
}

// LegalActionsFor returns the actions a given seat may take right now
func LegalActionsFor(r *Round, seat int) []Action {
	actions := []Action{}
	if seat < 0 || seat >= len(r.Seats) {
		return actions
	}
	for _, a := range allActions {
		if r.check(seat, a) == nil {
			actions = append(actions, a)
		}
	}
	return actions
}

// check is the single guard for every command; seat must be in range.
// Amount checks for bets happen in Bet.
func (r *Round) check(seat int, action Action) error {
	s := r.Seats[seat]

	if action == ActionBet {
		switch {
		case r.State == StatePlaying:
			return types.NewGameError(types.ErrInvalidAction, "bets are closed while hands are in play")
		case s.IsAI:
			return types.Errorf(types.ErrInvalidAction, "%s bets automatically", s.Name)
		case r.State == StateBetting && s.HasBet():
			return types.Errorf(types.ErrInvalidAction, "%s has already bet this round", s.Name)
		case s.Chips <= 0:
			return types.Errorf(types.ErrInsufficientFunds, "%s has no chips", s.Name)
		}
		return nil
	}

	if r.State != StatePlaying {
		return types.Errorf(types.ErrInvalidAction, "cannot %s while the table is %s", action, r.State)
	}
	if seat != r.ActiveSeat {
		return types.Errorf(types.ErrNoActiveHand, "%s has no hand awaiting a decision", s.Name)
	}

	h := s.Hands[r.ActiveHand]
	bet := s.Bets[r.ActiveHand]
	switch action {
	case ActionHit, ActionStand:
		return nil
	case ActionDoubleDown:
		if len(h.Cards) != 2 {
			return types.NewGameError(types.ErrInvalidAction, "can only double down on the first two cards")
		}
		if s.Chips < bet {
			return types.Errorf(types.ErrInsufficientFunds, "doubling needs %d chips, %s has %d", bet, s.Name, s.Chips)
		}
		return nil
	case ActionSplit:
		if len(s.Hands) >= MaxHandsPerSeat {
			return types.NewGameError(types.ErrInvalidAction, "hand has already been split")
		}
		if !h.IsPair() {
			return types.NewGameError(types.ErrInvalidAction, "can only split two cards of the same value")
		}
		if s.Chips < bet {
			return types.Errorf(types.ErrInsufficientFunds, "splitting needs %d chips, %s has %d", bet, s.Name, s.Chips)
		}
		return nil
	default:
		return types.Errorf(types.ErrInvalidAction, "unknown action %q", action)
	}
}

// turnSeat returns whose turn it is, or -1
func (r *Round) turnSeat() int {
	switch r.State {
	case StatePlaying:
		return r.ActiveSeat
	case StateBetting:
		for i, s := range r.Seats {
			if !s.IsAI && !s.HasBet() && s.Chips > 0 {
				return i
			}
		}
	case StateGameOver:
		for i, s := range r.Seats {
			if !s.IsAI && s.Chips > 0 {
				return i
			}
		}
	}
	return -1
}
