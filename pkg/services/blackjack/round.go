package blackjack

import (
	"time"

	"github.com/google/uuid"

	"github.com/fadedpez/blackjack/internal/types"
	"github.com/fadedpez/blackjack/pkg/entities"
)

// GameState is the phase of the round at a table
type GameState string

const (
	StateBetting  GameState = "betting"
	StatePlaying  GameState = "playing"
	StateGameOver GameState = "game_over"
)

// ChipMovement is one debit or credit applied to a seat
type ChipMovement struct {
	RoundID      string
	Seat         int
	Hand         int
	Player       string
	Type         entities.TransactionType
	Amount       int64 // negative for debits
	BalanceAfter int64
}

// Round is the state machine for one table: betting, dealing, player turns,
// dealer play and settlement, then back to betting. It is the only thing
// that mutates its shoe, dealer and seats and is not safe for concurrent use.
type Round struct {
	ID         string
	Number     int
	State      GameState
	Seats      []*Seat
	Dealer     *Hand
	ActiveSeat int // -1 when no seat is acting
	ActiveHand int

	rules   Rules
	shoe    *Shoe
	journal []ChipMovement
}

// New seats the given players at a fresh table in the betting state
func New(rules Rules, shoe *Shoe, seats []SeatConfig) (*Round, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if shoe == nil {
		return nil, types.NewGameError(types.ErrInvalidArgument, "a shoe is required")
	}
	if len(seats) == 0 || len(seats) > MaxPlayers {
		return nil, types.Errorf(types.ErrInvalidArgument, "a table seats between 1 and %d players", MaxPlayers)
	}

	r := &Round{
		ID:         uuid.New().String(),
		Number:     1,
		State:      StateBetting,
		Dealer:     NewHand(),
		ActiveSeat: -1,
		rules:      rules,
		shoe:       shoe,
	}
	for _, cfg := range seats {
		if cfg.Chips < 0 {
			return nil, types.Errorf(types.ErrInvalidArgument, "%s cannot start with negative chips", cfg.Name)
		}
		r.Seats = append(r.Seats, &Seat{Name: cfg.Name, Chips: cfg.Chips, IsAI: cfg.IsAI})
	}
	return r, nil
}

// Rules returns the rules the table plays under
func (r *Round) Rules() Rules {
	return r.rules
}

// Shoe exposes the table's shoe for inspection
func (r *Round) Shoe() *Shoe {
	return r.shoe
}

// Bet places the opening bet for a seat. At game over it first starts the
// next round. Once every human seat with chips has bet, AI seats bet and the
// cards are dealt.
func (r *Round) Bet(seat int, amount int64) error {
	s, err := r.seat(seat)
	if err != nil {
		return err
	}
	if err := r.check(seat, ActionBet); err != nil {
		return err
	}
	if amount <= 0 {
		return types.Errorf(types.ErrInvalidBetAmount, "bet must be positive, got %d", amount)
	}
	if amount > s.Chips {
		return types.Errorf(types.ErrInsufficientFunds, "bet of %d exceeds %s's %d chips", amount, s.Name, s.Chips)
	}

	if r.State == StateGameOver {
		r.reset()
	}

	s.Chips -= amount
	s.Bets = []int64{amount}
	r.record(seat, 0, entities.TransactionTypeBet, -amount)

	if r.bettingClosed() {
		r.deal()
	}
	return nil
}

// Hit deals one card to the active hand
func (r *Round) Hit(seat int) error {
	if err := r.guard(seat, ActionHit); err != nil {
		return err
	}
	h := r.activeHand()
	h.Add(r.shoe.Draw())
	if h.Score().Bust {
		h.Status = StatusBust
		r.advance()
	}
	return nil
}

// Stand ends the active hand
func (r *Round) Stand(seat int) error {
	if err := r.guard(seat, ActionStand); err != nil {
		return err
	}
	r.activeHand().Status = StatusStood
	r.advance()
	return nil
}

// DoubleDown doubles the active hand's bet, deals exactly one card and ends
// the hand
func (r *Round) DoubleDown(seat int) error {
	if err := r.guard(seat, ActionDoubleDown); err != nil {
		return err
	}
	s := r.Seats[seat]
	hi := r.ActiveHand
	h := s.Hands[hi]
	bet := s.Bets[hi]

	s.Chips -= bet
	s.Bets[hi] += bet
	r.record(seat, hi, entities.TransactionTypeDouble, -bet)

	h.doubled = true
	h.Add(r.shoe.Draw())
	if h.Score().Bust {
		h.Status = StatusBust
	} else {
		h.Status = StatusDoubled
	}
	r.advance()
	return nil
}

// Split moves the second card of a pair into a new hand with an equal bet
// and deals one card to each
func (r *Round) Split(seat int) error {
	if err := r.guard(seat, ActionSplit); err != nil {
		return err
	}
	s := r.Seats[seat]
	h := s.Hands[r.ActiveHand]
	bet := s.Bets[r.ActiveHand]

	s.Chips -= bet
	second := h.Cards[1]
	h.Cards = h.Cards[:1]
	h.split = true

	created := NewHand()
	created.split = true
	created.Add(second)
	s.Hands = append(s.Hands, created)
	s.Bets = append(s.Bets, bet)
	r.record(seat, len(s.Hands)-1, entities.TransactionTypeSplit, -bet)

	h.Add(r.shoe.Draw())
	created.Add(r.shoe.Draw())
	return nil
}

// NewRound clears the finished round and opens betting, keeping chips
func (r *Round) NewRound() error {
	if r.State != StateGameOver {
		return types.Errorf(types.ErrInvalidAction, "cannot start a new round while the table is %s", r.State)
	}
	r.reset()
	return nil
}

// TakeJournal returns the chip movements since the last call and clears them
func (r *Round) TakeJournal() []ChipMovement {
	j := r.journal
	r.journal = nil
	return j
}

// Result describes the settled round, or nil before game over
func (r *Round) Result(tableID string, at time.Time) *entities.RoundResult {
	if r.State != StateGameOver {
		return nil
	}
	dealer := r.Dealer.Score()
	result := &entities.RoundResult{
		TableID:         tableID,
		RoundID:         r.ID,
		CompletedAt:     at,
		DealerCards:     cloneCards(r.Dealer.Cards),
		DealerScore:     dealer.Total,
		DealerBust:      dealer.Bust,
		DealerBlackjack: r.Dealer.IsNatural(),
	}
	for si, s := range r.Seats {
		for hi, h := range s.Hands {
			score := h.Score()
			_, payout := settleHand(h, s.Bets[hi], r.Dealer, r.rules)
			result.Hands = append(result.Hands, &entities.HandResult{
				Player:    s.Name,
				Seat:      si,
				Hand:      hi,
				Cards:     cloneCards(h.Cards),
				Score:     score.Total,
				Bet:       s.Bets[hi],
				Payout:    payout,
				Outcome:   h.Status.Outcome(),
				Blackjack: h.IsNatural(),
				Bust:      score.Bust,
				Split:     h.split,
				Doubled:   h.doubled,
				IsAI:      s.IsAI,
			})
		}
	}
	return result
}

// Reseat replaces every seat's chips, used when the whole table is broke.
// Only allowed between rounds.
func (r *Round) Reseat(chips int64) error {
	if r.State == StatePlaying {
		return types.NewGameError(types.ErrInvalidAction, "cannot reseat during play")
	}
	if r.State == StateGameOver {
		r.reset()
	}
	for _, s := range r.Seats {
		if !s.HasBet() {
			s.Chips = chips
		}
	}
	return nil
}

func (r *Round) seat(i int) (*Seat, error) {
	if i < 0 || i >= len(r.Seats) {
		return nil, types.Errorf(types.ErrUnknownSeat, "no seat %d at this table", i)
	}
	return r.Seats[i], nil
}

func (r *Round) guard(seat int, action Action) error {
	if _, err := r.seat(seat); err != nil {
		return err
	}
	return r.check(seat, action)
}

func (r *Round) activeHand() *Hand {
	return r.Seats[r.ActiveSeat].Hands[r.ActiveHand]
}

func (r *Round) record(seat, hand int, typ entities.TransactionType, amount int64) {
	s := r.Seats[seat]
	r.journal = append(r.journal, ChipMovement{
		RoundID:      r.ID,
		Seat:         seat,
		Hand:         hand,
		Player:       s.Name,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: s.Chips,
	})
}

// bettingClosed is true once at least one human has bet and every other
// human either has bet or has nothing to bet with
func (r *Round) bettingClosed() bool {
	bettors := 0
	for _, s := range r.Seats {
		if s.IsAI {
			continue
		}
		if s.HasBet() {
			bettors++
			continue
		}
		if s.Chips > 0 {
			return false
		}
	}
	return bettors > 0
}

func (r *Round) deal() {
	for i, s := range r.Seats {
		if !s.IsAI || s.HasBet() || s.Chips <= 0 {
			continue
		}
		bet := min(r.rules.AIBet, s.Chips)
		s.Chips -= bet
		s.Bets = []int64{bet}
		r.record(i, 0, entities.TransactionTypeBet, -bet)
	}

	for _, s := range r.Seats {
		if s.HasBet() {
			s.Hands = []*Hand{NewHand()}
		}
	}
	for pass := 0; pass < 2; pass++ {
		for _, s := range r.Seats {
			if s.HasBet() {
				s.Hands[0].Add(r.shoe.Draw())
			}
		}
		r.Dealer.Add(r.shoe.Draw())
	}

	r.State = StatePlaying
	for _, s := range r.Seats {
		if s.HasBet() && s.Hands[0].IsNatural() {
			s.Hands[0].Status = StatusBlackjack
		}
	}

	if r.Dealer.IsNatural() {
		r.finish()
		return
	}
	r.advance()
}

// advance moves the turn to the first hand still awaiting a decision,
// playing AI seats on the way, and finishes the round when none is left
func (r *Round) advance() {
	for {
		r.clearTurn()
		si, hi := r.nextActive()
		if si < 0 {
			r.finish()
			return
		}
		r.ActiveSeat, r.ActiveHand = si, hi
		s := r.Seats[si]
		s.IsTurn = true
		if !s.IsAI {
			return
		}
		playAI(s.Hands[hi], r.shoe)
	}
}

func (r *Round) nextActive() (int, int) {
	for si, s := range r.Seats {
		for hi, h := range s.Hands {
			if !h.Status.Terminal() {
				return si, hi
			}
		}
	}
	return -1, 0
}

func (r *Round) clearTurn() {
	for _, s := range r.Seats {
		s.IsTurn = false
	}
	r.ActiveSeat = -1
	r.ActiveHand = 0
}

// playAI hits below 17 and stands otherwise
func playAI(h *Hand, shoe *Shoe) {
	for h.Score().Total < DealerStandsOn {
		h.Add(shoe.Draw())
	}
	if h.Score().Bust {
		h.Status = StatusBust
	} else {
		h.Status = StatusStood
	}
}

func (r *Round) finish() {
	r.clearTurn()
	if r.dealerMustPlay() {
		for dealerShouldHit(r.Dealer.Score(), r.rules) {
			r.Dealer.Add(r.shoe.Draw())
		}
	}
	switch score := r.Dealer.Score(); {
	case r.Dealer.IsNatural():
		r.Dealer.Status = StatusBlackjack
	case score.Bust:
		r.Dealer.Status = StatusBust
	default:
		r.Dealer.Status = StatusStood
	}

	for si, s := range r.Seats {
		for hi, h := range s.Hands {
			status, payout := settleHand(h, s.Bets[hi], r.Dealer, r.rules)
			h.Status = status
			if payout > 0 {
				s.Chips += payout
				r.record(si, hi, entities.TransactionTypePayout, payout)
			}
		}
	}
	r.State = StateGameOver
}

// dealerMustPlay is false when no hand still depends on the dealer's total:
// every hand is bust or a natural
func (r *Round) dealerMustPlay() bool {
	for _, s := range r.Seats {
		for _, h := range s.Hands {
			if h.Status != StatusBust && !h.IsNatural() {
				return true
			}
		}
	}
	return false
}

// reset discards the table's cards and opens betting on a new round
func (r *Round) reset() {
	for _, s := range r.Seats {
		for _, h := range s.Hands {
			r.shoe.Discard(h.Cards...)
		}
		s.clear()
	}
	r.shoe.Discard(r.Dealer.Cards...)
	r.Dealer = NewHand()
	if r.shoe.NeedsReshuffle() {
		r.shoe.Reshuffle()
	}

	r.ID = uuid.New().String()
	r.Number++
	r.State = StateBetting
	r.ActiveSeat = -1
	r.ActiveHand = 0
}

// cardsOnTable counts cards held in hands, for conservation checks
func (r *Round) cardsOnTable() int {
	n := len(r.Dealer.Cards)
	for _, s := range r.Seats {
		for _, h := range s.Hands {
			n += len(h.Cards)
		}
	}
	return n
}

func cloneCards(cards []entities.Card) []entities.Card {
	out := make([]entities.Card, len(cards))
	copy(out, cards)
	return out
}
