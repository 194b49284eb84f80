package blackjack

import (
	"github.com/fadedpez/blackjack/pkg/entities"
)

// DealerName is how the dealer appears in snapshots
const DealerName = "Dealer"

// SeatView is the client-facing copy of a seat
type SeatView struct {
	Name   string            `json:"Name"`
	Hands  [][]entities.Card `json:"Hands"`
	Scores []int             `json:"Scores"`
	Stati  []HandStatus      `json:"Stati"`
	Bets   []int64           `json:"Bets"`
	Chips  int64             `json:"Chips"`
	IsTurn bool              `json:"IsTurn"`
	IsAI   bool              `json:"IsAI"`
}

// Snapshot is the client-facing view of a table. It shares no memory with
// the round, and hides the dealer's hole card while hands are in play.
type Snapshot struct {
	TableID          string     `json:"TableID"`
	RoundID          string     `json:"RoundID"`
	Round            int        `json:"Round"`
	GameState        GameState  `json:"GameState"`
	AvailableActions []Action   `json:"AvailableActions"`
	Dealer           SeatView   `json:"Dealer"`
	Players          []SeatView `json:"Players"`
	ActivePlayer     int        `json:"ActivePlayer"`
	ActiveHand       int        `json:"ActiveHand"`
	PlayerChips      int64      `json:"PlayerChips"`
	ShoeRemaining    int        `json:"ShoeRemaining"`
}

// Snapshot captures the round for clients
func (r *Round) Snapshot(tableID string) Snapshot {
	snap := Snapshot{
		TableID:          tableID,
		RoundID:          r.ID,
		Round:            r.Number,
		GameState:        r.State,
		AvailableActions: LegalActions(r),
		Dealer:           r.dealerView(),
		Players:          make([]SeatView, 0, len(r.Seats)),
		ActivePlayer:     r.ActiveSeat,
		ActiveHand:       r.ActiveHand,
		ShoeRemaining:    r.shoe.Remaining(),
	}
	for _, s := range r.Seats {
		snap.Players = append(snap.Players, seatView(s))
	}
	if len(r.Seats) > 0 {
		snap.PlayerChips = r.Seats[0].Chips
	}
	return snap
}

func seatView(s *Seat) SeatView {
	v := SeatView{
		Name:   s.Name,
		Hands:  make([][]entities.Card, 0, len(s.Hands)),
		Scores: make([]int, 0, len(s.Hands)),
		Stati:  make([]HandStatus, 0, len(s.Hands)),
		Bets:   append(make([]int64, 0, len(s.Bets)), s.Bets...),
		Chips:  s.Chips,
		IsTurn: s.IsTurn,
		IsAI:   s.IsAI,
	}
	for _, h := range s.Hands {
		v.Hands = append(v.Hands, cloneCards(h.Cards))
		v.Scores = append(v.Scores, h.Score().Total)
		v.Stati = append(v.Stati, h.Status)
	}
	return v
}

func (r *Round) dealerView() SeatView {
	cards := r.Dealer.Cards
	if r.State == StatePlaying && len(cards) > 1 {
		cards = cards[:1]
	}
	return SeatView{
		Name:   DealerName,
		Hands:  [][]entities.Card{cloneCards(cards)},
		Scores: []int{Score(cards).Total},
		Stati:  []HandStatus{r.Dealer.Status},
		Bets:   []int64{},
	}
}
