package blackjack

// Seat is a player position at the table
type Seat struct {
	Name   string
	Chips  int64
	Hands  []*Hand
	Bets   []int64 // one per hand
	IsTurn bool
	IsAI   bool
}

// SeatConfig describes a seat when a table is created
type SeatConfig struct {
	Name  string
	Chips int64
	IsAI  bool
}

// HasBet reports whether the seat is in the current round
func (s *Seat) HasBet() bool {
	return len(s.Bets) > 0
}

// Wagered returns the chips the seat has on the table
func (s *Seat) Wagered() int64 {
	var total int64
	for _, b := range s.Bets {
		total += b
	}
	return total
}

func (s *Seat) clear() {
	s.Hands = nil
	s.Bets = nil
	s.IsTurn = false
}
