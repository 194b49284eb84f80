package entities

import "time"

// Outcome is the settled result of one hand
type Outcome string

const (
	OutcomePlayerWins Outcome = "player_wins"
	OutcomeDealerWins Outcome = "dealer_wins"
	OutcomePush       Outcome = "push"
)

// IsWin returns true if the player won the hand
func (o Outcome) IsWin() bool {
	return o == OutcomePlayerWins
}

// RoundResult is the record of one settled round at a table
type RoundResult struct {
	TableID         string        `json:"table_id"`
	RoundID         string        `json:"round_id"`
	CompletedAt     time.Time     `json:"completed_at"`
	DealerCards     []Card        `json:"dealer_cards"`
	DealerScore     int           `json:"dealer_score"`
	DealerBust      bool          `json:"dealer_bust"`
	DealerBlackjack bool          `json:"dealer_blackjack"`
	Hands           []*HandResult `json:"hands"`
}

// HandResult is the outcome of a single player hand in a round
type HandResult struct {
	Player    string  `json:"player"`
	Seat      int     `json:"seat"`
	Hand      int     `json:"hand"`
	Cards     []Card  `json:"cards"`
	Score     int     `json:"score"`
	Bet       int64   `json:"bet"`
	Payout    int64   `json:"payout"`
	Outcome   Outcome `json:"outcome"`
	Blackjack bool    `json:"blackjack"`
	Bust      bool    `json:"bust"`
	Split     bool    `json:"split"`
	Doubled   bool    `json:"doubled"`
	IsAI      bool    `json:"is_ai"`
}

// Players returns the distinct player names in seat order
func (r *RoundResult) Players() []string {
	seen := make(map[string]bool)
	names := make([]string, 0, len(r.Hands))
	for _, h := range r.Hands {
		if seen[h.Player] {
			continue
		}
		seen[h.Player] = true
		names = append(names, h.Player)
	}
	return names
}
