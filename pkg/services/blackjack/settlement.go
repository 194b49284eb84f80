package blackjack

// settleHand decides a finished hand against the dealer and returns its
// final status and the chips paid back to the seat (0 on a loss)
func settleHand(h *Hand, bet int64, dealer *Hand, rules Rules) (HandStatus, int64) {
	player := h.Score()
	house := dealer.Score()

	switch {
	case player.Bust:
		return StatusDealerWins, 0
	case h.IsNatural():
		if dealer.IsNatural() {
			return StatusPush, bet
		}
		return StatusPlayerWins, rules.BlackjackPayout(bet)
	case dealer.IsNatural():
		return StatusDealerWins, 0
	case house.Bust:
		return StatusPlayerWins, bet * 2
	case player.Total > house.Total:
		return StatusPlayerWins, bet * 2
	case player.Total == house.Total:
		return StatusPush, bet
	default:
		return StatusDealerWins, 0
	}
}
