package entities

// DeckSize is the number of cards in one standard deck
const DeckSize = 52

var suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// NewDeck returns the 52 cards of one deck, one of each value and suit,
// in suit order
func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range suits {
		for value := Ace; value <= King; value++ {
			cards = append(cards, NewCard(suit, value))
		}
	}
	return cards
}

// NewDecks returns n decks back to back, unshuffled
func NewDecks(n int) []Card {
	if n < 1 {
		n = 1
	}
	cards := make([]Card, 0, n*DeckSize)
	for i := 0; i < n; i++ {
		cards = append(cards, NewDeck()...)
	}
	return cards
}
