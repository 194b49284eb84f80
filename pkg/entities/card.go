package entities

import "fmt"

// Suit represents a card suit. The numeric values are part of the wire
// format: the browser client indexes its suit symbols with them.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitSymbols = [...]string{"♠", "♥", "♦", "♣"}

// String returns the suit symbol
func (s Suit) String() string {
	if s < Spades || s > Clubs {
		return "?"
	}
	return suitSymbols[s]
}

// Card values. Numeric cards use their face value.
const (
	Ace   = 1
	Jack  = 11
	Queen = 12
	King  = 13
)

var valueNames = [...]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Card represents a playing card
type Card struct {
	Suit  Suit
	Value int
}

// NewCard creates a new card
func NewCard(suit Suit, value int) Card {
	return Card{Suit: suit, Value: value}
}

// IsAce reports whether the card is an Ace
func (c Card) IsAce() bool {
	return c.Value == Ace
}

// Points returns the blackjack value of the card with Aces counted high
func (c Card) Points() int {
	switch {
	case c.Value == Ace:
		return 11
	case c.Value >= Jack:
		return 10
	default:
		return c.Value
	}
}

// Valid reports whether the card has a known suit and value
func (c Card) Valid() bool {
	return c.Suit >= Spades && c.Suit <= Clubs && c.Value >= Ace && c.Value <= King
}

// String returns the string representation of the card
func (c Card) String() string {
	if !c.Valid() {
		return fmt.Sprintf("%d/%d", c.Value, c.Suit)
	}
	return valueNames[c.Value] + c.Suit.String()
}
