package blackjack

import (
	rand "math/rand/v2"

	"github.com/fadedpez/blackjack/internal/randutil"
	"github.com/fadedpez/blackjack/pkg/entities"
)

// Shoe is the table's supply of cards plus its discard pile. Every card the
// shoe has ever handed out is either still in it, in the discard pile, or in
// a hand.
type Shoe struct {
	cards   []entities.Card // next card is cards[0]
	discard []entities.Card
	size    int
	cut     int // reshuffle between rounds below this many cards; 0 disables
	rng     *rand.Rand
}

// NewShoe builds a shuffled shoe of the given number of decks. A nil rng
// gets a time-seeded one.
func NewShoe(decks int, rng *rand.Rand) *Shoe {
	if rng == nil {
		rng = randutil.NewTimeSeeded()
	}
	cards := entities.NewDecks(decks)
	s := &Shoe{
		cards: cards,
		size:  len(cards),
		cut:   len(cards) / CutDivisor,
		rng:   rng,
	}
	s.shuffle()
	return s
}

// NewStackedShoe builds a shoe that deals cards in the given order. It never
// reshuffles between rounds; once exhausted it falls back to the discard pile
// like any other shoe.
func NewStackedShoe(cards []entities.Card, rng *rand.Rand) *Shoe {
	if rng == nil {
		rng = randutil.New(0)
	}
	stacked := make([]entities.Card, len(cards))
	copy(stacked, cards)
	return &Shoe{
		cards: stacked,
		size:  len(stacked),
		rng:   rng,
	}
}

// Draw takes the next card. An empty shoe first takes back the discard pile
// and reshuffles; if that is empty too every card is on the table and a fresh
// deck joins the shoe.
func (s *Shoe) Draw() entities.Card {
	if len(s.cards) == 0 {
		if len(s.discard) == 0 {
			s.cards = entities.NewDeck()
			s.size += entities.DeckSize
			if s.cut > 0 {
				s.cut = s.size / CutDivisor
			}
			s.shuffle()
		} else {
			s.Reshuffle()
		}
	}
	card := s.cards[0]
	s.cards = s.cards[1:]
	return card
}

// Discard puts cards on the discard pile
func (s *Shoe) Discard(cards ...entities.Card) {
	s.discard = append(s.discard, cards...)
}

// Reshuffle folds the discard pile back into the shoe and shuffles it
func (s *Shoe) Reshuffle() {
	remaining := make([]entities.Card, 0, len(s.cards)+len(s.discard))
	remaining = append(remaining, s.cards...)
	remaining = append(remaining, s.discard...)
	s.cards = remaining
	s.discard = nil
	s.shuffle()
}

// NeedsReshuffle reports whether the shoe has passed its cut point
func (s *Shoe) NeedsReshuffle() bool {
	return len(s.cards) < s.cut
}

// Remaining returns the number of undealt cards
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// DiscardCount returns the size of the discard pile
func (s *Shoe) DiscardCount() int {
	return len(s.discard)
}

// Size returns the number of cards the shoe is responsible for
func (s *Shoe) Size() int {
	return s.size
}

func (s *Shoe) shuffle() {
	s.rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
}
