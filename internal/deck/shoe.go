package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// CardsPerDeck is the size of a single deck without jokers.
const CardsPerDeck = 52

// ErrShoeExhausted indicates a draw from an empty shoe. Penetration handling
// reshuffles at hand boundaries long before the shoe runs dry, so hitting
// this error means the caller's reshuffle logic is broken. It is fatal.
var ErrShoeExhausted = errors.New("shoe exhausted without pending reshuffle")

// Shoe owns the physical card supply for a session: 1-8 shuffled decks dealt
// through a cursor, or an infinite-deck mode where every draw is an
// independent sample with replacement.
//
// Drawing maintains the Hi-Lo running count in finite mode. Reshuffles are
// never triggered internally; the session loop calls NeedsReshuffle between
// rounds and Reshuffle at hand boundaries only.
type Shoe struct {
	cards       []Card
	next        int
	numDecks    int
	penetration float64
	infinite    bool
	rng         *rand.Rand
	running     int
}

// NewShoe creates a shuffled shoe with the given number of decks and
// penetration fraction. An explicit RNG is required so that sessions own
// independent, reproducible draw streams.
func NewShoe(numDecks int, penetration float64, infinite bool, rng *rand.Rand) (*Shoe, error) {
	if numDecks < 1 || numDecks > 8 {
		return nil, fmt.Errorf("num_decks must be 1-8, got %d", numDecks)
	}
	if penetration <= 0 || penetration > 1 {
		return nil, fmt.Errorf("penetration must be in (0, 1], got %g", penetration)
	}
	if rng == nil {
		return nil, errors.New("shoe requires an explicit RNG")
	}

	s := &Shoe{
		numDecks:    numDecks,
		penetration: penetration,
		infinite:    infinite,
		rng:         rng,
	}
	s.cards = make([]Card, 0, numDecks*CardsPerDeck)
	for d := 0; d < numDecks; d++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}
	if !infinite {
		s.shuffle()
	}
	return s, nil
}

// NewStacked creates a finite shoe that deals the given cards in order.
// Used by tests and trace replays to rig exact deals; never reshuffles
// sensibly, so penetration is pinned to 1.
func NewStacked(cards ...Card) *Shoe {
	stacked := make([]Card, len(cards))
	copy(stacked, cards)
	return &Shoe{
		cards:       stacked,
		numDecks:    (len(cards) + CardsPerDeck - 1) / CardsPerDeck,
		penetration: 1,
	}
}

// shuffle produces a uniform permutation (Fisher-Yates) and resets the
// cursor and count state.
func (s *Shoe) shuffle() {
	s.next = 0
	s.running = 0
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw deals one card. In infinite mode the card is sampled with
// replacement and no count state is kept. In finite mode the running count
// is updated with the card's Hi-Lo increment.
func (s *Shoe) Draw() (Card, error) {
	if s.infinite {
		// Sample the 52-card composition uniformly; multi-deck composition
		// is identical under replacement.
		c := s.cards[s.rng.IntN(CardsPerDeck)]
		s.next++
		return c, nil
	}
	if s.next >= len(s.cards) {
		return Card{}, ErrShoeExhausted
	}
	c := s.cards[s.next]
	s.next++
	s.running += c.HiLo()
	return c, nil
}

// NeedsReshuffle reports whether the penetration threshold has been
// reached. Callers must only act on this between rounds.
func (s *Shoe) NeedsReshuffle() bool {
	if s.infinite {
		return false
	}
	return float64(s.next) >= s.penetration*float64(len(s.cards))
}

// Reshuffle regenerates a uniform permutation of the full composition and
// resets the cards-dealt counter and running count. No-op in infinite mode.
func (s *Shoe) Reshuffle() {
	if s.infinite {
		return
	}
	s.shuffle()
}

// CardsDealt returns the number of cards dealt since the last reshuffle.
func (s *Shoe) CardsDealt() int {
	return s.next
}

// CardsRemaining returns the number of undealt cards. Meaningless in
// infinite mode, where it returns the full composition size.
func (s *Shoe) CardsRemaining() int {
	if s.infinite {
		return len(s.cards)
	}
	return len(s.cards) - s.next
}

// Infinite reports whether the shoe is in continuous-shuffle mode.
func (s *Shoe) Infinite() bool {
	return s.infinite
}

// RunningCount returns the Hi-Lo running count. Always zero in infinite mode.
func (s *Shoe) RunningCount() int {
	if s.infinite {
		return 0
	}
	return s.running
}

// TrueCount returns the running count divided by decks remaining. The
// estimate clamps at a quarter deck so a nearly-dealt shoe does not blow
// the ratio up. Undefined (zero) in infinite mode; count-based betting
// rejects infinite shoes at configuration time.
func (s *Shoe) TrueCount() float64 {
	if s.infinite {
		return 0
	}
	decksLeft := float64(s.CardsRemaining()) / CardsPerDeck
	if decksLeft < 0.25 {
		decksLeft = 0.25
	}
	return float64(s.running) / decksLeft
}
