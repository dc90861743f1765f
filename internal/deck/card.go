package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		if r >= Two && r <= Ten {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// Card represents a playing card. Suit never affects value; it is kept for
// debug display and trace output.
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Value returns the blackjack value of the card. Face cards count 10 and
// aces count 11; hand evaluation demotes aces to 1 as needed.
func (c Card) Value() int {
	switch {
	case c.Rank >= Jack && c.Rank <= King:
		return 10
	case c.Rank == Ace:
		return 11
	default:
		return int(c.Rank)
	}
}

// HiLo returns the Hi-Lo count increment for the card:
// +1 for 2-6, 0 for 7-9, -1 for tens, faces and aces.
func (c Card) HiLo() int {
	switch {
	case c.Rank >= Two && c.Rank <= Six:
		return 1
	case c.Rank >= Seven && c.Rank <= Nine:
		return 0
	default:
		return -1
	}
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// UpcardKey returns the strategy-table key for the card when shown as the
// dealer upcard: "2".."10" or "A". Face cards collapse to "10".
func (c Card) UpcardKey() string {
	if c.Rank == Ace {
		return "A"
	}
	if c.Rank >= Ten {
		return "10"
	}
	return fmt.Sprintf("%d", int(c.Rank))
}
