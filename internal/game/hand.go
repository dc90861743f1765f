// Package game implements the blackjack rule engine: hand evaluation, the
// dealer automaton and the round controller with bounded split handling.
package game

import (
	"strconv"
	"strings"

	"github.com/cardsim/blackjack/internal/deck"
	"github.com/cardsim/blackjack/internal/strategy"
)

// Hand is an ordered sequence of dealt cards with derived value state,
// recomputed on every card addition. Slot is the round position (0-3 after
// splits). Bet may be doubled once.
type Hand struct {
	Cards []deck.Card
	Slot  int
	Bet   float64

	Doubled     bool
	Surrendered bool
	FromSplit   bool
	SplitAces   bool
	Stood       bool

	Actions []strategy.Move

	total int
	soft  bool
}

// NewHand creates an empty hand for the given round slot and bet.
func NewHand(slot int, bet float64) *Hand {
	return &Hand{Slot: slot, Bet: bet}
}

// AddCard appends a card and recomputes the hand's value state.
func (h *Hand) AddCard(c deck.Card) {
	h.Cards = append(h.Cards, c)
	h.recompute()
}

// recompute runs the ace-demotion pass: sum with every ace as 11, then
// demote aces one at a time (subtract 10) while the total busts and an ace
// is still counted as 11. Soft means at least one ace survived as 11.
func (h *Hand) recompute() {
	total := 0
	aces := 0
	for _, c := range h.Cards {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	h.total = total
	h.soft = aces > 0
}

// Total returns the best hand total (aces demoted as needed).
func (h *Hand) Total() int {
	return h.total
}

// IsSoft reports whether an ace is currently counted as 11.
func (h *Hand) IsSoft() bool {
	return h.soft
}

// IsBust reports whether the effective total exceeds 21.
func (h *Hand) IsBust() bool {
	return h.total > 21
}

// IsBlackjack reports a natural: exactly two cards totalling 21 on an
// initial, non-split hand. A two-card 21 on a split hand is just 21.
func (h *Hand) IsBlackjack() bool {
	return len(h.Cards) == 2 && h.total == 21 && !h.FromSplit
}

// IsPair reports two cards of equal rank-value (a jack and a king pair up
// as tens).
func (h *Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Value() == h.Cards[1].Value()
}

// PairKey returns the pair-row key for a paired hand ("2".."10", "A").
func (h *Hand) PairKey() string {
	return h.Cards[0].UpcardKey()
}

// Terminal reports whether the hand takes no further decisions.
func (h *Hand) Terminal() bool {
	return h.Stood || h.Doubled || h.Surrendered || h.SplitAces || h.IsBust() || h.total == 21
}

// String renders the hand for trace output, e.g. "T♠ 6♥ (16)".
func (h *Hand) String() string {
	var b strings.Builder
	for i, c := range h.Cards {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.String())
	}
	b.WriteString(" (")
	if h.soft {
		b.WriteString("soft ")
	}
	b.WriteString(strconv.Itoa(h.total))
	b.WriteByte(')')
	return b.String()
}
