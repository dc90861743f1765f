package game

import "github.com/cardsim/blackjack/internal/deck"

// DealerState is the terminal state of the dealer automaton.
type DealerState int

const (
	DealerStanding DealerState = iota
	DealerBust
)

// dealerShouldDraw implements the fixed house policy: draw below 17, and on
// soft 17 only when the rule says so.
func dealerShouldDraw(h *Hand, hitsSoft17 bool) bool {
	if h.Total() < 17 {
		return true
	}
	if h.Total() == 17 && h.IsSoft() && hitsSoft17 {
		return true
	}
	return false
}

// PlayDealer runs the dealer automaton over the dealer's hand, drawing from
// the shoe until the hand stands or busts. It takes no strategy input.
func PlayDealer(h *Hand, shoe *deck.Shoe, hitsSoft17 bool) (DealerState, error) {
	for dealerShouldDraw(h, hitsSoft17) {
		c, err := shoe.Draw()
		if err != nil {
			return DealerBust, err
		}
		h.AddCard(c)
		if h.IsBust() {
			return DealerBust, nil
		}
	}
	return DealerStanding, nil
}
