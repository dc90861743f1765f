package game

import (
	"testing"

	"github.com/cardsim/blackjack/internal/deck"
)

func card(rank deck.Rank) deck.Card {
	return deck.NewCard(deck.Spades, rank)
}

func handOf(ranks ...deck.Rank) *Hand {
	h := NewHand(0, 1)
	for _, r := range ranks {
		h.AddCard(card(r))
	}
	return h
}

func TestHandTotals(t *testing.T) {
	tests := []struct {
		name  string
		ranks []deck.Rank
		total int
		soft  bool
	}{
		{"hard 16", []deck.Rank{deck.Ten, deck.Six}, 16, false},
		{"soft 17", []deck.Rank{deck.Ace, deck.Six}, 17, true},
		{"soft 12 two aces", []deck.Rank{deck.Ace, deck.Ace}, 12, true},
		{"ace demoted once", []deck.Rank{deck.Ace, deck.Six, deck.Nine}, 16, false},
		{"both aces demoted", []deck.Rank{deck.Ace, deck.Ace, deck.Ten, deck.Nine}, 21, false},
		{"blackjack total", []deck.Rank{deck.Ace, deck.King}, 21, true},
		{"five card 21", []deck.Rank{deck.Two, deck.Three, deck.Four, deck.Five, deck.Seven}, 21, false},
		{"bust", []deck.Rank{deck.Ten, deck.Nine, deck.Five}, 24, false},
		{"ace saves from bust", []deck.Rank{deck.Ace, deck.Nine, deck.Five}, 15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handOf(tt.ranks...)
			if h.Total() != tt.total {
				t.Errorf("Total() = %d, want %d", h.Total(), tt.total)
			}
			if h.IsSoft() != tt.soft {
				t.Errorf("IsSoft() = %v, want %v", h.IsSoft(), tt.soft)
			}
		})
	}
}

func TestIsBlackjack(t *testing.T) {
	if !handOf(deck.Ace, deck.King).IsBlackjack() {
		t.Error("A+K should be blackjack")
	}
	if handOf(deck.Ace, deck.King, deck.Ten).IsBlackjack() {
		t.Error("three-card 21 is not blackjack")
	}
	if handOf(deck.Ten, deck.Nine).IsBlackjack() {
		t.Error("19 is not blackjack")
	}

	// A two-card 21 on a split hand is just 21.
	split := handOf(deck.Ace, deck.King)
	split.FromSplit = true
	if split.IsBlackjack() {
		t.Error("two-card 21 after a split is not a natural")
	}
	if split.Total() != 21 {
		t.Errorf("split 21 Total() = %d", split.Total())
	}
}

func TestIsPairByRankValue(t *testing.T) {
	tests := []struct {
		name  string
		ranks []deck.Rank
		pair  bool
		key   string
	}{
		{"eights", []deck.Rank{deck.Eight, deck.Eight}, true, "8"},
		{"aces", []deck.Rank{deck.Ace, deck.Ace}, true, "A"},
		{"jack and king pair as tens", []deck.Rank{deck.Jack, deck.King}, true, "10"},
		{"ten and queen pair as tens", []deck.Rank{deck.Ten, deck.Queen}, true, "10"},
		{"mixed values", []deck.Rank{deck.Nine, deck.Ten}, false, ""},
		{"three cards never pair", []deck.Rank{deck.Eight, deck.Eight, deck.Eight}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handOf(tt.ranks...)
			if h.IsPair() != tt.pair {
				t.Errorf("IsPair() = %v, want %v", h.IsPair(), tt.pair)
			}
			if tt.pair && h.PairKey() != tt.key {
				t.Errorf("PairKey() = %q, want %q", h.PairKey(), tt.key)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	h := handOf(deck.Ten, deck.Six)
	if h.Terminal() {
		t.Error("16 should not be terminal")
	}

	h.Stood = true
	if !h.Terminal() {
		t.Error("stood hand should be terminal")
	}

	if !handOf(deck.Ten, deck.Nine, deck.Five).Terminal() {
		t.Error("bust hand should be terminal")
	}
	if !handOf(deck.Ten, deck.Five, deck.Six).Terminal() {
		t.Error("21 should be terminal")
	}

	doubled := handOf(deck.Five, deck.Six, deck.Two)
	doubled.Doubled = true
	if !doubled.Terminal() {
		t.Error("doubled hand should be terminal after its one card")
	}
}
