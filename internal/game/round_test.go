package game

import (
	"math"
	"testing"

	"github.com/cardsim/blackjack/internal/deck"
	"github.com/cardsim/blackjack/internal/rules"
	"github.com/cardsim/blackjack/internal/strategy"
)

func basicTable(t *testing.T) *strategy.Table {
	t.Helper()
	table, err := strategy.Basic()
	if err != nil {
		t.Fatal(err)
	}
	return table
}

// playStacked deals the given cards in order: player, dealer upcard, player,
// dealer hole card, then draws.
func playStacked(t *testing.T, r rules.Rules, bet float64, ranks ...deck.Rank) *Result {
	t.Helper()
	cards := make([]deck.Card, len(ranks))
	for i, rank := range ranks {
		cards[i] = card(rank)
	}
	round := NewRound(deck.NewStacked(cards...), basicTable(t), r, nil)
	res, err := round.Play(bet)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func checkConservation(t *testing.T, res *Result) {
	t.Helper()
	sum := 0.0
	for _, hr := range res.Hands {
		sum += hr.Payout
	}
	if math.Abs(sum-res.NetPayout) > 1e-9 {
		t.Errorf("hand payouts sum to %g, NetPayout is %g", sum, res.NetPayout)
	}
}

func TestPlayerNaturalPaysPremium(t *testing.T) {
	res := playStacked(t, rules.Default(), 1,
		deck.Ace, deck.Nine, deck.King, deck.Seven)

	if len(res.Hands) != 1 || res.Hands[0].Outcome != Blackjack {
		t.Fatalf("outcome = %v, want blackjack", res.Hands[0].Outcome)
	}
	if res.NetPayout != 1.5 {
		t.Errorf("NetPayout = %g, want 1.5", res.NetPayout)
	}
	checkConservation(t, res)
}

func TestSixFivePayout(t *testing.T) {
	r := rules.Default()
	r.BlackjackPayout = 1.2
	res := playStacked(t, r, 1,
		deck.Ace, deck.Nine, deck.King, deck.Seven)

	if res.NetPayout != 1.2 {
		t.Errorf("NetPayout = %g, want 1.2", res.NetPayout)
	}
}

func TestDealerNaturalEndsRound(t *testing.T) {
	res := playStacked(t, rules.Default(), 1,
		deck.Ten, deck.Ace, deck.Nine, deck.King)

	if res.Hands[0].Outcome != Loss {
		t.Errorf("outcome = %v, want loss", res.Hands[0].Outcome)
	}
	if res.NetPayout != -1 {
		t.Errorf("NetPayout = %g, want -1", res.NetPayout)
	}
	// Peek settles before any player action.
	if len(res.Hands[0].Hand.Actions) != 0 {
		t.Errorf("player acted against a dealer natural: %v", res.Hands[0].Hand.Actions)
	}
}

func TestBothNaturalsPush(t *testing.T) {
	res := playStacked(t, rules.Default(), 1,
		deck.Ace, deck.Ace, deck.King, deck.King)

	if res.Hands[0].Outcome != Push {
		t.Errorf("outcome = %v, want push", res.Hands[0].Outcome)
	}
	if res.NetPayout != 0 {
		t.Errorf("NetPayout = %g, want 0", res.NetPayout)
	}
}

func TestSurrenderForfeitsHalf(t *testing.T) {
	// Hard 16 vs 10 surrenders under default rules.
	res := playStacked(t, rules.Default(), 2,
		deck.Ten, deck.Ten, deck.Six, deck.Seven)

	if res.Hands[0].Outcome != Surrender {
		t.Fatalf("outcome = %v, want surrender", res.Hands[0].Outcome)
	}
	if res.NetPayout != -1 {
		t.Errorf("NetPayout = %g, want -1", res.NetPayout)
	}
	// No live hand, so the dealer never draws out.
	if len(res.Dealer.Cards) != 2 {
		t.Errorf("dealer drew %d cards after a surrender", len(res.Dealer.Cards)-2)
	}
	checkConservation(t, res)
}

func TestSurrenderDisabledFallsBackToHit(t *testing.T) {
	r := rules.Default()
	r.SurrenderAllowed = false

	// 16 vs 10 hits instead, drawing to 21; dealer stands on 17.
	res := playStacked(t, r, 1,
		deck.Ten, deck.Ten, deck.Six, deck.Seven,
		deck.Five)

	if res.Hands[0].Outcome != Win {
		t.Errorf("outcome = %v, want win", res.Hands[0].Outcome)
	}
	if res.Hands[0].Hand.Total() != 21 {
		t.Errorf("player total = %d, want 21", res.Hands[0].Hand.Total())
	}
}

func TestDoubleDown(t *testing.T) {
	// Hard 11 vs 6 doubles, takes one card, dealer busts.
	res := playStacked(t, rules.Default(), 1,
		deck.Six, deck.Six, deck.Five, deck.Ten,
		deck.Nine, // double card -> 20
		deck.King) // dealer 16 -> bust

	h := res.Hands[0].Hand
	if !h.Doubled {
		t.Fatal("hand was not doubled")
	}
	if len(h.Cards) != 3 {
		t.Errorf("doubled hand has %d cards, want 3", len(h.Cards))
	}
	if res.NetPayout != 2 {
		t.Errorf("NetPayout = %g, want 2 (doubled bet)", res.NetPayout)
	}
	if res.Doubles != 1 {
		t.Errorf("Doubles = %d, want 1", res.Doubles)
	}
	checkConservation(t, res)
}

func TestSplitEights(t *testing.T) {
	// 8,8 vs 6 splits once; both halves stand and the dealer busts.
	res := playStacked(t, rules.Default(), 1,
		deck.Eight, deck.Six, deck.Eight, deck.Ten,
		deck.Ten, deck.Nine, // split hands -> 18 and 17
		deck.King) // dealer 16 -> bust

	if len(res.Hands) != 2 {
		t.Fatalf("got %d hands, want 2", len(res.Hands))
	}
	if res.Splits != 1 {
		t.Errorf("Splits = %d, want 1", res.Splits)
	}
	for i, hr := range res.Hands {
		if !hr.Hand.FromSplit {
			t.Errorf("hand %d not marked FromSplit", i)
		}
		if hr.Outcome != Win {
			t.Errorf("hand %d outcome = %v, want win", i, hr.Outcome)
		}
	}
	if res.NetPayout != 2 {
		t.Errorf("NetPayout = %g, want 2", res.NetPayout)
	}
	if res.TotalWagered != 2 {
		t.Errorf("TotalWagered = %g, want 2", res.TotalWagered)
	}
	checkConservation(t, res)
}

func TestSplitAcesOneCardEach(t *testing.T) {
	res := playStacked(t, rules.Default(), 1,
		deck.Ace, deck.Nine, deck.Ace, deck.Seven,
		deck.Five, deck.King, // one card to each ace
		deck.Two) // dealer 16 -> 18

	if len(res.Hands) != 2 {
		t.Fatalf("got %d hands, want 2", len(res.Hands))
	}
	for i, hr := range res.Hands {
		if len(hr.Hand.Cards) != 2 {
			t.Errorf("split-ace hand %d has %d cards, want exactly 2", i, len(hr.Hand.Cards))
		}
		if !hr.Hand.SplitAces {
			t.Errorf("hand %d not marked SplitAces", i)
		}
	}

	// A+5 (16) loses to 18; A+K is 21, not a natural, and wins 1:1.
	if res.Hands[0].Outcome != Loss {
		t.Errorf("first hand outcome = %v, want loss", res.Hands[0].Outcome)
	}
	if res.Hands[1].Outcome != Win || res.Hands[1].Payout != 1 {
		t.Errorf("second hand = %v %g, want win at even money",
			res.Hands[1].Outcome, res.Hands[1].Payout)
	}
	if res.NetPayout != 0 {
		t.Errorf("NetPayout = %g, want 0", res.NetPayout)
	}
	checkConservation(t, res)
}

func TestResplitCapsAtFourHands(t *testing.T) {
	r := rules.Default()
	r.ResplitPairs = true

	res := playStacked(t, r, 1,
		deck.Eight, deck.Six, deck.Eight, deck.Ten,
		deck.Eight, deck.Eight, // first split draws two more eights
		deck.Ten, deck.Ten, // second split fills both halves
		deck.Ten, deck.Ten, // third split fills both halves
		deck.King) // dealer 16 -> bust

	if len(res.Hands) != rules.MaxSplitHands {
		t.Fatalf("got %d hands, want %d", len(res.Hands), rules.MaxSplitHands)
	}
	if res.Splits != 3 {
		t.Errorf("Splits = %d, want 3", res.Splits)
	}
	for i, hr := range res.Hands {
		if hr.Hand.Total() != 18 {
			t.Errorf("hand %d total = %d, want 18", i, hr.Hand.Total())
		}
	}
	if res.NetPayout != 4 {
		t.Errorf("NetPayout = %g, want 4", res.NetPayout)
	}
	checkConservation(t, res)
}

func TestPostSplitHardFourPlaysOut(t *testing.T) {
	// Splitting 2s and drawing another 2 leaves a hard 4 with resplitting
	// off. The hand hits its way out instead of aborting the round.
	res := playStacked(t, rules.Default(), 1,
		deck.Two, deck.Four, deck.Two, deck.Ten,
		deck.Two, deck.Ten, // halves: 2+2=4 and 2+10=12
		deck.Five, deck.Ten, // hard 4 hits to 9, then to 19
		deck.King) // dealer 14 -> bust

	if len(res.Hands) != 2 {
		t.Fatalf("got %d hands, want 2", len(res.Hands))
	}
	first := res.Hands[0].Hand
	if first.Total() != 19 {
		t.Errorf("first hand total = %d, want 19", first.Total())
	}
	if len(first.Cards) != 4 {
		t.Errorf("first hand has %d cards, want 4", len(first.Cards))
	}
	if res.Hands[1].Hand.Total() != 12 {
		t.Errorf("second hand total = %d, want 12", res.Hands[1].Hand.Total())
	}
	checkConservation(t, res)
}

func TestNoResplitByDefault(t *testing.T) {
	// With resplitting off, a post-split 8,8 is played as hard 16. Against
	// a dealer 6 it stands.
	res := playStacked(t, rules.Default(), 1,
		deck.Eight, deck.Six, deck.Eight, deck.Ten,
		deck.Eight, deck.Eight, // both halves draw another eight
		deck.King) // dealer 16 -> bust

	if len(res.Hands) != 2 {
		t.Fatalf("got %d hands, want 2 with resplitting disabled", len(res.Hands))
	}
	for i, hr := range res.Hands {
		if hr.Hand.Total() != 16 {
			t.Errorf("hand %d total = %d, want 16", i, hr.Hand.Total())
		}
	}
}

func TestBothSplitHalvesMayDouble(t *testing.T) {
	// 8,8 vs 6 splits and both halves draw to 11. With double-after-split
	// on, the half that initiated the split doubles just like its sibling.
	res := playStacked(t, rules.Default(), 1,
		deck.Eight, deck.Six, deck.Eight, deck.Ten,
		deck.Three, deck.Three, // halves: 8+3=11 twice
		deck.Ten, deck.Ten, // both double to 21
		deck.King) // dealer 16 -> bust

	if len(res.Hands) != 2 {
		t.Fatalf("got %d hands, want 2", len(res.Hands))
	}
	for i, hr := range res.Hands {
		if !hr.Hand.Doubled {
			t.Errorf("hand %d not doubled: actions %v", i, hr.Hand.Actions)
		}
		if hr.Hand.Bet != 2 {
			t.Errorf("hand %d bet = %g, want doubled 2", i, hr.Hand.Bet)
		}
		if hr.Hand.Total() != 21 {
			t.Errorf("hand %d total = %d, want 21", i, hr.Hand.Total())
		}
	}
	if res.Doubles != 2 {
		t.Errorf("Doubles = %d, want 2", res.Doubles)
	}
	if res.NetPayout != 4 {
		t.Errorf("NetPayout = %g, want 4", res.NetPayout)
	}
	checkConservation(t, res)
}

func TestDoubleAfterSplitDisabled(t *testing.T) {
	r := rules.Default()
	r.DoubleAfterSplit = false

	// First split hand lands on 11 vs 6; with DAS off it hits instead.
	res := playStacked(t, r, 1,
		deck.Eight, deck.Six, deck.Eight, deck.Ten,
		deck.Three, deck.Ten, // halves: 8+3=11 and 8+10=18
		deck.Seven, // 11 hits to 18
		deck.King)  // dealer 16 -> bust

	h := res.Hands[0].Hand
	if h.Doubled {
		t.Error("hand doubled with double-after-split disabled")
	}
	if h.Bet != 1 {
		t.Errorf("bet = %g, want original 1", h.Bet)
	}
	if h.Total() != 18 {
		t.Errorf("total = %d, want 18", h.Total())
	}
	if res.Doubles != 0 {
		t.Errorf("Doubles = %d, want 0", res.Doubles)
	}
}

func TestPlayerBustLosesImmediately(t *testing.T) {
	// Hard 16 vs 7 hits and busts; the dealer never draws.
	res := playStacked(t, rules.Default(), 1,
		deck.Ten, deck.Seven, deck.Six, deck.Ten,
		deck.King) // 16 -> 26

	if res.Hands[0].Outcome != Bust {
		t.Errorf("outcome = %v, want bust", res.Hands[0].Outcome)
	}
	if res.NetPayout != -1 {
		t.Errorf("NetPayout = %g, want -1", res.NetPayout)
	}
	if len(res.Dealer.Cards) != 2 {
		t.Errorf("dealer drew with every hand busted")
	}
}

func TestPushAtEqualTotals(t *testing.T) {
	// 20 vs dealer 20.
	res := playStacked(t, rules.Default(), 1,
		deck.Ten, deck.Ten, deck.Queen, deck.King)

	if res.Hands[0].Outcome != Push {
		t.Errorf("outcome = %v, want push", res.Hands[0].Outcome)
	}
	if res.NetOutcome() != Push {
		t.Errorf("NetOutcome() = %v, want push", res.NetOutcome())
	}
}

func TestPlayRejectsNonPositiveBet(t *testing.T) {
	round := NewRound(deck.NewStacked(), basicTable(t), rules.Default(), nil)
	if _, err := round.Play(0); err == nil {
		t.Error("expected error for zero bet")
	}
	if _, err := round.Play(-5); err == nil {
		t.Error("expected error for negative bet")
	}
}

func TestNetOutcomeSign(t *testing.T) {
	win := &Result{NetPayout: 0.5}
	if win.NetOutcome() != Win {
		t.Error("positive net should be a win")
	}
	loss := &Result{NetPayout: -0.5}
	if loss.NetOutcome() != Loss {
		t.Error("negative net should be a loss")
	}
	push := &Result{}
	if push.NetOutcome() != Push {
		t.Error("zero net should be a push")
	}
}
