package game

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/cardsim/blackjack/internal/deck"
	"github.com/cardsim/blackjack/internal/rules"
	"github.com/cardsim/blackjack/internal/strategy"
)

// Outcome classifies the settlement of a single player hand.
type Outcome int

const (
	Win Outcome = iota
	Loss
	Push
	Blackjack // natural 21, premium payout
	Bust      // player bust, loses before the dealer acts
	Surrender // forfeits half the bet
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Push:
		return "push"
	case Blackjack:
		return "blackjack"
	case Bust:
		return "bust"
	case Surrender:
		return "surrender"
	default:
		return "unknown"
	}
}

// HandResult is the settled state of one player hand.
type HandResult struct {
	Hand    *Hand
	Outcome Outcome
	Payout  float64
}

// Result is the settled state of one full round: 1-4 player hands plus the
// dealer's final hand. The per-hand payouts always sum to NetPayout.
type Result struct {
	Hands        []HandResult
	Dealer       *Hand
	NetPayout    float64
	TotalWagered float64
	Doubles      int
	Splits       int
}

// NetOutcome reduces the round to the win/loss/push signal the betting
// strategy consumes: the sign of the net payout.
func (r *Result) NetOutcome() Outcome {
	switch {
	case r.NetPayout > 0:
		return Win
	case r.NetPayout < 0:
		return Loss
	default:
		return Push
	}
}

// Round orchestrates one full hand of play against a shoe. Splitting is
// handled through an explicit work-list bounded at rules.MaxSplitHands, so
// the four-hand cap is structural rather than a scattered runtime check.
type Round struct {
	shoe   *deck.Shoe
	table  *strategy.Table
	rules  rules.Rules
	logger *log.Logger

	hands  []*Hand
	dealer *Hand
}

// NewRound creates a round controller. The logger may be nil; it is only
// consulted for per-round trace output.
func NewRound(shoe *deck.Shoe, table *strategy.Table, r rules.Rules, logger *log.Logger) *Round {
	return &Round{shoe: shoe, table: table, rules: r, logger: logger}
}

// Play deals and settles one complete round for the given bet, consulting
// the strategy table for every decision.
func (r *Round) Play(bet float64) (*Result, error) {
	if bet <= 0 {
		return nil, fmt.Errorf("%w: bet must be positive, got %g", ErrIllegalAction, bet)
	}

	player := NewHand(0, bet)
	r.dealer = NewHand(0, 0)
	r.hands = []*Hand{player}

	// Deal order: player, dealer upcard, player, dealer hole card.
	for _, h := range []*Hand{player, r.dealer, player, r.dealer} {
		c, err := r.shoe.Draw()
		if err != nil {
			return nil, err
		}
		h.AddCard(c)
	}

	// Dealer peek: a dealer natural ends the round before any player
	// action. Player natural pushes; everything else loses the initial bet.
	if r.dealer.IsBlackjack() {
		if player.IsBlackjack() {
			return r.settled(HandResult{Hand: player, Outcome: Push, Payout: 0}), nil
		}
		return r.settled(HandResult{Hand: player, Outcome: Loss, Payout: -bet}), nil
	}

	// Player natural without a dealer natural pays the premium immediately.
	if player.IsBlackjack() {
		payout := bet * r.rules.BlackjackPayout
		return r.settled(HandResult{Hand: player, Outcome: Blackjack, Payout: payout}), nil
	}

	// Action loop over the split work-list. Hands appended by splits are
	// played in slot order after the hand that spawned them.
	for i := 0; i < len(r.hands); i++ {
		if err := r.playHand(r.hands[i]); err != nil {
			return nil, err
		}
	}

	// The dealer only plays if some hand is still live; when every hand
	// busted or surrendered the outcome is already fixed.
	live := false
	for _, h := range r.hands {
		if !h.IsBust() && !h.Surrendered {
			live = true
			break
		}
	}
	if live {
		if _, err := PlayDealer(r.dealer, r.shoe, r.rules.DealerHitsSoft17); err != nil {
			return nil, err
		}
	}

	res := r.settle()
	if r.logger != nil {
		r.logger.Debug("round complete",
			"dealer", r.dealer.String(),
			"hands", len(r.hands),
			"net", res.NetPayout)
	}
	return res, nil
}

// playHand drives one hand to a terminal state, resolving each decision
// through the strategy table.
func (r *Round) playHand(h *Hand) error {
	for !h.Terminal() {
		pairCategory := h.IsPair() && !h.SplitAces &&
			(!h.FromSplit || r.rules.ResplitPairs)

		// A two-card hand has taken no hit or double yet; a split in the
		// hand's history does not consume the double window, so both halves
		// of a split may double on their two-card state.
		legal := strategy.Legality{
			Double: len(h.Cards) == 2 &&
				(!h.FromSplit || r.rules.DoubleAfterSplit),
			Surrender: r.rules.SurrenderAllowed && len(h.Actions) == 0 &&
				!h.FromSplit && len(r.hands) == 1,
			Split: pairCategory && len(r.hands) < rules.MaxSplitHands,
		}

		hs := strategy.HandState{
			Total:    h.Total(),
			Soft:     h.IsSoft(),
			NumCards: len(h.Cards),
			Pair:     pairCategory,
		}
		if pairCategory {
			hs.PairKey = h.PairKey()
		}

		move, err := r.table.Resolve(hs, r.upcard().UpcardKey(), legal)
		if err != nil {
			return err
		}
		h.Actions = append(h.Actions, move)

		switch move {
		case strategy.MoveHit:
			if err := r.hit(h); err != nil {
				return err
			}
		case strategy.MoveStand:
			h.Stood = true
		case strategy.MoveDouble:
			if !legal.Double {
				return fmt.Errorf("%w: double on %s", ErrIllegalAction, h)
			}
			h.Bet *= 2
			h.Doubled = true
			if err := r.hit(h); err != nil {
				return err
			}
		case strategy.MoveSurrender:
			if !legal.Surrender {
				return fmt.Errorf("%w: surrender on %s", ErrIllegalAction, h)
			}
			h.Surrendered = true
		case strategy.MoveSplit:
			if !legal.Split {
				return fmt.Errorf("%w: split on %s", ErrIllegalAction, h)
			}
			if err := r.split(h); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown move %v", ErrIllegalAction, move)
		}
	}
	return nil
}

func (r *Round) hit(h *Hand) error {
	c, err := r.shoe.Draw()
	if err != nil {
		return err
	}
	h.AddCard(c)
	return nil
}

// split seeds a new hand with the second paired card, duplicates the bet
// and deals one fresh card to each half. Split aces take their single card
// and are immediately terminal; they can never be re-split or re-hit.
func (r *Round) split(h *Hand) error {
	if len(r.hands) >= rules.MaxSplitHands {
		return ErrSplitDepth
	}

	aces := h.Cards[0].IsAce()

	sibling := NewHand(len(r.hands), h.Bet)
	sibling.FromSplit = true
	sibling.AddCard(h.Cards[1])

	h.Cards = h.Cards[:1]
	h.FromSplit = true
	h.recompute()

	r.hands = append(r.hands, sibling)

	if err := r.hit(h); err != nil {
		return err
	}
	if err := r.hit(sibling); err != nil {
		return err
	}
	if aces {
		h.SplitAces = true
		sibling.SplitAces = true
	}
	return nil
}

func (r *Round) upcard() deck.Card {
	return r.dealer.Cards[0]
}

// settle compares every player hand against the dealer and produces the
// round result. Per-hand payouts sum exactly to the net payout.
func (r *Round) settle() *Result {
	res := &Result{Dealer: r.dealer, Splits: len(r.hands) - 1}

	dealerBust := r.dealer.IsBust()
	dealerTotal := r.dealer.Total()

	for _, h := range r.hands {
		hr := HandResult{Hand: h}
		switch {
		case h.Surrendered:
			hr.Outcome = Surrender
			hr.Payout = -h.Bet / 2
		case h.IsBust():
			hr.Outcome = Bust
			hr.Payout = -h.Bet
		case dealerBust:
			hr.Outcome = Win
			hr.Payout = h.Bet
		case h.Total() > dealerTotal:
			hr.Outcome = Win
			hr.Payout = h.Bet
		case h.Total() < dealerTotal:
			hr.Outcome = Loss
			hr.Payout = -h.Bet
		default:
			hr.Outcome = Push
			hr.Payout = 0
		}

		if h.Doubled {
			res.Doubles++
		}
		res.Hands = append(res.Hands, hr)
		res.NetPayout += hr.Payout
		res.TotalWagered += h.Bet
	}
	return res
}

// settled builds a single-hand result for rounds decided before the action
// loop (naturals and dealer peek).
func (r *Round) settled(hr HandResult) *Result {
	return &Result{
		Hands:        []HandResult{hr},
		Dealer:       r.dealer,
		NetPayout:    hr.Payout,
		TotalWagered: hr.Hand.Bet,
	}
}
