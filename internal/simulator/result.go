package simulator

import (
	"fmt"
	"math"
	"sort"

	"github.com/cardsim/blackjack/internal/game"
)

// SessionResult aggregates one independent session: one shoe, one betting
// progression, HandsPerSession rounds. Win/Loss/Push count rounds by net
// payout sign; Blackjacks, Busts and Surrenders count individual player
// hands inside those rounds.
type SessionResult struct {
	Session      int     `json:"session"`
	Hands        int     `json:"hands"`
	NetPayout    float64 `json:"net_payout"`
	TotalWagered float64 `json:"total_wagered"`

	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Pushes     int `json:"pushes"`
	Blackjacks int `json:"blackjacks"`
	Busts      int `json:"busts"`
	Surrenders int `json:"surrenders"`
	Doubles    int `json:"doubles"`
	Splits     int `json:"splits"`

	MaxWinStreak  int `json:"max_win_streak"`
	MaxLossStreak int `json:"max_loss_streak"`

	winStreak  int
	lossStreak int
}

// addRound folds one settled round into the session aggregates. Pushes
// leave both streak counters untouched.
func (s *SessionResult) addRound(res *game.Result) {
	s.Hands++
	s.NetPayout += res.NetPayout
	s.TotalWagered += res.TotalWagered
	s.Doubles += res.Doubles
	s.Splits += res.Splits

	for _, hr := range res.Hands {
		switch hr.Outcome {
		case game.Blackjack:
			s.Blackjacks++
		case game.Bust:
			s.Busts++
		case game.Surrender:
			s.Surrenders++
		}
	}

	switch res.NetOutcome() {
	case game.Win:
		s.Wins++
		s.winStreak++
		s.lossStreak = 0
		if s.winStreak > s.MaxWinStreak {
			s.MaxWinStreak = s.winStreak
		}
	case game.Loss:
		s.Losses++
		s.lossStreak++
		s.winStreak = 0
		if s.lossStreak > s.MaxLossStreak {
			s.MaxLossStreak = s.lossStreak
		}
	case game.Push:
		s.Pushes++
	}
}

// EVPerHand returns the session's net payout per round.
func (s *SessionResult) EVPerHand() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.NetPayout / float64(s.Hands)
}

// RoundTrace is a bounded per-round debugging sample showing how strategy
// dispatch played out.
type RoundTrace struct {
	Session int      `json:"session"`
	Round   int      `json:"round"`
	Dealer  string   `json:"dealer"`
	Hands   []string `json:"hands"`
	Actions []string `json:"actions"`
	Payout  float64  `json:"payout"`
}

// Result is the pure reduction of all session results. It is produced once
// by the driver and never mutated afterwards; the reporting side owns it
// from there.
type Result struct {
	TotalHands   int     `json:"total_hands"`
	TotalPayout  float64 `json:"total_payout"`
	TotalWagered float64 `json:"total_wagered"`

	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Pushes     int `json:"pushes"`
	Blackjacks int `json:"blackjacks"`
	Busts      int `json:"busts"`
	Surrenders int `json:"surrenders"`
	Doubles    int `json:"doubles"`
	Splits     int `json:"splits"`

	MaxWinStreak  int `json:"max_win_streak"`
	MaxLossStreak int `json:"max_loss_streak"`

	Sessions       []SessionResult `json:"sessions"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
	Traces         []RoundTrace    `json:"traces,omitempty"`
}

// merge folds a completed session into the run totals. Called sequentially
// after parallel session execution finishes.
func (r *Result) merge(s SessionResult) {
	r.TotalHands += s.Hands
	r.TotalPayout += s.NetPayout
	r.TotalWagered += s.TotalWagered
	r.Wins += s.Wins
	r.Losses += s.Losses
	r.Pushes += s.Pushes
	r.Blackjacks += s.Blackjacks
	r.Busts += s.Busts
	r.Surrenders += s.Surrenders
	r.Doubles += s.Doubles
	r.Splits += s.Splits
	if s.MaxWinStreak > r.MaxWinStreak {
		r.MaxWinStreak = s.MaxWinStreak
	}
	if s.MaxLossStreak > r.MaxLossStreak {
		r.MaxLossStreak = s.MaxLossStreak
	}
	r.Sessions = append(r.Sessions, s)
}

// EVPerHand returns net payout per round across the whole run.
func (r *Result) EVPerHand() float64 {
	if r.TotalHands == 0 {
		return 0
	}
	return r.TotalPayout / float64(r.TotalHands)
}

// EVPerUnit returns net payout per unit wagered.
func (r *Result) EVPerUnit() float64 {
	if r.TotalWagered == 0 {
		return 0
	}
	return r.TotalPayout / r.TotalWagered
}

// WinRate returns the fraction of decided rounds won, excluding pushes.
func (r *Result) WinRate() float64 {
	decided := r.Wins + r.Losses
	if decided == 0 {
		return 0
	}
	return float64(r.Wins) / float64(decided)
}

// HandsPerSecond returns the measured throughput of the run.
func (r *Result) HandsPerSecond() float64 {
	if r.ElapsedSeconds == 0 {
		return 0
	}
	return float64(r.TotalHands) / r.ElapsedSeconds
}

// SessionEVMean returns the mean per-hand EV across sessions.
func (r *Result) SessionEVMean() float64 {
	if len(r.Sessions) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range r.Sessions {
		sum += s.EVPerHand()
	}
	return sum / float64(len(r.Sessions))
}

// SessionEVStdDev returns the sample standard deviation of per-hand EV
// across sessions.
func (r *Result) SessionEVStdDev() float64 {
	n := len(r.Sessions)
	if n < 2 {
		return 0
	}
	mean := r.SessionEVMean()
	sum := 0.0
	for _, s := range r.Sessions {
		d := s.EVPerHand() - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// PayoutPercentile returns the interpolated percentile (0.0-1.0) of
// per-session net payouts.
func (r *Result) PayoutPercentile(p float64) float64 {
	if len(r.Sessions) == 0 {
		return 0
	}
	sorted := make([]float64, len(r.Sessions))
	for i, s := range r.Sessions {
		sorted[i] = s.NetPayout
	}
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks internal consistency of the aggregates: the session
// ledger must sum exactly to the run totals.
func (r *Result) Validate() error {
	hands, wins, losses, pushes := 0, 0, 0, 0
	payout := 0.0
	for _, s := range r.Sessions {
		hands += s.Hands
		wins += s.Wins
		losses += s.Losses
		pushes += s.Pushes
		payout += s.NetPayout
	}
	if hands != r.TotalHands {
		return fmt.Errorf("session hands (%d) do not match total hands (%d)", hands, r.TotalHands)
	}
	if wins != r.Wins || losses != r.Losses || pushes != r.Pushes {
		return fmt.Errorf("session outcome counts do not match totals")
	}
	if math.Abs(payout-r.TotalPayout) > 1e-9 {
		return fmt.Errorf("session payouts (%.9f) do not match total payout (%.9f)", payout, r.TotalPayout)
	}
	if r.Wins+r.Losses+r.Pushes != r.TotalHands {
		return fmt.Errorf("outcome counts (%d) do not match total hands (%d)",
			r.Wins+r.Losses+r.Pushes, r.TotalHands)
	}
	return nil
}
