// Package simulator runs sessions of blackjack rounds against a playing
// strategy and a betting strategy, in parallel, and reduces them into a
// single Result.
//
// Sessions are mutually independent: each owns its shoe, its betting state
// and its RNG stream, seeded deterministically from the run seed plus the
// session index. A batch of sessions is therefore embarrassingly parallel
// and reproducible regardless of worker count or completion order.
package simulator

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/cardsim/blackjack/internal/betting"
	"github.com/cardsim/blackjack/internal/deck"
	"github.com/cardsim/blackjack/internal/game"
	"github.com/cardsim/blackjack/internal/randutil"
	"github.com/cardsim/blackjack/internal/rules"
	"github.com/cardsim/blackjack/internal/strategy"
)

// Config holds everything a run needs. Rules, Table and Betting are loaded
// and validated before the run starts and are immutable for its lifetime.
type Config struct {
	Rules           rules.Rules
	Table           *strategy.Table
	Betting         *betting.Config
	HandsPerSession int
	Sessions        int
	Workers         int
	Seed            int64
	TraceLimit      int
	Logger          *log.Logger
	Clock           quartz.Clock

	// Progress, if set, is called after each completed session. It runs on
	// a worker goroutine but calls are serialized.
	Progress func(sessionsDone, totalSessions int)
}

// Simulator drives a full run.
type Simulator struct {
	cfg Config
}

// New validates the configuration and applies defaults: flat betting, one
// worker per CPU (capped at 8), real clock.
func New(cfg Config) (*Simulator, error) {
	if cfg.Table == nil {
		return nil, fmt.Errorf("simulator requires a strategy table")
	}
	if cfg.HandsPerSession < 1 {
		return nil, fmt.Errorf("hands per session must be positive, got %d", cfg.HandsPerSession)
	}
	if cfg.Sessions < 1 {
		return nil, fmt.Errorf("session count must be positive, got %d", cfg.Sessions)
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if cfg.Betting == nil {
		cfg.Betting = betting.Flat()
	}
	if err := cfg.Betting.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
		if cfg.Workers > 8 {
			cfg.Workers = 8
		}
	}
	if cfg.Workers > cfg.Sessions {
		cfg.Workers = cfg.Sessions
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	return &Simulator{cfg: cfg}, nil
}

// Run executes all sessions and returns the merged result. Cancellation is
// cooperative: workers check the context between sessions, never mid-round,
// so aborting a run cannot leave a half-settled hand in the aggregates.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	cfg := s.cfg
	start := cfg.Clock.Now()

	if cfg.Logger != nil {
		cfg.Logger.Info("starting simulation",
			"sessions", cfg.Sessions,
			"hands_per_session", cfg.HandsPerSession,
			"workers", cfg.Workers,
			"seed", cfg.Seed)
	}

	jobs := make(chan int, cfg.Sessions)
	for i := 0; i < cfg.Sessions; i++ {
		jobs <- i
	}
	close(jobs)

	sessions := make([]SessionResult, cfg.Sessions)
	traces := make([][]RoundTrace, cfg.Sessions)

	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			for idx := range jobs {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				sr, tr, err := s.runSession(idx)
				if err != nil {
					return fmt.Errorf("session %d: %w", idx, err)
				}
				sessions[idx] = sr
				traces[idx] = tr

				if cfg.Progress != nil {
					mu.Lock()
					done++
					cfg.Progress(done, cfg.Sessions)
					mu.Unlock()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Final sequential reduction keeps the merge order deterministic.
	result := &Result{}
	for _, sr := range sessions {
		result.merge(sr)
	}
	for _, tr := range traces {
		result.Traces = append(result.Traces, tr...)
		if cfg.TraceLimit > 0 && len(result.Traces) >= cfg.TraceLimit {
			result.Traces = result.Traces[:cfg.TraceLimit]
			break
		}
	}
	result.ElapsedSeconds = cfg.Clock.Since(start).Seconds()

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("result validation failed: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("simulation complete",
			"hands", result.TotalHands,
			"ev_per_hand", result.EVPerHand(),
			"elapsed", result.ElapsedSeconds)
	}
	return result, nil
}

// runSession plays one full session: fresh shoe, fresh betting state, its
// own RNG stream. Reshuffle checks happen only between rounds, so a round
// in progress always has enough cards.
func (s *Simulator) runSession(idx int) (SessionResult, []RoundTrace, error) {
	cfg := s.cfg
	rng := randutil.New(cfg.Seed + int64(idx))

	shoe, err := deck.NewShoe(cfg.Rules.NumDecks, cfg.Rules.Penetration, cfg.Rules.InfiniteShoe, rng)
	if err != nil {
		return SessionResult{}, nil, err
	}

	var shoeState betting.ShoeState
	if !cfg.Rules.InfiniteShoe {
		shoeState = shoe
	}
	bets, err := cfg.Betting.Build(shoeState)
	if err != nil {
		return SessionResult{}, nil, err
	}
	bets.Reset()

	sr := SessionResult{Session: idx}
	var tr []RoundTrace
	wantTraces := cfg.TraceLimit > 0 && idx == 0

	for hand := 0; hand < cfg.HandsPerSession; hand++ {
		if shoe.NeedsReshuffle() {
			shoe.Reshuffle()
		}

		bet := bets.Bet()
		if bet <= 0 {
			return sr, tr, fmt.Errorf("betting strategy returned non-positive bet %g", bet)
		}

		round := game.NewRound(shoe, cfg.Table, cfg.Rules, cfg.Logger)
		res, err := round.Play(bet)
		if err != nil {
			return sr, tr, err
		}

		bets.Update(bettingOutcome(res.NetOutcome()), res.NetPayout, bet)
		sr.addRound(res)

		if wantTraces && len(tr) < cfg.TraceLimit {
			tr = append(tr, traceRound(idx, hand, res))
		}
	}
	return sr, tr, nil
}

func bettingOutcome(o game.Outcome) betting.Outcome {
	switch o {
	case game.Win:
		return betting.Win
	case game.Loss:
		return betting.Loss
	default:
		return betting.Push
	}
}

func traceRound(session, hand int, res *game.Result) RoundTrace {
	t := RoundTrace{
		Session: session,
		Round:   hand,
		Dealer:  res.Dealer.String(),
		Payout:  res.NetPayout,
	}
	for _, hr := range res.Hands {
		t.Hands = append(t.Hands, hr.Hand.String())
		for _, m := range hr.Hand.Actions {
			t.Actions = append(t.Actions, m.String())
		}
	}
	return t
}

// EstimateDuration runs a small calibration and extrapolates linearly to
// the configured run size. The calibration shares hands-per-session with
// the real run so per-session overhead is captured.
func (s *Simulator) EstimateDuration(ctx context.Context) (float64, error) {
	cfg := s.cfg

	calSessions := cfg.Sessions
	if calSessions > 4 {
		calSessions = 4
	}
	calHands := cfg.HandsPerSession
	if calHands > 5000 {
		calHands = 5000
	}

	calCfg := cfg
	calCfg.Sessions = calSessions
	calCfg.HandsPerSession = calHands
	calCfg.Progress = nil
	calCfg.TraceLimit = 0

	cal, err := New(calCfg)
	if err != nil {
		return 0, err
	}
	res, err := cal.Run(ctx)
	if err != nil {
		return 0, err
	}

	totalHands := float64(cfg.Sessions) * float64(cfg.HandsPerSession)
	calTotal := float64(res.TotalHands)
	if calTotal == 0 || res.ElapsedSeconds == 0 {
		return 0, nil
	}
	return res.ElapsedSeconds * totalHands / calTotal, nil
}
