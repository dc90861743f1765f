package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cardsim/blackjack/internal/betting"
	"github.com/cardsim/blackjack/internal/rules"
	"github.com/cardsim/blackjack/internal/simulator"
	"github.com/cardsim/blackjack/internal/store"
	"github.com/cardsim/blackjack/internal/strategy"
)

// SimulateCmd runs a full simulation and prints the result summary.
type SimulateCmd struct {
	Hands    int    `default:"100000" help:"Hands per session"`
	Sessions int    `default:"1" help:"Number of independent sessions"`
	Workers  int    `default:"0" help:"Parallel workers (0 = one per CPU, capped at 8)"`
	Seed     int64  `default:"0" help:"RNG seed (0 for time-based)"`
	Strategy string `help:"Playing-strategy JSON file (default: bundled basic strategy)"`
	Betting  string `help:"Betting-strategy JSON file (default: flat)"`
	Rules    string `help:"Rules HCL file (default: 6-deck 3:2 defaults)"`
	DB       string `help:"SQLite file to archive the run in"`
	Traces   int    `default:"0" help:"Per-hand trace samples to keep for debugging"`
	Debug    bool   `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	logger := setupLogger(c.Debug)

	cfg, err := buildConfig(c.Strategy, c.Betting, c.Rules)
	if err != nil {
		return err
	}
	cfg.HandsPerSession = c.Hands
	cfg.Sessions = c.Sessions
	cfg.Workers = c.Workers
	cfg.TraceLimit = c.Traces
	cfg.Logger = logger

	cfg.Seed = c.Seed
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
		logger.Info("using time-based seed", "seed", cfg.Seed)
	}

	if c.Sessions > 1 {
		progress := newDotProgress(c.Sessions)
		cfg.Progress = progress.onSession
		defer progress.finish()
	}

	sim, err := simulator.New(cfg)
	if err != nil {
		return err
	}

	// Interrupt aborts between sessions; a half-finished run never reports.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(result, cfg)

	if c.DB != "" {
		db, err := store.Open(c.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := db.SaveRun(cfg.Table.Name, cfg.Betting.Type, cfg.Seed, result)
		if err != nil {
			return err
		}
		logger.Info("run archived", "id", id, "db", c.DB)
	}
	return nil
}

// buildConfig loads the three input documents, falling back to the bundled
// defaults when a path is empty.
func buildConfig(strategyPath, bettingPath, rulesPath string) (simulator.Config, error) {
	var cfg simulator.Config
	var err error

	if strategyPath != "" {
		cfg.Table, err = strategy.Load(strategyPath)
	} else {
		cfg.Table, err = strategy.Basic()
	}
	if err != nil {
		return cfg, err
	}

	if bettingPath != "" {
		cfg.Betting, err = betting.LoadConfig(bettingPath)
		if err != nil {
			return cfg, err
		}
	} else {
		cfg.Betting = betting.Flat()
	}

	if rulesPath != "" {
		cfg.Rules, err = rules.Load(rulesPath)
		if err != nil {
			return cfg, err
		}
	} else {
		cfg.Rules = rules.Default()
	}
	return cfg, nil
}

func printSummary(r *simulator.Result, cfg simulator.Config) {
	fmt.Printf("\n=== SIMULATION RESULTS ===\n")
	fmt.Printf("Strategy: %s, betting: %s\n", cfg.Table.Name, cfg.Betting.Type)
	fmt.Printf("Hands played: %d (%d sessions)\n", r.TotalHands, len(r.Sessions))
	fmt.Printf("Elapsed: %.2fs (%.0f hands/sec)\n", r.ElapsedSeconds, r.HandsPerSecond())

	fmt.Printf("\nTotal payout: %+.2f units on %.2f wagered\n", r.TotalPayout, r.TotalWagered)
	fmt.Printf("EV per hand: %+.6f (%+.4f%%)\n", r.EVPerHand(), r.EVPerHand()*100)
	fmt.Printf("EV per unit wagered: %+.6f\n", r.EVPerUnit())

	fmt.Printf("\nOutcomes:\n")
	fmt.Printf("  Wins: %d  Losses: %d  Pushes: %d (win rate %.2f%% excl. pushes)\n",
		r.Wins, r.Losses, r.Pushes, r.WinRate()*100)
	fmt.Printf("  Blackjacks: %d  Busts: %d  Surrenders: %d\n",
		r.Blackjacks, r.Busts, r.Surrenders)
	fmt.Printf("  Doubles: %d  Splits: %d\n", r.Doubles, r.Splits)
	fmt.Printf("  Longest win streak: %d, longest loss streak: %d\n",
		r.MaxWinStreak, r.MaxLossStreak)

	if len(r.Sessions) > 1 {
		fmt.Printf("\nSession statistics (%d sessions):\n", len(r.Sessions))
		fmt.Printf("  Mean EV: %+.6f, StdDev: %.6f\n", r.SessionEVMean(), r.SessionEVStdDev())
		fmt.Printf("  Session payout percentiles: P5=%.2f P25=%.2f P50=%.2f P75=%.2f P95=%.2f\n",
			r.PayoutPercentile(0.05), r.PayoutPercentile(0.25), r.PayoutPercentile(0.50),
			r.PayoutPercentile(0.75), r.PayoutPercentile(0.95))
	}

	if len(r.Traces) > 0 {
		fmt.Printf("\nSampled hands:\n")
		for _, t := range r.Traces {
			fmt.Printf("  [s%d h%d] dealer %s | player %v | actions %v | %+.1f\n",
				t.Session, t.Round, t.Dealer, t.Hands, t.Actions, t.Payout)
		}
	}
}
