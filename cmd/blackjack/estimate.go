package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cardsim/blackjack/internal/simulator"
)

// EstimateCmd runs a short calibration and extrapolates the full run time.
type EstimateCmd struct {
	Hands    int    `default:"100000" help:"Hands per session"`
	Sessions int    `default:"1" help:"Number of independent sessions"`
	Workers  int    `default:"0" help:"Parallel workers (0 = one per CPU, capped at 8)"`
	Strategy string `help:"Playing-strategy JSON file (default: bundled basic strategy)"`
	Betting  string `help:"Betting-strategy JSON file (default: flat)"`
	Rules    string `help:"Rules HCL file (default: 6-deck 3:2 defaults)"`
	Debug    bool   `help:"Enable debug logging"`
}

func (c *EstimateCmd) Run() error {
	logger := setupLogger(c.Debug)

	cfg, err := buildConfig(c.Strategy, c.Betting, c.Rules)
	if err != nil {
		return err
	}
	cfg.HandsPerSession = c.Hands
	cfg.Sessions = c.Sessions
	cfg.Workers = c.Workers
	cfg.Seed = 1
	if c.Debug {
		cfg.Logger = logger
	}

	sim, err := simulator.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	seconds, err := sim.EstimateDuration(ctx)
	if err != nil {
		return err
	}

	total := c.Hands * c.Sessions
	fmt.Printf("Estimated duration for %d hands (%d sessions x %d): %.1fs\n",
		total, c.Sessions, c.Hands, seconds)
	return nil
}
