package main

import (
	"fmt"

	"github.com/cardsim/blackjack/internal/betting"
	"github.com/cardsim/blackjack/internal/rules"
	"github.com/cardsim/blackjack/internal/strategy"
)

// ValidateCmd checks input documents without running a simulation.
type ValidateCmd struct {
	Strategy string `help:"Playing-strategy JSON file to validate"`
	Betting  string `help:"Betting-strategy JSON file to validate"`
	Rules    string `help:"Rules HCL file to validate"`
}

func (c *ValidateCmd) Run() error {
	if c.Strategy == "" && c.Betting == "" && c.Rules == "" {
		return fmt.Errorf("nothing to validate: pass --strategy, --betting or --rules")
	}

	if c.Strategy != "" {
		table, err := strategy.Load(c.Strategy)
		if err != nil {
			return fmt.Errorf("strategy: %w", err)
		}
		name := table.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("strategy %s: ok, table %s is complete\n", c.Strategy, name)
	}

	if c.Betting != "" {
		cfg, err := betting.LoadConfig(c.Betting)
		if err != nil {
			return fmt.Errorf("betting: %w", err)
		}
		fmt.Printf("betting %s: ok, type %s\n", c.Betting, cfg.Type)
	}

	if c.Rules != "" {
		r, err := rules.Load(c.Rules)
		if err != nil {
			return fmt.Errorf("rules: %w", err)
		}
		fmt.Printf("rules %s: ok, %d decks, penetration %.2f, blackjack pays %g:1\n",
			c.Rules, r.NumDecks, r.Penetration, r.BlackjackPayout)
	}
	return nil
}
