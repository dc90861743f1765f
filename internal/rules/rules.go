// Package rules holds the immutable table and shoe configuration for a
// simulation run. Configuration files are HCL; missing fields take the
// common 6-deck 3:2 defaults.
package rules

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// MaxSplitHands caps the number of player hands a round may fan out to.
const MaxSplitHands = 4

// Rules is the enumerated rule and shoe configuration. It is loaded once
// and never mutated during a run.
type Rules struct {
	DealerHitsSoft17 bool
	SurrenderAllowed bool
	DoubleAfterSplit bool
	ResplitPairs     bool
	BlackjackPayout  float64

	NumDecks     int
	Penetration  float64
	InfiniteShoe bool
}

// Default returns the common rule set: 6 decks, 75% penetration, dealer
// stands on soft 17, late surrender, double after split, 3:2 blackjack.
func Default() Rules {
	return Rules{
		DealerHitsSoft17: false,
		SurrenderAllowed: true,
		DoubleAfterSplit: true,
		ResplitPairs:     false,
		BlackjackPayout:  1.5,
		NumDecks:         6,
		Penetration:      0.75,
		InfiniteShoe:     false,
	}
}

// fileRules mirrors Rules with pointer fields so absent HCL attributes can
// be distinguished from explicit zero values before defaults are applied.
type fileRules struct {
	DealerHitsSoft17 *bool    `hcl:"dealer_hits_soft_17,optional"`
	SurrenderAllowed *bool    `hcl:"surrender_allowed,optional"`
	DoubleAfterSplit *bool    `hcl:"double_after_split,optional"`
	ResplitPairs     *bool    `hcl:"resplit_pairs,optional"`
	BlackjackPayout  *float64 `hcl:"blackjack_payout,optional"`
	NumDecks         *int     `hcl:"num_decks,optional"`
	Penetration      *float64 `hcl:"penetration,optional"`
	InfiniteShoe     *bool    `hcl:"infinite_shoe,optional"`
}

// Load reads an HCL rules file, overlays it on the defaults and validates
// the result. A missing file returns the defaults.
func Load(filename string) (Rules, error) {
	r := Default()

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return r, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return r, fmt.Errorf("failed to parse rules file: %s", diags.Error())
	}

	var f fileRules
	diags = gohcl.DecodeBody(file.Body, nil, &f)
	if diags.HasErrors() {
		return r, fmt.Errorf("failed to decode rules file: %s", diags.Error())
	}

	if f.DealerHitsSoft17 != nil {
		r.DealerHitsSoft17 = *f.DealerHitsSoft17
	}
	if f.SurrenderAllowed != nil {
		r.SurrenderAllowed = *f.SurrenderAllowed
	}
	if f.DoubleAfterSplit != nil {
		r.DoubleAfterSplit = *f.DoubleAfterSplit
	}
	if f.ResplitPairs != nil {
		r.ResplitPairs = *f.ResplitPairs
	}
	if f.BlackjackPayout != nil {
		r.BlackjackPayout = *f.BlackjackPayout
	}
	if f.NumDecks != nil {
		r.NumDecks = *f.NumDecks
	}
	if f.Penetration != nil {
		r.Penetration = *f.Penetration
	}
	if f.InfiniteShoe != nil {
		r.InfiniteShoe = *f.InfiniteShoe
	}

	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("rules file %s: %w", filename, err)
	}
	return r, nil
}

// Validate rejects illegal or contradictory configuration before any
// simulation starts.
func (r Rules) Validate() error {
	if r.NumDecks < 1 || r.NumDecks > 8 {
		return fmt.Errorf("num_decks must be 1-8, got %d", r.NumDecks)
	}
	if r.Penetration <= 0 || r.Penetration > 1 {
		return fmt.Errorf("penetration must be in (0, 1], got %g", r.Penetration)
	}
	if r.BlackjackPayout < 1 {
		return fmt.Errorf("blackjack_payout must be at least 1:1, got %g", r.BlackjackPayout)
	}
	return nil
}
