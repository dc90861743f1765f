// Package betting implements the stateful bet-unit selectors consulted
// before each round. Every variant shares the same lifecycle: Bet before
// the round, Update with the round's outcome, Reset at session start.
// Pushes are strictly neutral and never touch internal state.
package betting

import (
	"encoding/json"
	"fmt"
	"os"
)

// Outcome is the round-level result signal a strategy reacts to.
type Outcome int

const (
	Win Outcome = iota
	Loss
	Push
)

// Strategy is the common betting contract. Bet returns a strictly positive
// amount in base units; Update mutates the progression state; Reset
// restores the session-start state.
type Strategy interface {
	Bet() float64
	Update(outcome Outcome, payout, bet float64)
	Reset()
}

// ShoeState is the read-only view count-based strategies get of the
// session's shoe. Finite shoes satisfy it; infinite shoes have no defined
// true count, so count-based configs are rejected up front.
type ShoeState interface {
	TrueCount() float64
}

// SpreadEntry maps a minimum true count to a bet in units. Entries are
// evaluated in order; the last entry whose threshold the current true
// count meets wins.
type SpreadEntry struct {
	MinTrueCount float64 `json:"min_true_count"`
	Units        float64 `json:"units"`
}

// Params are the knobs shared across strategy types. Spread applies only
// to the count-based type.
type Params struct {
	BaseUnit float64       `json:"base_unit"`
	MaxBet   float64       `json:"max_bet"`
	Spread   []SpreadEntry `json:"spread"`
}

// Config is the decoded betting-strategy file: {type, parameters}.
type Config struct {
	Type   string `json:"type"`
	Params Params `json:"parameters"`
}

// Types lists the accepted type identifiers.
var Types = []string{
	"flat",
	"martingale",
	"reverse_martingale",
	"one_three_two_six",
	"paroli",
	"dalembert",
	"fibonacci",
	"hilo_count",
}

// LoadConfig reads and validates a betting-strategy JSON file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading betting file: %w", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding betting file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("betting file %s: %w", path, err)
	}
	return &c, nil
}

// Flat returns the default configuration: constant one-unit bets.
func Flat() *Config {
	return &Config{Type: "flat"}
}

// Validate rejects unknown types and nonsensical parameters at load time.
func (c *Config) Validate() error {
	known := false
	for _, t := range Types {
		if c.Type == t {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown betting strategy type %q", c.Type)
	}
	if c.Params.BaseUnit < 0 || c.Params.MaxBet < 0 {
		return fmt.Errorf("base_unit and max_bet must not be negative")
	}
	if c.Type == "hilo_count" {
		if len(c.Params.Spread) == 0 {
			return fmt.Errorf("hilo_count requires a spread table")
		}
		for i, e := range c.Params.Spread {
			if e.Units <= 0 {
				return fmt.Errorf("spread entry %d: units must be positive", i)
			}
		}
	}
	return nil
}

// Build instantiates the strategy for one session. Count-based strategies
// take a read-only handle on the session's shoe; passing nil (an infinite
// shoe) for such a config is a configuration error because true count is
// undefined without a depleting shoe.
func (c *Config) Build(shoe ShoeState) (Strategy, error) {
	base := c.Params.BaseUnit
	if base == 0 {
		base = 1
	}
	maxBet := c.Params.MaxBet
	if maxBet == 0 {
		maxBet = 1000
	}

	switch c.Type {
	case "flat":
		return &flat{unit: base}, nil
	case "martingale":
		return &martingale{base: base, max: maxBet, cur: base}, nil
	case "reverse_martingale":
		return &reverseMartingale{base: base, max: maxBet, cur: base}, nil
	case "one_three_two_six":
		return &oneThreeTwoSix{base: base, max: maxBet}, nil
	case "paroli":
		return &paroli{base: base, max: maxBet, cur: base}, nil
	case "dalembert":
		return &dalembert{base: base, max: maxBet, units: 1}, nil
	case "fibonacci":
		return &fibonacci{base: base, max: maxBet, seq: []float64{1, 1}}, nil
	case "hilo_count":
		if shoe == nil {
			return nil, fmt.Errorf("hilo_count betting requires a finite shoe: true count is undefined with an infinite shoe")
		}
		return &hiloCount{base: base, max: maxBet, spread: c.Params.Spread, shoe: shoe}, nil
	default:
		return nil, fmt.Errorf("unknown betting strategy type %q", c.Type)
	}
}

func capBet(bet, max float64) float64 {
	if bet > max {
		return max
	}
	return bet
}

// flat always bets one base unit.
type flat struct {
	unit float64
}

func (f *flat) Bet() float64                     { return f.unit }
func (f *flat) Update(Outcome, float64, float64) {}
func (f *flat) Reset()                           {}

// martingale doubles after a loss and resets to base after a win.
type martingale struct {
	base, max, cur float64
}

func (m *martingale) Bet() float64 { return capBet(m.cur, m.max) }

func (m *martingale) Update(outcome Outcome, _, _ float64) {
	switch outcome {
	case Loss:
		m.cur = capBet(m.cur*2, m.max)
	case Win:
		m.cur = m.base
	}
}

func (m *martingale) Reset() { m.cur = m.base }

// reverseMartingale doubles after a win and resets after a loss.
type reverseMartingale struct {
	base, max, cur float64
}

func (m *reverseMartingale) Bet() float64 { return capBet(m.cur, m.max) }

func (m *reverseMartingale) Update(outcome Outcome, _, _ float64) {
	switch outcome {
	case Win:
		m.cur = capBet(m.cur*2, m.max)
	case Loss:
		m.cur = m.base
	}
}

func (m *reverseMartingale) Reset() { m.cur = m.base }

// oneThreeTwoSix advances through the 1-3-2-6 unit sequence on consecutive
// wins and resets on any loss or on completing the sequence.
type oneThreeTwoSix struct {
	base, max float64
	step      int
}

var sequence1326 = [4]float64{1, 3, 2, 6}

func (s *oneThreeTwoSix) Bet() float64 {
	return capBet(s.base*sequence1326[s.step], s.max)
}

func (s *oneThreeTwoSix) Update(outcome Outcome, _, _ float64) {
	switch outcome {
	case Win:
		s.step++
		if s.step == len(sequence1326) {
			s.step = 0
		}
	case Loss:
		s.step = 0
	}
}

func (s *oneThreeTwoSix) Reset() { s.step = 0 }

// paroli doubles after a win and resets after three consecutive wins or
// any loss.
type paroli struct {
	base, max, cur float64
	wins           int
}

func (p *paroli) Bet() float64 { return capBet(p.cur, p.max) }

func (p *paroli) Update(outcome Outcome, _, _ float64) {
	switch outcome {
	case Win:
		p.wins++
		if p.wins >= 3 {
			p.cur = p.base
			p.wins = 0
		} else {
			p.cur = capBet(p.cur*2, p.max)
		}
	case Loss:
		p.cur = p.base
		p.wins = 0
	}
}

func (p *paroli) Reset() {
	p.cur = p.base
	p.wins = 0
}

// dalembert adds a unit after a loss and removes one after a win, floored
// at a single unit.
type dalembert struct {
	base, max float64
	units     int
}

func (d *dalembert) Bet() float64 { return capBet(d.base*float64(d.units), d.max) }

func (d *dalembert) Update(outcome Outcome, _, _ float64) {
	switch outcome {
	case Loss:
		d.units++
	case Win:
		if d.units > 1 {
			d.units--
		}
	}
}

func (d *dalembert) Reset() { d.units = 1 }

// fibonacci advances one step in the sequence on a loss and retreats two
// steps on a win, floored at the start.
type fibonacci struct {
	base, max float64
	seq       []float64
	pos       int
}

func (f *fibonacci) Bet() float64 {
	for len(f.seq) <= f.pos {
		f.seq = append(f.seq, f.seq[len(f.seq)-1]+f.seq[len(f.seq)-2])
	}
	return capBet(f.base*f.seq[f.pos], f.max)
}

func (f *fibonacci) Update(outcome Outcome, _, _ float64) {
	switch outcome {
	case Loss:
		f.pos++
	case Win:
		f.pos -= 2
		if f.pos < 0 {
			f.pos = 0
		}
	}
}

func (f *fibonacci) Reset() { f.pos = 0 }

// hiloCount sizes the bet from a spread table over the shoe's true count.
// It only ever reads the shoe.
type hiloCount struct {
	base, max float64
	spread    []SpreadEntry
	shoe      ShoeState
}

func (h *hiloCount) Bet() float64 {
	tc := h.shoe.TrueCount()
	units := 1.0
	for _, e := range h.spread {
		if tc >= e.MinTrueCount {
			units = e.Units
		}
	}
	return capBet(h.base*units, h.max)
}

func (h *hiloCount) Update(Outcome, float64, float64) {}
func (h *hiloCount) Reset()                           {}
