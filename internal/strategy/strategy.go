// Package strategy loads playing-strategy tables and resolves them against
// hand state. Tables are JSON documents with three sections (hard totals,
// soft totals, pairs); every entry is decoded into a typed action at load
// time so the simulation loop never dispatches on raw strings.
package strategy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Action is a table entry: either a simple move or a compound token whose
// primary move is substituted by its fallback when illegal in the current
// hand state.
type Action int

const (
	Hit Action = iota
	Stand
	Split
	DoubleElseHit
	DoubleElseStand
	SurrenderElseHit
	SurrenderElseStand
	SurrenderElseSplit
)

var actionTokens = map[string]Action{
	"hit":                  Hit,
	"stand":                Stand,
	"split":                Split,
	"double_else_hit":      DoubleElseHit,
	"double_else_stand":    DoubleElseStand,
	"surrender_else_hit":   SurrenderElseHit,
	"surrender_else_stand": SurrenderElseStand,
	"surrender_else_split": SurrenderElseSplit,
}

// String returns the token form used in strategy files.
func (a Action) String() string {
	for tok, act := range actionTokens {
		if act == a {
			return tok
		}
	}
	return "unknown"
}

// Move is a fully resolved player decision.
type Move int

const (
	MoveHit Move = iota
	MoveStand
	MoveDouble
	MoveSplit
	MoveSurrender
)

// String returns the lowercase name of the move.
func (m Move) String() string {
	switch m {
	case MoveHit:
		return "hit"
	case MoveStand:
		return "stand"
	case MoveDouble:
		return "double"
	case MoveSplit:
		return "split"
	case MoveSurrender:
		return "surrender"
	default:
		return "unknown"
	}
}

// upcardKeys are the dealer-upcard columns every row must cover.
var upcardKeys = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "A"}

// pairKeys are the rank-value keys the pairs section must cover.
var pairKeys = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "A"}

const (
	minHardTotal = 5
	maxHardTotal = 21
	minSoftTotal = 13
	maxSoftTotal = 21
)

// ErrStrategyLookup indicates the table has no entry for a reachable
// (category, upcard) pair. Load-time validation makes this unreachable for
// files that pass Load; hitting it at runtime is a data-completeness defect
// and fatal to the run.
var ErrStrategyLookup = errors.New("strategy table lookup failed")

// LookupError carries the missing key for diagnostics.
type LookupError struct {
	Category string
	Upcard   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no strategy entry for %s vs %s", e.Category, e.Upcard)
}

func (e *LookupError) Unwrap() error { return ErrStrategyLookup }

// Table is an immutable playing strategy. Hard and soft rows are keyed by
// total, pair rows by rank-value key ("2".."10", "A").
type Table struct {
	Name  string
	hard  map[int]map[string]Action
	soft  map[int]map[string]Action
	pairs map[string]map[string]Action
}

type tableFile struct {
	Name     string                       `json:"name"`
	Strategy tableSections                `json:"strategy"`
	Hard     map[string]map[string]string `json:"hard_totals"`
	Soft     map[string]map[string]string `json:"soft_totals"`
	Pairs    map[string]map[string]string `json:"pairs"`
}

type tableSections struct {
	Hard  map[string]map[string]string `json:"hard_totals"`
	Soft  map[string]map[string]string `json:"soft_totals"`
	Pairs map[string]map[string]string `json:"pairs"`
}

// Load reads and validates a strategy table from a JSON file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading strategy file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("strategy file %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a strategy document, converts every entry to a typed
// Action and validates completeness: each reachable hand category must have
// a row covering all ten dealer upcards. The tables may appear at the top
// level or nested under a "strategy" key.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding strategy JSON: %w", err)
	}

	hard, soft, pairs := f.Hard, f.Soft, f.Pairs
	if hard == nil {
		hard, soft, pairs = f.Strategy.Hard, f.Strategy.Soft, f.Strategy.Pairs
	}

	t := &Table{
		Name:  f.Name,
		hard:  make(map[int]map[string]Action),
		soft:  make(map[int]map[string]Action),
		pairs: make(map[string]map[string]Action),
	}

	for key, row := range hard {
		total, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("hard_totals: bad key %q", key)
		}
		decoded, err := decodeRow("hard "+key, row)
		if err != nil {
			return nil, err
		}
		t.hard[total] = decoded
	}
	for key, row := range soft {
		total, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("soft_totals: bad key %q", key)
		}
		decoded, err := decodeRow("soft "+key, row)
		if err != nil {
			return nil, err
		}
		t.soft[total] = decoded
	}
	for key, row := range pairs {
		if !validPairKey(key) {
			return nil, fmt.Errorf("pairs: bad key %q", key)
		}
		decoded, err := decodeRow("pair "+key, row)
		if err != nil {
			return nil, err
		}
		t.pairs[key] = decoded
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeRow(context string, row map[string]string) (map[string]Action, error) {
	decoded := make(map[string]Action, len(row))
	for upcard, token := range row {
		act, ok := actionTokens[token]
		if !ok {
			return nil, fmt.Errorf("%s vs %s: unknown action token %q", context, upcard, token)
		}
		decoded[upcard] = act
	}
	return decoded, nil
}

func validPairKey(key string) bool {
	for _, k := range pairKeys {
		if k == key {
			return true
		}
	}
	return false
}

// validate checks that every reachable category x upcard pair has an entry.
func (t *Table) validate() error {
	for total := minHardTotal; total <= maxHardTotal; total++ {
		row, ok := t.hard[total]
		if !ok {
			return fmt.Errorf("hard_totals: missing row for %d", total)
		}
		if err := checkRow(fmt.Sprintf("hard %d", total), row); err != nil {
			return err
		}
	}
	for total := minSoftTotal; total <= maxSoftTotal; total++ {
		row, ok := t.soft[total]
		if !ok {
			return fmt.Errorf("soft_totals: missing row for %d", total)
		}
		if err := checkRow(fmt.Sprintf("soft %d", total), row); err != nil {
			return err
		}
	}
	for _, key := range pairKeys {
		row, ok := t.pairs[key]
		if !ok {
			return fmt.Errorf("pairs: missing row for %s", key)
		}
		if err := checkRow("pair "+key, row); err != nil {
			return err
		}
	}
	return nil
}

func checkRow(context string, row map[string]Action) error {
	for _, upcard := range upcardKeys {
		if _, ok := row[upcard]; !ok {
			return fmt.Errorf("%s: missing upcard %s", context, upcard)
		}
	}
	return nil
}
