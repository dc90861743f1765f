package strategy

import "strconv"

// HandState is the categorized view of a player hand the resolver works
// from. The round controller computes it; the resolver never sees cards.
type HandState struct {
	Total    int
	Soft     bool
	NumCards int

	// Pair is set only when pair categorization applies: a two-card hand of
	// equal rank-value that is either the initial unsplit hand or, when
	// resplitting is enabled, a fresh post-split hand. PairKey is the
	// rank-value key ("2".."10", "A").
	Pair    bool
	PairKey string
}

// Legality captures which moves the rule configuration and hand state
// permit right now. The round controller derives it; compound table entries
// fall back when their primary move is illegal.
type Legality struct {
	Double    bool
	Surrender bool
	Split     bool
}

// Resolve maps a categorized hand and dealer upcard to a concrete move.
// Pair categorization takes precedence; soft totals are consulted next,
// then hard totals. Soft totals below 13 (two aces when splitting is
// unavailable) fall through to the hard table.
func (t *Table) Resolve(hs HandState, upcardKey string, legal Legality) (Move, error) {
	if hs.Pair && legal.Split {
		row, ok := t.pairs[hs.PairKey]
		if !ok {
			return MoveStand, &LookupError{Category: "pair " + hs.PairKey, Upcard: upcardKey}
		}
		act, ok := row[upcardKey]
		if !ok {
			return MoveStand, &LookupError{Category: "pair " + hs.PairKey, Upcard: upcardKey}
		}
		return t.apply(act, legal), nil
	}

	if hs.Soft && hs.Total >= minSoftTotal {
		row, ok := t.soft[hs.Total]
		if !ok {
			return MoveStand, &LookupError{Category: softCategory(hs.Total), Upcard: upcardKey}
		}
		act, ok := row[upcardKey]
		if !ok {
			return MoveStand, &LookupError{Category: softCategory(hs.Total), Upcard: upcardKey}
		}
		return t.apply(act, legal), nil
	}

	// Totals below the table's lowest hard row are still reachable: a split
	// pair of 2s replayed as a hard hand is hard 4. They always hit.
	if hs.Total < minHardTotal {
		return MoveHit, nil
	}

	row, ok := t.hard[hs.Total]
	if !ok {
		return MoveStand, &LookupError{Category: hardCategory(hs.Total), Upcard: upcardKey}
	}
	act, ok := row[upcardKey]
	if !ok {
		return MoveStand, &LookupError{Category: hardCategory(hs.Total), Upcard: upcardKey}
	}
	return t.apply(act, legal), nil
}

// apply resolves a table entry against current legality, substituting the
// fallback for compound tokens whose primary move is illegal.
func (t *Table) apply(act Action, legal Legality) Move {
	switch act {
	case Hit:
		return MoveHit
	case Stand:
		return MoveStand
	case Split:
		// Pair rows are only consulted when splitting is legal, so a plain
		// split token always resolves to the split move.
		return MoveSplit
	case DoubleElseHit:
		if legal.Double {
			return MoveDouble
		}
		return MoveHit
	case DoubleElseStand:
		if legal.Double {
			return MoveDouble
		}
		return MoveStand
	case SurrenderElseHit:
		if legal.Surrender {
			return MoveSurrender
		}
		return MoveHit
	case SurrenderElseStand:
		if legal.Surrender {
			return MoveSurrender
		}
		return MoveStand
	case SurrenderElseSplit:
		if legal.Surrender {
			return MoveSurrender
		}
		if legal.Split {
			return MoveSplit
		}
		return MoveHit
	default:
		return MoveStand
	}
}

func hardCategory(total int) string {
	return "hard " + strconv.Itoa(total)
}

func softCategory(total int) string {
	return "soft " + strconv.Itoa(total)
}
