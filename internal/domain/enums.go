package domain

import (
	"fmt"
	"strings"
)

// TileType is one of the seven tile symbols.
type TileType int

const (
	Sheep TileType = iota
	Wool
	Grass
	Clover
	Carrot
	Bell
	Bucket
)

// TypeCount is the number of distinct tile types.
const TypeCount = 7

var typeNames = [TypeCount]string{"sheep", "wool", "grass", "clover", "carrot", "bell", "bucket"}

// Symbols used by text front ends.
var typeSymbols = [TypeCount]rune{'S', 'W', 'G', 'C', 'R', 'B', 'U'}

// AllTypes lists every tile type in declaration order.
func AllTypes() []TileType {
	out := make([]TileType, TypeCount)
	for i := range out {
		out[i] = TileType(i)
	}
	return out
}

func (t TileType) Valid() bool { return t >= 0 && int(t) < TypeCount }

func (t TileType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tiletype(%d)", int(t))
	}
	return typeNames[t]
}

// Symbol returns a single display rune for the type.
func (t TileType) Symbol() rune {
	if !t.Valid() {
		return '?'
	}
	return typeSymbols[t]
}

func (t TileType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tile type %d", int(t))
	}
	return []byte(typeNames[t]), nil
}

func (t *TileType) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range typeNames {
		if n == s {
			*t = TileType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tile type %q", s)
}

// Status is the session state of a game.
type Status int

const (
	Playing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further interaction is accepted.
func (s Status) Terminal() bool { return s == Won || s == Lost }

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "playing":
		*s = Playing
	case "won":
		*s = Won
	case "lost":
		*s = Lost
	default:
		return fmt.Errorf("unknown status %q", string(b))
	}
	return nil
}

// ProblemKind classifies an invariant violation found by the validator.
type ProblemKind int

const (
	ProblemTypeCount   ProblemKind = iota // per-type count not a multiple of 3
	ProblemOverlap                        // same-layer overlap
	ProblemBlockedFlag                    // stale blocked flag
	ProblemStaging                        // staging over capacity
	ProblemDuplicateID                    // id reused or shared with staging
	ProblemLayer                          // layer out of range
)

func (k ProblemKind) String() string {
	switch k {
	case ProblemTypeCount:
		return "type-count"
	case ProblemOverlap:
		return "overlap"
	case ProblemBlockedFlag:
		return "blocked-flag"
	case ProblemStaging:
		return "staging"
	case ProblemDuplicateID:
		return "duplicate-id"
	case ProblemLayer:
		return "layer"
	default:
		return "unknown"
	}
}

func (k ProblemKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Outcome describes what a selection did.
type Outcome int

const (
	OutcomeIgnored    Outcome = iota // a guard rejected the selection
	OutcomeMoved                     // tile moved to staging, no match
	OutcomeEliminated                // tile moved and a trailing triple cleared
	OutcomeOverflow                  // staging was full; the game is lost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeMoved:
		return "moved"
	case OutcomeEliminated:
		return "eliminated"
	case OutcomeOverflow:
		return "overflow"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(b []byte) error {
	for c := OutcomeIgnored; c <= OutcomeOverflow; c++ {
		if c.String() == string(b) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", string(b))
}
