package hint

import (
	"context"
	"fmt"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/occlusion"
)

// Tail suggests tiles by looking at the tail of the staging area.
type Tail struct{}

func NewTail() *Tail { return &Tail{} }

// Hint returns one free tile worth picking: first one that completes the
// trailing pair, then one matching the last staged tile, then one of the
// type most common among free tiles. Nothing is suggested once the game is
// over or staging is full.
func (h *Tail) Hint(ctx context.Context, s domain.Snapshot) (domain.Hint, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Hint{}, false, err
	}
	if s.Status.Terminal() || len(s.Staging) >= domain.MaxStorage {
		return domain.Hint{}, false, nil
	}
	free := occlusion.Selectable(s.Board)
	if len(free) == 0 {
		return domain.Hint{}, false, nil
	}

	n := len(s.Staging)
	if n >= 2 && s.Staging[n-1].Type == s.Staging[n-2].Type {
		want := s.Staging[n-1].Type
		if t, ok := firstOf(free, want); ok {
			return domain.Hint{
				TileID:    t.ID,
				Type:      t.Type,
				Message:   fmt.Sprintf("Triple: a third %s clears the tail", want),
				Completes: true,
			}, true, nil
		}
	}
	if n >= 1 {
		want := s.Staging[n-1].Type
		if t, ok := firstOf(free, want); ok {
			return domain.Hint{
				TileID:  t.ID,
				Type:    t.Type,
				Message: fmt.Sprintf("Pair: another %s builds on the tail", want),
			}, true, nil
		}
	}

	t := mostCommon(free)
	return domain.Hint{
		TileID:  t.ID,
		Type:    t.Type,
		Message: fmt.Sprintf("Start: %s is the most common free tile", t.Type),
	}, true, nil
}

func firstOf(tiles []domain.Tile, tt domain.TileType) (domain.Tile, bool) {
	for _, t := range tiles {
		if t.Type == tt {
			return t, true
		}
	}
	return domain.Tile{}, false
}

// mostCommon returns the first tile of the best-represented type; ties go
// to the type seen first.
func mostCommon(tiles []domain.Tile) domain.Tile {
	counts := make(map[domain.TileType]int)
	best := tiles[0]
	for _, t := range tiles {
		counts[t.Type]++
		if counts[t.Type] > counts[best.Type] {
			best, _ = firstOf(tiles, t.Type)
		}
	}
	return best
}
