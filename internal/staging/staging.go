// Package staging holds tiles taken off the board until three of a kind
// line up at the tail.
package staging

import "svw.info/sheep/internal/domain"

// Area is the bounded staging sequence. The zero value is an empty area
// with capacity domain.MaxStorage.
type Area struct {
	tiles []domain.Tile
	cap   int
}

// New returns an area with the given capacity; capacity <= 0 means
// domain.MaxStorage.
func New(capacity int) *Area {
	if capacity <= 0 {
		capacity = domain.MaxStorage
	}
	return &Area{tiles: make([]domain.Tile, 0, capacity), cap: capacity}
}

// Cap is the maximum number of tiles the area holds.
func (a *Area) Cap() int {
	if a.cap <= 0 {
		return domain.MaxStorage
	}
	return a.cap
}

func (a *Area) Len() int { return len(a.tiles) }

// Full reports whether another Append would exceed capacity.
func (a *Area) Full() bool { return len(a.tiles) >= a.Cap() }

// Append adds t at the tail and clears the trailing three entries when
// they share a type. Only the tail is inspected; same-type tiles elsewhere
// in the sequence are left alone. Callers must check Full first: an
// append past capacity is a lost game, not something the area resolves.
func (a *Area) Append(t domain.Tile) (eliminated bool) {
	if a.Full() {
		panic("staging: append on full area")
	}
	t.Blocked = false
	a.tiles = append(a.tiles, t)

	n := len(a.tiles)
	if n < 3 {
		return false
	}
	last := a.tiles[n-1].Type
	if a.tiles[n-2].Type != last || a.tiles[n-3].Type != last {
		return false
	}
	a.tiles = a.tiles[:n-3]
	return true
}

// Tiles returns a copy of the sequence, oldest first.
func (a *Area) Tiles() []domain.Tile {
	out := make([]domain.Tile, len(a.tiles))
	copy(out, a.tiles)
	return out
}

// Contains reports whether a tile with the given id is staged.
func (a *Area) Contains(id int) bool {
	for _, t := range a.tiles {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Counts groups the staged tiles by type.
func (a *Area) Counts() map[domain.TileType]int {
	return CountTypes(a.tiles)
}

// Reset empties the area.
func (a *Area) Reset() { a.tiles = a.tiles[:0] }

// CountTypes groups tiles by type.
func CountTypes(tiles []domain.Tile) map[domain.TileType]int {
	m := make(map[domain.TileType]int)
	for _, t := range tiles {
		m[t.Type]++
	}
	return m
}
