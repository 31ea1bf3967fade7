// Package occlusion decides which board tiles are covered by tiles on
// higher layers.
package occlusion

import (
	"sort"

	"svw.info/sheep/internal/domain"
)

// Recompute returns a copy of tiles with every Blocked flag refreshed.
// A tile is blocked iff a tile on a strictly higher layer overlaps it.
// The input slice is not modified.
func Recompute(tiles []domain.Tile) []domain.Tile {
	out := make([]domain.Tile, len(tiles))
	copy(out, tiles)
	if len(out) == 0 {
		return out
	}

	// Indices ordered by layer so each scan walks the layers above in
	// ascending order and can stop at the first cover.
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return out[order[a]].Layer < out[order[b]].Layer })

	for i := range out {
		out[i].Blocked = covered(out, order, i)
	}
	return out
}

func covered(tiles []domain.Tile, order []int, i int) bool {
	t := tiles[i]
	start := sort.Search(len(order), func(k int) bool { return tiles[order[k]].Layer > t.Layer })
	for _, j := range order[start:] {
		if t.Overlaps(tiles[j]) {
			return true
		}
	}
	return false
}

// Blocking returns the ids of tiles that cover t, lowest layer first.
func Blocking(tiles []domain.Tile, t domain.Tile) []int {
	var above []domain.Tile
	for _, u := range tiles {
		if u.Layer > t.Layer && t.Overlaps(u) {
			above = append(above, u)
		}
	}
	sort.SliceStable(above, func(a, b int) bool { return above[a].Layer < above[b].Layer })
	ids := make([]int, len(above))
	for i, u := range above {
		ids[i] = u.ID
	}
	return ids
}

// Selectable returns the unblocked tiles in input order.
func Selectable(tiles []domain.Tile) []domain.Tile {
	var out []domain.Tile
	for _, t := range tiles {
		if !t.Blocked {
			out = append(out, t)
		}
	}
	return out
}
