package occlusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/sheep/internal/domain"
)

func tile(id, x, y, layer int) domain.Tile {
	return domain.Tile{ID: id, X: x, Y: y, Width: 40, Height: 40, Layer: layer}
}

func blockedByID(tiles []domain.Tile) map[int]bool {
	m := make(map[int]bool, len(tiles))
	for _, t := range tiles {
		m[t.ID] = t.Blocked
	}
	return m
}

func TestRecompute(t *testing.T) {
	cases := []struct {
		name  string
		tiles []domain.Tile
		want  map[int]bool
	}{
		{
			name:  "empty",
			tiles: nil,
			want:  map[int]bool{},
		},
		{
			name:  "single tile is free",
			tiles: []domain.Tile{tile(1, 0, 0, 0)},
			want:  map[int]bool{1: false},
		},
		{
			name:  "partial overlap from above blocks",
			tiles: []domain.Tile{tile(1, 0, 0, 0), tile(2, 20, 20, 1)},
			want:  map[int]bool{1: true, 2: false},
		},
		{
			name:  "touching edges do not block",
			tiles: []domain.Tile{tile(1, 0, 0, 0), tile(2, 40, 0, 1), tile(3, 0, 40, 2)},
			want:  map[int]bool{1: false, 2: false, 3: false},
		},
		{
			name:  "same layer never blocks",
			tiles: []domain.Tile{tile(1, 0, 0, 2), tile(2, 20, 0, 2)},
			want:  map[int]bool{1: false, 2: false},
		},
		{
			name:  "lower layer never blocks",
			tiles: []domain.Tile{tile(1, 0, 0, 3), tile(2, 20, 20, 0)},
			want:  map[int]bool{1: false, 2: true},
		},
		{
			name: "chain across layers",
			tiles: []domain.Tile{
				tile(1, 0, 0, 0),
				tile(2, 20, 0, 1),
				tile(3, 40, 0, 2),
				tile(4, 200, 200, 4),
			},
			want: map[int]bool{1: true, 2: true, 3: false, 4: false},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Recompute(tc.tiles)
			assert.Equal(t, tc.want, blockedByID(got))
		})
	}
}

func TestRecomputeDoesNotMutateInput(t *testing.T) {
	in := []domain.Tile{tile(1, 0, 0, 0), tile(2, 20, 20, 1)}
	out := Recompute(in)
	require.True(t, out[0].Blocked)
	assert.False(t, in[0].Blocked)
}

func TestRecomputeIdempotent(t *testing.T) {
	in := []domain.Tile{
		tile(1, 0, 0, 0), tile(2, 20, 20, 1), tile(3, 60, 60, 2),
		tile(4, 40, 40, 3), tile(5, 120, 0, 0), tile(6, 0, 120, 4),
	}
	// stale flags on the way in
	in[4].Blocked = true
	once := Recompute(in)
	twice := Recompute(once)
	assert.Equal(t, once, twice)
	assert.False(t, once[4].Blocked)
}

func TestRecomputeUnblocksAfterRemoval(t *testing.T) {
	tiles := Recompute([]domain.Tile{tile(1, 0, 0, 0), tile(2, 20, 20, 1)})
	require.True(t, tiles[0].Blocked)
	rest := Recompute(tiles[:1])
	assert.False(t, rest[0].Blocked)
}

func TestBlockingOrderedByLayer(t *testing.T) {
	base := tile(1, 0, 0, 0)
	tiles := []domain.Tile{base, tile(9, 10, 10, 4), tile(7, 20, 0, 1), tile(8, 300, 300, 2)}
	assert.Equal(t, []int{7, 9}, Blocking(tiles, base))
	assert.Empty(t, Blocking(tiles, tiles[1]))
}

func TestSelectable(t *testing.T) {
	tiles := Recompute([]domain.Tile{tile(1, 0, 0, 0), tile(2, 20, 20, 1), tile(3, 200, 0, 0)})
	sel := Selectable(tiles)
	require.Len(t, sel, 2)
	assert.Equal(t, 2, sel[0].ID)
	assert.Equal(t, 3, sel[1].ID)
}
