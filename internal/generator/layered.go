package generator

import (
	"context"
	"math/rand"
	"time"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/occlusion"
	"svw.info/sheep/internal/ports"
)

// Generate builds a board from seed. The same seed and field always give
// the same layout.
func (g *LayeredGenerator) Generate(ctx context.Context, seed int64) (*domain.Layout, ports.Stats, error) {
	start := time.Now()
	rng := rand.New(rand.NewSource(seed))
	f := g.Field
	cell := f.CellSize()
	_, perType := Capacity(f)

	// 1) shuffled pool, perType copies of every type
	pool := make([]domain.TileType, 0, perType*domain.TypeCount)
	for _, tt := range domain.AllTypes() {
		for i := 0; i < perType; i++ {
			pool = append(pool, tt)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	// 2) fill layers bottom-up until the lattice or the pool runs out;
	// odd layers shift their grid by one cell
	tiles := make([]domain.Tile, 0, len(pool))
	next, id := 0, 1
	for layer := 0; layer < domain.Layers && next < len(pool); layer++ {
		if err := ctx.Err(); err != nil {
			return nil, ports.Stats{}, err
		}
		occ := newGrid(f.Cols(), f.Rows())
		offset := layer % 2
		for next < len(pool) {
			free := occ.free(offset)
			if len(free) == 0 {
				break
			}
			p := free[rng.Intn(len(free))]
			occ.reserve(p)
			tiles = append(tiles, domain.Tile{
				ID:     id,
				Type:   pool[next],
				X:      p.x * cell,
				Y:      p.y * cell,
				Width:  f.TileSize,
				Height: f.TileSize,
				Layer:  layer,
			})
			id++
			next++
		}
	}
	placed := len(tiles)

	// 3) restore the multiple-of-three rule for anything left in the pool
	tiles, trimmed := trimExcess(tiles)

	// 4) initial occlusion pass
	tiles = occlusion.Recompute(tiles)

	l := &domain.Layout{
		Seed:      seed,
		Field:     f,
		Tiles:     tiles,
		Remaining: len(tiles),
	}
	return l, ports.Stats{Placed: placed, Trimmed: trimmed, Duration: time.Since(start)}, nil
}

// trimExcess drops count%3 tiles of every type, first found first.
func trimExcess(tiles []domain.Tile) ([]domain.Tile, int) {
	excess := make(map[domain.TileType]int)
	for tt, n := range countTypes(tiles) {
		if r := n % 3; r != 0 {
			excess[tt] = r
		}
	}
	if len(excess) == 0 {
		return tiles, 0
	}
	out := tiles[:0]
	trimmed := 0
	for _, t := range tiles {
		if excess[t.Type] > 0 {
			excess[t.Type]--
			trimmed++
			continue
		}
		out = append(out, t)
	}
	return out, trimmed
}

func countTypes(tiles []domain.Tile) map[domain.TileType]int {
	m := make(map[domain.TileType]int)
	for _, t := range tiles {
		m[t.Type]++
	}
	return m
}

type pos struct{ x, y int }

// grid is the per-layer occupancy map in cell units.
type grid struct {
	cols, rows int
	used       []bool
}

func newGrid(cols, rows int) *grid {
	return &grid{cols: cols, rows: rows, used: make([]bool, cols*rows)}
}

func (g *grid) at(x, y int) bool { return g.used[y*g.cols+x] }

// free lists the 2×2 positions on the stride-2 lattice starting at
// offset whose cells are all unreserved.
func (g *grid) free(offset int) []pos {
	var out []pos
	for y := offset; y+2 <= g.rows; y += 2 {
		for x := offset; x+2 <= g.cols; x += 2 {
			if !g.at(x, y) && !g.at(x+1, y) && !g.at(x, y+1) && !g.at(x+1, y+1) {
				out = append(out, pos{x, y})
			}
		}
	}
	return out
}

func (g *grid) reserve(p pos) {
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			g.used[(p.y+dy)*g.cols+p.x+dx] = true
		}
	}
}
