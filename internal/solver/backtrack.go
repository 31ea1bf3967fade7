package solver

import (
	"errors"

	"svw.info/sheep/internal/domain"
)

var (
	// ErrUnsolvable means every selection order ends in a loss.
	ErrUnsolvable = errors.New("no clearing sequence exists")
	// ErrBudget means the search gave up before deciding.
	ErrBudget = errors.New("search budget exhausted")
)

// DefaultMaxNodes bounds a search when MaxNodes is unset.
const DefaultMaxNodes = 200000

// BacktrackingSolver is a depth-first search over selection orders with a
// node budget and a table of positions already known to lose.
type BacktrackingSolver struct {
	MaxNodes int
}

func NewBacktrackingSolver() *BacktrackingSolver { return &BacktrackingSolver{MaxNodes: DefaultMaxNodes} }

// --- helpers used by Solve (in backtrack_solve.go) ---

// coverIndex lists, for every tile, the indices of tiles above that
// overlap it. A tile is free once all of them are gone.
func coverIndex(tiles []domain.Tile) (above [][]int, covers []int) {
	above = make([][]int, len(tiles))
	covers = make([]int, len(tiles))
	for i, t := range tiles {
		for j, u := range tiles {
			if u.Layer > t.Layer && t.Overlaps(u) {
				above[i] = append(above[i], j)
				covers[j]++
			}
		}
	}
	return above, covers
}

func isFree(above [][]int, removed []bool, i int) bool {
	if removed[i] {
		return false
	}
	for _, j := range above[i] {
		if !removed[j] {
			return false
		}
	}
	return true
}

// push appends tt to stage with tail elimination.
func push(stage []domain.TileType, tt domain.TileType) []domain.TileType {
	stage = append(stage, tt)
	n := len(stage)
	if n >= 3 && stage[n-2] == tt && stage[n-3] == tt {
		stage = stage[:n-3]
	}
	return stage
}

// The implementation of Solve is in backtrack_solve.go and uses the helpers above.
