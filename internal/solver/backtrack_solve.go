package solver

import (
	"context"
	"sort"
	"time"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/ports"
)

// Solve looks for an order of selections that empties both the board and
// staging. It returns the tile ids in play order.
func (s *BacktrackingSolver) Solve(ctx context.Context, board, staging []domain.Tile) ([]int, ports.Stats, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, ports.Stats{}, err
	}
	budget := s.MaxNodes
	if budget <= 0 {
		budget = DefaultMaxNodes
	}
	above, covers := coverIndex(board)
	removed := make([]bool, len(board))
	stage := make([]domain.TileType, 0, domain.MaxStorage+1)
	for _, t := range staging {
		stage = append(stage, t.Type)
	}
	left := len(board)
	moves := make([]int, 0, len(board))
	lost := make(map[string]struct{})
	nodes := 0
	var stop error

	key := func() string {
		b := make([]byte, len(removed)+len(stage)+1)
		for i, r := range removed {
			if r {
				b[i] = 1
			}
		}
		b[len(removed)] = 0xff
		for i, tt := range stage {
			b[len(removed)+1+i] = byte(tt)
		}
		return string(b)
	}

	var dfs func() bool
	dfs = func() bool {
		nodes++
		if nodes > budget {
			stop = ErrBudget
			return false
		}
		if nodes&0xff == 0 && ctx.Err() != nil {
			stop = ctx.Err()
			return false
		}
		if left == 0 && len(stage) == 0 {
			return true
		}
		if len(stage) >= domain.MaxStorage {
			return false
		}
		k := key()
		if _, ok := lost[k]; ok {
			return false
		}

		cands := candidates(board, above, covers, removed, stage)
		for _, i := range cands {
			saved := append([]domain.TileType(nil), stage...)
			removed[i] = true
			left--
			stage = push(stage, board[i].Type)
			moves = append(moves, board[i].ID)

			if dfs() {
				return true
			}
			if stop != nil {
				return false
			}

			moves = moves[:len(moves)-1]
			stage = append(stage[:0], saved...)
			left++
			removed[i] = false
		}
		lost[k] = struct{}{}
		return false
	}

	ok := dfs()
	st := ports.Stats{Nodes: nodes, Duration: time.Since(start)}
	if stop != nil {
		return nil, st, stop
	}
	if !ok {
		return nil, st, ErrUnsolvable
	}
	return moves, st, nil
}

// candidates orders the free tiles: completing the tail first, then
// extending it, then tiles that uncover the most.
func candidates(board []domain.Tile, above [][]int, covers []int, removed []bool, stage []domain.TileType) []int {
	var out []int
	for i := range board {
		if isFree(above, removed, i) {
			out = append(out, i)
		}
	}
	n := len(stage)
	score := func(i int) int {
		tt := board[i].Type
		switch {
		case n >= 2 && stage[n-1] == tt && stage[n-2] == tt:
			return 2
		case n >= 1 && stage[n-1] == tt:
			return 1
		default:
			return 0
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		sa, sb := score(out[a]), score(out[b])
		if sa != sb {
			return sa > sb
		}
		return covers[out[a]] > covers[out[b]]
	})
	return out
}
