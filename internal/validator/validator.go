package validator

import (
	"context"
	"fmt"
	"sort"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/occlusion"
)

// BoardValidator checks the board and staging invariants. Eliminations
// always take three of one type, so per-type totals stay multiples of
// three for the whole game, not just after generation.
type BoardValidator struct{}

func New() *BoardValidator { return &BoardValidator{} }

func (v *BoardValidator) Validate(ctx context.Context, board, stage []domain.Tile) (bool, []domain.Problem, error) {
	if err := ctx.Err(); err != nil {
		return false, nil, err
	}
	probs := make([]domain.Problem, 0, 4)

	// layers and ids
	seen := make(map[int]string, len(board)+len(stage))
	for _, t := range board {
		if t.Layer < 0 || t.Layer >= domain.Layers {
			probs = append(probs, domain.Problem{
				Kind:    domain.ProblemLayer,
				TileIDs: []int{t.ID},
				Message: fmt.Sprintf("tile %d on layer %d", t.ID, t.Layer),
			})
		}
		if where, dup := seen[t.ID]; dup {
			probs = append(probs, dupProblem(t.ID, where, "board"))
		}
		seen[t.ID] = "board"
	}
	for _, t := range stage {
		if where, dup := seen[t.ID]; dup {
			probs = append(probs, dupProblem(t.ID, where, "staging"))
		}
		seen[t.ID] = "staging"
	}

	// same-layer overlap
	for i, a := range board {
		for _, b := range board[i+1:] {
			if a.Layer == b.Layer && a.Overlaps(b) {
				probs = append(probs, domain.Problem{
					Kind:    domain.ProblemOverlap,
					TileIDs: []int{a.ID, b.ID},
					Message: fmt.Sprintf("tiles %d and %d overlap on layer %d", a.ID, b.ID, a.Layer),
				})
			}
		}
	}

	// blocked flags
	fresh := occlusion.Recompute(board)
	for i, t := range board {
		if t.Blocked != fresh[i].Blocked {
			probs = append(probs, domain.Problem{
				Kind:    domain.ProblemBlockedFlag,
				TileIDs: append([]int{t.ID}, occlusion.Blocking(board, t)...),
				Message: fmt.Sprintf("tile %d blocked=%v, want %v", t.ID, t.Blocked, fresh[i].Blocked),
			})
		}
	}

	if len(stage) > domain.MaxStorage {
		probs = append(probs, domain.Problem{
			Kind:    domain.ProblemStaging,
			Message: fmt.Sprintf("staging holds %d tiles, capacity %d", len(stage), domain.MaxStorage),
		})
	}

	// per-type totals
	counts := make(map[domain.TileType]int)
	for _, t := range board {
		counts[t.Type]++
	}
	for _, t := range stage {
		counts[t.Type]++
	}
	types := make([]domain.TileType, 0, len(counts))
	for tt := range counts {
		types = append(types, tt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, tt := range types {
		if n := counts[tt]; n%3 != 0 {
			probs = append(probs, domain.Problem{
				Kind:    domain.ProblemTypeCount,
				Message: fmt.Sprintf("%s appears %d times", tt, n),
			})
		}
	}

	return len(probs) == 0, probs, nil
}

func dupProblem(id int, first, second string) domain.Problem {
	return domain.Problem{
		Kind:    domain.ProblemDuplicateID,
		TileIDs: []int{id},
		Message: fmt.Sprintf("tile id %d on %s and %s", id, first, second),
	}
}
