package ports

import (
	"context"
	"time"

	"svw.info/sheep/internal/domain"
)

// Stats captures performance characteristics of an operation.
type Stats struct {
	Placed   int
	Trimmed  int
	Nodes    int
	Duration time.Duration
}

// Generator creates new boards.
type Generator interface {
	Generate(ctx context.Context, seed int64) (*domain.Layout, Stats, error)
}

// Solver searches for a selection order that clears the board.
type Solver interface {
	Solve(ctx context.Context, board, staging []domain.Tile) (moves []int, st Stats, err error)
}

// Validator checks board and staging invariants.
type Validator interface {
	Validate(ctx context.Context, board, staging []domain.Tile) (ok bool, problems []domain.Problem, err error)
}

// Hinter suggests the next tile to select.
type Hinter interface {
	Hint(ctx context.Context, s domain.Snapshot) (domain.Hint, bool, error)
}

// Session is one running game.
type Session interface {
	Select(ctx context.Context, tileID int) (domain.Outcome, error)
	Restart(ctx context.Context, seed int64) error
	Snapshot() domain.Snapshot
}

// Storage keeps running sessions by id.
type Storage interface {
	Save(ctx context.Context, id string, s Session) error
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.GameMeta, error)
}
