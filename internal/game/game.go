// Package game runs one session of the layered three-of-a-kind puzzle:
// it owns the board and staging area and applies player selections.
package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/occlusion"
	"svw.info/sheep/internal/ports"
	"svw.info/sheep/internal/staging"
)

var errNoGenerator = errors.New("game: no generator configured")

// Options tune a session.
type Options struct {
	// RemovalDelay is the pause between accepting a selection and taking
	// the tile off the board. The tile is reported in Snapshot.Exiting
	// meanwhile and other selections are ignored.
	RemovalDelay time.Duration
	Logger       *slog.Logger
}

// Game is a single session. It is safe for concurrent use; at most one
// selection is in flight at a time.
type Game struct {
	mu   sync.Mutex
	gen  ports.Generator
	opts Options
	log  *slog.Logger

	id         string
	seed       int64
	field      domain.Field
	board      []domain.Tile
	stage      *staging.Area
	status     domain.Status
	remaining  int
	processing bool
	exiting    int
	epoch      int
}

// New generates a board from seed and starts a session on it.
func New(ctx context.Context, gen ports.Generator, seed int64, opts Options) (*Game, error) {
	if gen == nil {
		return nil, errNoGenerator
	}
	l, _, err := gen.Generate(ctx, seed)
	if err != nil {
		return nil, err
	}
	g := FromLayout(l, opts)
	g.gen = gen
	return g, nil
}

// FromLayout starts a session on an existing layout. Such a session can
// only be restarted if a generator is attached with SetGenerator.
func FromLayout(l *domain.Layout, opts Options) *Game {
	g := &Game{opts: opts, log: opts.Logger, stage: staging.New(domain.MaxStorage)}
	if g.log == nil {
		g.log = slog.Default()
	}
	g.load(l)
	return g
}

// SetGenerator attaches the generator used by Restart.
func (g *Game) SetGenerator(gen ports.Generator) {
	g.mu.Lock()
	g.gen = gen
	g.mu.Unlock()
}

// SetID tags the session; the id shows up in snapshots and logs.
func (g *Game) SetID(id string) {
	g.mu.Lock()
	g.id = id
	g.mu.Unlock()
}

func (g *Game) load(l *domain.Layout) {
	g.seed = l.Seed
	g.field = l.Field
	g.board = occlusion.Recompute(l.Tiles)
	g.stage.Reset()
	g.remaining = l.Remaining
	g.processing = false
	g.exiting = 0
	g.epoch++
	g.status, _ = Check(g.board, nil)
}

// Restart discards the session state and deals a new board.
func (g *Game) Restart(ctx context.Context, seed int64) error {
	g.mu.Lock()
	gen := g.gen
	g.mu.Unlock()
	if gen == nil {
		return errNoGenerator
	}
	l, _, err := gen.Generate(ctx, seed)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.load(l)
	id := g.id
	g.mu.Unlock()
	g.log.Debug("restart", "game", id, "seed", seed, "tiles", len(l.Tiles))
	return nil
}

// Select applies a player's pick of a board tile. Selections that fail a
// guard (terminal status, another selection in flight, tile not on the
// board, tile blocked) are ignored without touching any state. A full
// staging area turns the selection into a loss. The error is non-nil only
// when ctx ends during the removal delay; the board is then unchanged.
func (g *Game) Select(ctx context.Context, tileID int) (domain.Outcome, error) {
	g.mu.Lock()
	if g.status.Terminal() || g.processing {
		g.mu.Unlock()
		return domain.OutcomeIgnored, nil
	}
	idx := g.indexOf(tileID)
	if idx < 0 || g.board[idx].Blocked {
		g.mu.Unlock()
		return domain.OutcomeIgnored, nil
	}
	if g.stage.Full() {
		g.status = domain.Lost
		id := g.id
		g.mu.Unlock()
		g.log.Debug("staging full", "game", id, "tile", tileID)
		return domain.OutcomeOverflow, nil
	}
	g.processing = true

	if d := g.opts.RemovalDelay; d > 0 {
		epoch := g.epoch
		g.exiting = tileID
		g.mu.Unlock()

		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			g.mu.Lock()
			if g.epoch == epoch {
				g.processing = false
				g.exiting = 0
			}
			g.mu.Unlock()
			return domain.OutcomeIgnored, ctx.Err()
		case <-t.C:
		}

		g.mu.Lock()
		if g.epoch != epoch {
			// restarted while the tile was on its way out; the new board
			// owns processing now
			g.mu.Unlock()
			return domain.OutcomeIgnored, nil
		}
		g.exiting = 0
	}
	defer func() {
		g.processing = false
		g.mu.Unlock()
	}()
	return g.apply(tileID), nil
}

// apply runs the removal steps; g.mu is held.
func (g *Game) apply(tileID int) domain.Outcome {
	idx := g.indexOf(tileID)
	if idx < 0 {
		return domain.OutcomeIgnored
	}
	t := g.board[idx]

	rest := make([]domain.Tile, 0, len(g.board)-1)
	rest = append(rest, g.board[:idx]...)
	rest = append(rest, g.board[idx+1:]...)
	g.board = occlusion.Recompute(rest)

	eliminated := g.stage.Append(t)
	if g.remaining > 0 {
		g.remaining--
	}

	st, err := Check(g.board, g.stage.Tiles())
	if err != nil {
		g.log.Warn("inconsistent state", "game", g.id, "err", err)
	}
	g.status = st
	g.log.Debug("select", "game", g.id, "tile", tileID, "type", t.Type,
		"eliminated", eliminated, "staged", g.stage.Len(), "status", st)

	if eliminated {
		return domain.OutcomeEliminated
	}
	return domain.OutcomeMoved
}

func (g *Game) indexOf(id int) int {
	for i, t := range g.board {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Status returns the current session status.
func (g *Game) Status() domain.Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Snapshot returns a copy of everything a front end needs to draw.
func (g *Game) Snapshot() domain.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	board := make([]domain.Tile, len(g.board))
	copy(board, g.board)
	s := domain.Snapshot{
		ID:         g.id,
		Seed:       g.seed,
		Field:      g.field,
		Board:      board,
		Staging:    g.stage.Tiles(),
		Status:     g.status,
		Remaining:  g.remaining,
		Processing: g.processing,
	}
	if g.exiting != 0 {
		s.Exiting = []int{g.exiting}
	}
	return s
}
