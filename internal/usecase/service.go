package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/game"
	"svw.info/sheep/internal/infrastructure/storage"
	"svw.info/sheep/internal/metrics"
	"svw.info/sheep/internal/ports"
	"svw.info/sheep/internal/solver"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("game not found")

var errNotConfigured = errors.New("usecase dependency not configured")

type Service struct {
	Generator ports.Generator
	Validator ports.Validator
	Hinter    ports.Hinter
	Solver    ports.Solver
	Storage   ports.Storage
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Options   game.Options
}

func NewService(g ports.Generator, v ports.Validator, h ports.Hinter, sv ports.Solver, st ports.Storage, m *metrics.Metrics, log *slog.Logger, opts game.Options) *Service {
	if log == nil {
		log = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log
	}
	return &Service{Generator: g, Validator: v, Hinter: h, Solver: sv, Storage: st, Metrics: m, Logger: log, Options: opts}
}

// NewGame deals a board from seed (0 picks one from the clock) and
// registers the session.
func (u *Service) NewGame(ctx context.Context, seed int64) (domain.Snapshot, error) {
	if u.Generator == nil || u.Storage == nil {
		return domain.Snapshot{}, errNotConfigured
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g, err := game.New(ctx, u.Generator, seed, u.Options)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("new game: %w", err)
	}
	id := uuid.NewString()
	g.SetID(id)
	if err := u.Storage.Save(ctx, id, g); err != nil {
		return domain.Snapshot{}, fmt.Errorf("save game: %w", err)
	}
	snap := g.Snapshot()
	u.check(ctx, snap)
	u.Metrics.ObserveStart(snap.Status)
	u.refreshActive(ctx)
	u.Logger.Info("game started", "game", id, "seed", seed, "tiles", len(snap.Board))
	return snap, nil
}

// Select forwards a tile selection to the session.
func (u *Service) Select(ctx context.Context, id string, tileID int) (domain.Outcome, domain.Snapshot, error) {
	s, err := u.load(ctx, id)
	if err != nil {
		return domain.OutcomeIgnored, domain.Snapshot{}, err
	}
	out, err := s.Select(ctx, tileID)
	snap := s.Snapshot()
	if err != nil {
		return out, snap, err
	}
	u.Metrics.ObserveSelection(out, snap.Status)
	if out != domain.OutcomeIgnored && snap.Status.Terminal() {
		u.Logger.Info("game over", "game", id, "status", snap.Status, "remaining", snap.Remaining)
	}
	return out, snap, nil
}

// Restart deals a fresh board into an existing session.
func (u *Service) Restart(ctx context.Context, id string, seed int64) (domain.Snapshot, error) {
	s, err := u.load(ctx, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if err := s.Restart(ctx, seed); err != nil {
		return domain.Snapshot{}, fmt.Errorf("restart: %w", err)
	}
	snap := s.Snapshot()
	u.check(ctx, snap)
	u.Metrics.ObserveStart(snap.Status)
	u.Logger.Info("game restarted", "game", id, "seed", seed)
	return snap, nil
}

func (u *Service) State(ctx context.Context, id string) (domain.Snapshot, error) {
	s, err := u.load(ctx, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

func (u *Service) Hint(ctx context.Context, id string) (domain.Hint, bool, error) {
	if u.Hinter == nil {
		return domain.Hint{}, false, errNotConfigured
	}
	s, err := u.load(ctx, id)
	if err != nil {
		return domain.Hint{}, false, err
	}
	return u.Hinter.Hint(ctx, s.Snapshot())
}

// Solve searches for a clearing sequence from the session's current
// position. An unsolvable position or an exhausted budget is reported in
// the result, not as an error.
func (u *Service) Solve(ctx context.Context, id string) (domain.Solution, error) {
	if u.Solver == nil {
		return domain.Solution{}, errNotConfigured
	}
	s, err := u.load(ctx, id)
	if err != nil {
		return domain.Solution{}, err
	}
	snap := s.Snapshot()
	if snap.Status.Terminal() {
		return domain.Solution{Solvable: snap.Status == domain.Won}, nil
	}
	moves, st, err := u.Solver.Solve(ctx, snap.Board, snap.Staging)
	res := domain.Solution{Moves: moves, Nodes: st.Nodes}
	switch {
	case err == nil:
		res.Solvable = true
	case errors.Is(err, solver.ErrUnsolvable):
	case errors.Is(err, solver.ErrBudget):
		res.Exhausted = true
	default:
		return domain.Solution{}, fmt.Errorf("solve: %w", err)
	}
	u.Metrics.ObserveSolve(res)
	u.Logger.Debug("solve", "game", id, "solvable", res.Solvable, "nodes", st.Nodes, "took", st.Duration)
	return res, nil
}

func (u *Service) List(ctx context.Context) ([]domain.GameMeta, error) {
	if u.Storage == nil {
		return nil, errNotConfigured
	}
	return u.Storage.List(ctx)
}

// End drops a session.
func (u *Service) End(ctx context.Context, id string) error {
	if u.Storage == nil {
		return errNotConfigured
	}
	if err := u.Storage.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}
	u.refreshActive(ctx)
	return nil
}

// Sweep drops sessions idle longer than ttl when the storage supports it.
func (u *Service) Sweep(ctx context.Context, ttl time.Duration) int {
	sw, ok := u.Storage.(interface{ Sweep(time.Duration) int })
	if !ok {
		return 0
	}
	n := sw.Sweep(ttl)
	if n > 0 {
		u.Logger.Info("sessions expired", "count", n)
		u.refreshActive(ctx)
	}
	return n
}

func (u *Service) load(ctx context.Context, id string) (ports.Session, error) {
	if u.Storage == nil {
		return nil, errNotConfigured
	}
	s, err := u.Storage.Load(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s, nil
}

// check runs the validator over a fresh board and logs what it finds.
func (u *Service) check(ctx context.Context, snap domain.Snapshot) {
	if u.Validator == nil {
		return
	}
	ok, probs, err := u.Validator.Validate(ctx, snap.Board, snap.Staging)
	if err != nil {
		u.Logger.Warn("validate", "game", snap.ID, "err", err)
		return
	}
	if !ok {
		for _, p := range probs {
			u.Logger.Warn("invalid board", "game", snap.ID, "kind", p.Kind, "msg", p.Message)
		}
	}
}

func (u *Service) refreshActive(ctx context.Context) {
	if u.Metrics == nil || u.Storage == nil {
		return
	}
	list, err := u.Storage.List(ctx)
	if err != nil {
		return
	}
	u.Metrics.SetActive(len(list))
}

func mapNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
