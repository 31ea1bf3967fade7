package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/generator"
	"svw.info/sheep/internal/ports"
)

func at(id int, tt domain.TileType, x, y, layer int) domain.Tile {
	return domain.Tile{ID: id, Type: tt, X: x, Y: y, Width: 40, Height: 40, Layer: layer}
}

func layout(tiles ...domain.Tile) *domain.Layout {
	return &domain.Layout{Field: domain.DefaultField, Tiles: tiles, Remaining: len(tiles)}
}

// stageTypes pushes tiles straight into staging with ids from 1000 up.
func stageTypes(g *Game, types ...domain.TileType) {
	for i, tt := range types {
		g.stage.Append(domain.Tile{ID: 1000 + i, Type: tt})
	}
}

func stagedTypes(s domain.Snapshot) []domain.TileType {
	out := make([]domain.TileType, len(s.Staging))
	for i, t := range s.Staging {
		out[i] = t.Type
	}
	return out
}

type fixedGenerator struct{ l *domain.Layout }

func (f fixedGenerator) Generate(ctx context.Context, seed int64) (*domain.Layout, ports.Stats, error) {
	l := *f.l
	l.Seed = seed
	l.Tiles = append([]domain.Tile(nil), f.l.Tiles...)
	return &l, ports.Stats{Placed: len(l.Tiles)}, nil
}

func TestEmptyBoardWinsImmediately(t *testing.T) {
	g := FromLayout(layout(), Options{})
	assert.Equal(t, domain.Won, g.Status())

	out, err := g.Select(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIgnored, out)
}

func TestSelectMovesTileAndUnblocks(t *testing.T) {
	g := FromLayout(layout(
		at(1, domain.Sheep, 0, 0, 0),
		at(2, domain.Bell, 20, 20, 1),
	), Options{})
	stageTypes(g, domain.Grass, domain.Grass)

	before := g.Snapshot()
	require.True(t, before.Board[0].Blocked)
	require.False(t, before.Board[1].Blocked)

	out, err := g.Select(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeMoved, out)

	s := g.Snapshot()
	require.Len(t, s.Board, 1)
	assert.Equal(t, 1, s.Board[0].ID)
	assert.False(t, s.Board[0].Blocked, "removing the cover unblocks the tile below")
	assert.Equal(t, []domain.TileType{domain.Grass, domain.Grass, domain.Bell}, stagedTypes(s))
	assert.Equal(t, before.Remaining-1, s.Remaining)
	assert.Equal(t, domain.Playing, s.Status)
}

func TestSelectLastTileWithLeftoversLoses(t *testing.T) {
	g := FromLayout(layout(at(1, domain.Sheep, 0, 0, 0)), Options{})
	stageTypes(g, domain.Grass, domain.Grass)

	out, err := g.Select(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeMoved, out)
	s := g.Snapshot()
	assert.Empty(t, s.Board)
	assert.Equal(t, 0, s.Remaining)
	assert.Equal(t, domain.Lost, s.Status)
}

func TestSelectClearsBoardAndWins(t *testing.T) {
	g := FromLayout(layout(
		at(1, domain.Carrot, 0, 0, 0),
		at(2, domain.Carrot, 80, 0, 0),
		at(3, domain.Carrot, 160, 0, 0),
	), Options{})

	for _, id := range []int{1, 2} {
		out, err := g.Select(context.Background(), id)
		require.NoError(t, err)
		require.Equal(t, domain.OutcomeMoved, out)
		require.Equal(t, domain.Playing, g.Status())
	}
	out, err := g.Select(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeEliminated, out)

	s := g.Snapshot()
	assert.Empty(t, s.Staging)
	assert.Equal(t, 0, s.Remaining)
	assert.Equal(t, domain.Won, s.Status)
}

func TestSelectTrailingTriple(t *testing.T) {
	const X, Y = domain.Wool, domain.Clover
	g := FromLayout(layout(at(1, X, 0, 0, 0), at(2, Y, 80, 0, 0)), Options{})
	stageTypes(g, X, Y, X, X)

	out, err := g.Select(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeEliminated, out)
	assert.Equal(t, []domain.TileType{X, Y}, stagedTypes(g.Snapshot()))
}

func TestSelectNonTrailingTripleStays(t *testing.T) {
	const A, B = domain.Bucket, domain.Bell
	g := FromLayout(layout(at(1, A, 0, 0, 0), at(2, B, 80, 0, 0)), Options{})
	stageTypes(g, A, A, B)

	out, err := g.Select(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeMoved, out)
	assert.Equal(t, []domain.TileType{A, A, B, A}, stagedTypes(g.Snapshot()))
}

func TestSelectWithFullStagingLoses(t *testing.T) {
	g := FromLayout(layout(at(1, domain.Sheep, 0, 0, 0), at(2, domain.Sheep, 80, 0, 0)), Options{})
	stageTypes(g, domain.Wool, domain.Grass, domain.Clover, domain.Carrot, domain.Bell, domain.Bucket, domain.Wool)
	before := g.Snapshot()
	require.Len(t, before.Staging, domain.MaxStorage)
	require.Equal(t, domain.Playing, before.Status)

	out, err := g.Select(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOverflow, out)

	after := g.Snapshot()
	assert.Equal(t, domain.Lost, after.Status)
	assert.Equal(t, before.Board, after.Board)
	assert.Equal(t, before.Staging, after.Staging)
	assert.Equal(t, before.Remaining, after.Remaining)

	// terminal: nothing else is accepted
	out, _ = g.Select(context.Background(), 2)
	assert.Equal(t, domain.OutcomeIgnored, out)
}

func TestSelectGuards(t *testing.T) {
	g := FromLayout(layout(at(1, domain.Sheep, 0, 0, 0), at(2, domain.Wool, 20, 20, 1)), Options{})
	before := g.Snapshot()

	for _, id := range []int{1, 99, 0, -3} {
		out, err := g.Select(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeIgnored, out, "tile %d", id)
	}
	assert.Equal(t, before, g.Snapshot())
}

func TestSelectStaleIDAfterRemoval(t *testing.T) {
	g := FromLayout(layout(at(1, domain.Sheep, 0, 0, 0), at(2, domain.Wool, 80, 0, 0)), Options{})
	_, _ = g.Select(context.Background(), 1)
	before := g.Snapshot()
	out, err := g.Select(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIgnored, out)
	assert.Equal(t, before, g.Snapshot())
}

func TestRemovalDelayRejectsConcurrentSelections(t *testing.T) {
	g := FromLayout(layout(at(1, domain.Sheep, 0, 0, 0), at(2, domain.Wool, 80, 0, 0)),
		Options{RemovalDelay: 100 * time.Millisecond})

	var wg sync.WaitGroup
	var first domain.Outcome
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, _ = g.Select(context.Background(), 1)
	}()

	require.Eventually(t, func() bool { return g.Snapshot().Processing }, time.Second, time.Millisecond)
	s := g.Snapshot()
	assert.Equal(t, []int{1}, s.Exiting)
	assert.Len(t, s.Board, 2, "tile stays on the board during the delay")

	out, err := g.Select(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIgnored, out)

	wg.Wait()
	assert.Equal(t, domain.OutcomeMoved, first)
	s = g.Snapshot()
	assert.False(t, s.Processing)
	assert.Empty(t, s.Exiting)
	require.Len(t, s.Board, 1)
	assert.Equal(t, 2, s.Board[0].ID)
}

func TestRemovalDelayCanceled(t *testing.T) {
	g := FromLayout(layout(at(1, domain.Sheep, 0, 0, 0)), Options{RemovalDelay: time.Minute})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	out, err := g.Select(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.OutcomeIgnored, out)

	s := g.Snapshot()
	assert.Len(t, s.Board, 1)
	assert.Empty(t, s.Staging)
	assert.False(t, s.Processing)
	assert.Empty(t, s.Exiting)
}

func TestRestart(t *testing.T) {
	base := layout(at(1, domain.Sheep, 0, 0, 0), at(2, domain.Sheep, 80, 0, 0), at(3, domain.Sheep, 160, 0, 0))
	g, err := New(context.Background(), fixedGenerator{base}, 11, Options{})
	require.NoError(t, err)
	_, _ = g.Select(context.Background(), 1)
	require.Len(t, g.Snapshot().Staging, 1)

	require.NoError(t, g.Restart(context.Background(), 12))
	s := g.Snapshot()
	assert.Equal(t, int64(12), s.Seed)
	assert.Len(t, s.Board, 3)
	assert.Empty(t, s.Staging)
	assert.Equal(t, 3, s.Remaining)
	assert.Equal(t, domain.Playing, s.Status)
}

func TestRestartDuringRemovalDelay(t *testing.T) {
	base := layout(at(1, domain.Sheep, 0, 0, 0), at(2, domain.Wool, 80, 0, 0), at(3, domain.Bell, 160, 0, 0))
	g, err := New(context.Background(), fixedGenerator{base}, 1, Options{RemovalDelay: 150 * time.Millisecond})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var stale, fresh domain.Outcome
	wg.Add(1)
	go func() {
		defer wg.Done()
		stale, _ = g.Select(context.Background(), 1)
	}()
	require.Eventually(t, func() bool { return g.Snapshot().Processing }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, g.Restart(context.Background(), 2))
	s := g.Snapshot()
	assert.False(t, s.Processing, "restart drops the pending selection")
	assert.Empty(t, s.Exiting)
	assert.Len(t, s.Board, 3)

	// the new board takes selections right away
	done := make(chan struct{})
	go func() {
		defer close(done)
		fresh, _ = g.Select(context.Background(), 2)
	}()
	require.Eventually(t, func() bool { return g.Snapshot().Processing }, time.Second, time.Millisecond)
	assert.Equal(t, []int{2}, g.Snapshot().Exiting)

	// the old timer fires first and must leave the new selection alone
	wg.Wait()
	assert.Equal(t, domain.OutcomeIgnored, stale)
	s = g.Snapshot()
	assert.True(t, s.Processing)
	assert.Len(t, s.Board, 3)

	<-done
	assert.Equal(t, domain.OutcomeMoved, fresh)
	s = g.Snapshot()
	assert.False(t, s.Processing)
	require.Len(t, s.Staging, 1)
	assert.Equal(t, 2, s.Staging[0].ID)
	assert.Len(t, s.Board, 2)
}

func TestRestartConcurrentWithSetID(t *testing.T) {
	base := layout(at(1, domain.Sheep, 0, 0, 0))
	g, err := New(context.Background(), fixedGenerator{base}, 1, Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Restart(context.Background(), 3))
		}()
		go func() {
			defer wg.Done()
			g.SetID("game")
		}()
	}
	wg.Wait()
	assert.Equal(t, "game", g.Snapshot().ID)
}

func TestRestartWithoutGenerator(t *testing.T) {
	g := FromLayout(layout(), Options{})
	assert.Error(t, g.Restart(context.Background(), 1))
	_, err := New(context.Background(), nil, 1, Options{})
	assert.Error(t, err)
}

func TestSetID(t *testing.T) {
	g := FromLayout(layout(), Options{})
	g.SetID("abc")
	assert.Equal(t, "abc", g.Snapshot().ID)
}

// Play whole generated boards picking the first free tile and check the
// invariants after every move.
func TestPlaythroughInvariants(t *testing.T) {
	gen := generator.NewLayeredGenerator(domain.DefaultField)
	for seed := int64(1); seed <= 5; seed++ {
		g, err := New(context.Background(), gen, seed, Options{})
		require.NoError(t, err)

		for steps := 0; !g.Status().Terminal(); steps++ {
			require.Less(t, steps, 1000, "game never ended")
			s := g.Snapshot()
			require.Equal(t, len(s.Board), s.Remaining)
			require.LessOrEqual(t, len(s.Staging), domain.MaxStorage)

			pick := -1
			for _, tl := range s.Board {
				if !tl.Blocked {
					pick = tl.ID
					break
				}
			}
			require.NotEqual(t, -1, pick, "playing with no free tile")

			out, err := g.Select(context.Background(), pick)
			require.NoError(t, err)
			require.NotEqual(t, domain.OutcomeIgnored, out)
			if out == domain.OutcomeOverflow {
				require.Equal(t, domain.Lost, g.Status())
			}
		}
	}
}
