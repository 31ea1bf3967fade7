// Package tui plays a session in a terminal with tcell.
//
// Each grid cell is two columns wide and one row tall, so a tile (2×2
// cells) takes four columns and two rows. Tiles are drawn lowest layer
// first; a click hits the topmost tile under the pointer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/ports"
	"svw.info/sheep/internal/solver"
)

// Board origin on screen.
const (
	originX = 1
	originY = 2
)

var typeColors = [domain.TypeCount]tcell.Color{
	tcell.ColorWhite, tcell.ColorSilver, tcell.ColorGreen, tcell.ColorLime,
	tcell.ColorOrange, tcell.ColorYellow, tcell.ColorAqua,
}

type App struct {
	screen tcell.Screen
	sess   ports.Session
	hinter ports.Hinter
	// Solver backs the s key; nil disables it.
	Solver ports.Solver
	// Seed picks the seed for a restart.
	Seed func() int64

	hintID int
	msg    string
}

func New(screen tcell.Screen, sess ports.Session, hinter ports.Hinter) *App {
	return &App{
		screen: screen,
		sess:   sess,
		hinter: hinter,
		Seed:   func() int64 { return time.Now().UnixNano() },
	}
}

// Run draws and handles events until the player quits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse()
	a.screen.Clear()
	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()
	for {
		a.Draw()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if a.HandleEvent(ctx, ev) {
				return nil
			}
		}
	}
}

// HandleEvent applies one terminal event and reports whether to quit.
func (a *App) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() != tcell.KeyRune:
		case ev.Rune() == 'q':
			return true
		case ev.Rune() == 'r':
			a.hintID = 0
			if err := a.sess.Restart(ctx, a.Seed()); err != nil {
				a.msg = "restart failed: " + err.Error()
			} else {
				a.msg = "new board"
			}
		case ev.Rune() == 'h':
			a.showHint(ctx)
		case ev.Rune() == 's':
			a.solve(ctx)
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return false
		}
		x, y := ev.Position()
		t, ok := TileAt(a.sess.Snapshot(), x, y)
		if !ok {
			return false
		}
		a.selectTile(ctx, t)
	}
	return false
}

func (a *App) selectTile(ctx context.Context, t domain.Tile) {
	out, err := a.sess.Select(ctx, t.ID)
	if err != nil {
		a.msg = err.Error()
		return
	}
	switch out {
	case domain.OutcomeIgnored:
		if t.Blocked {
			a.msg = "that tile is covered"
		}
	case domain.OutcomeEliminated:
		a.msg = fmt.Sprintf("three %s cleared", t.Type)
		a.hintID = 0
	case domain.OutcomeOverflow:
		a.msg = "no room left"
	default:
		a.msg = ""
		a.hintID = 0
	}
}

func (a *App) showHint(ctx context.Context) {
	if a.hinter == nil {
		return
	}
	h, ok, err := a.hinter.Hint(ctx, a.sess.Snapshot())
	switch {
	case err != nil:
		a.msg = err.Error()
	case !ok:
		a.hintID = 0
		a.msg = "no hint"
	default:
		a.hintID = h.TileID
		a.msg = h.Message
	}
}

// solve reports whether the board can still be cleared and highlights
// the first move of a clearing sequence.
func (a *App) solve(ctx context.Context) {
	if a.Solver == nil {
		return
	}
	s := a.sess.Snapshot()
	if s.Status.Terminal() {
		a.msg = "game over"
		return
	}
	moves, st, err := a.Solver.Solve(ctx, s.Board, s.Staging)
	switch {
	case errors.Is(err, solver.ErrUnsolvable):
		a.hintID = 0
		a.msg = "no way out from here"
	case errors.Is(err, solver.ErrBudget):
		a.msg = fmt.Sprintf("gave up after %d positions", st.Nodes)
	case err != nil:
		a.msg = err.Error()
	default:
		a.hintID = moves[0]
		a.msg = fmt.Sprintf("clearable in %d moves", len(moves))
	}
}

// cellOf maps a screen position to grid cell coordinates.
func cellOf(x, y int) (cx, cy int, ok bool) {
	if x < originX || y < originY {
		return 0, 0, false
	}
	return (x - originX) / 2, y - originY, true
}

// TileAt returns the topmost board tile drawn at screen position (x, y).
func TileAt(s domain.Snapshot, x, y int) (domain.Tile, bool) {
	cell := s.Field.CellSize()
	cx, cy, ok := cellOf(x, y)
	if !ok || cell <= 0 {
		return domain.Tile{}, false
	}
	px, py := cx*cell+cell/2, cy*cell+cell/2
	var best domain.Tile
	found := false
	for _, t := range s.Board {
		if px < t.X || px >= t.Right() || py < t.Y || py >= t.Bottom() {
			continue
		}
		if !found || t.Layer > best.Layer {
			best, found = t, true
		}
	}
	return best, found
}

// Draw renders the current snapshot.
func (a *App) Draw() {
	s := a.sess.Snapshot()
	a.screen.Clear()
	put(a.screen, 0, 0, tcell.StyleDefault.Bold(true),
		"sheep  click a free tile · h hint · s solve · r restart · q quit")

	cell := s.Field.CellSize()
	if cell > 0 {
		tiles := append([]domain.Tile(nil), s.Board...)
		sort.SliceStable(tiles, func(i, j int) bool { return tiles[i].Layer < tiles[j].Layer })
		exiting := map[int]bool{}
		for _, id := range s.Exiting {
			exiting[id] = true
		}
		for _, t := range tiles {
			a.drawTile(t, cell, exiting[t.ID])
		}
	}

	row := originY + s.Field.Rows() + 1
	a.drawStaging(s, row)
	status := fmt.Sprintf("status: %s  remaining: %d", s.Status, s.Remaining)
	put(a.screen, originX, row+1, statusStyle(s.Status), status)
	if a.msg != "" {
		put(a.screen, originX, row+2, tcell.StyleDefault, a.msg)
	}
	a.screen.Show()
}

func (a *App) drawTile(t domain.Tile, cell int, exiting bool) {
	x := originX + 2*(t.X/cell)
	y := originY + t.Y/cell
	st := tcell.StyleDefault.Foreground(colorOf(t.Type))
	switch {
	case exiting:
		st = st.Dim(true).Reverse(true)
	case t.ID == a.hintID:
		st = st.Reverse(true).Bold(true)
	case t.Blocked:
		st = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	}
	put(a.screen, x, y, st, fmt.Sprintf("[%c%d]", t.Type.Symbol(), t.Layer))
	put(a.screen, x, y+1, st, "[__]")
}

func (a *App) drawStaging(s domain.Snapshot, row int) {
	put(a.screen, originX, row, tcell.StyleDefault, "stage:")
	x := originX + 7
	for i := 0; i < domain.MaxStorage; i++ {
		st := tcell.StyleDefault
		r := ' '
		if i < len(s.Staging) {
			t := s.Staging[i]
			r = t.Type.Symbol()
			st = st.Foreground(colorOf(t.Type))
		}
		put(a.screen, x, row, st, fmt.Sprintf("[%c]", r))
		x += 3
	}
}

func statusStyle(s domain.Status) tcell.Style {
	switch s {
	case domain.Won:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	case domain.Lost:
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	default:
		return tcell.StyleDefault
	}
}

func colorOf(t domain.TileType) tcell.Color {
	if !t.Valid() {
		return tcell.ColorDefault
	}
	return typeColors[t]
}

func put(s tcell.Screen, x, y int, st tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, st)
		x++
	}
}
