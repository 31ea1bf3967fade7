package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"

	"svw.info/sheep/internal/config"
	"svw.info/sheep/internal/game"
	"svw.info/sheep/internal/generator"
	"svw.info/sheep/internal/hint"
	"svw.info/sheep/internal/solver"
	"svw.info/sheep/internal/tui"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (default $SHEEP_CONFIG)")
	seed := flag.Int64("seed", 0, "board seed (0 = random)")
	logPath := flag.String("log", "", "write debug logs to this file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// The terminal belongs to the game; logs only go to a file if asked.
	var w io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "log:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, err := game.New(ctx, generator.NewLayeredGenerator(cfg.Game.Field), *seed, game.Options{Logger: logger})
	if err != nil {
		fmt.Fprintln(os.Stderr, "new game:", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, "screen:", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "screen:", err)
		os.Exit(1)
	}

	app := tui.New(screen, g, hint.NewTail())
	sv := solver.NewBacktrackingSolver()
	if cfg.Game.SolverNodes > 0 {
		sv.MaxNodes = cfg.Game.SolverNodes
	}
	app.Solver = sv
	err = app.Run(ctx)
	screen.Fini()
	if err != nil && err != context.Canceled {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Info("bye", "status", g.Status())
}
