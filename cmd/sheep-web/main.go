package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpadapter "svw.info/sheep/internal/adapters/http"
	"svw.info/sheep/internal/config"
	"svw.info/sheep/internal/game"
	"svw.info/sheep/internal/generator"
	"svw.info/sheep/internal/hint"
	"svw.info/sheep/internal/infrastructure/storage"
	"svw.info/sheep/internal/metrics"
	"svw.info/sheep/internal/solver"
	"svw.info/sheep/internal/usecase"
	"svw.info/sheep/internal/validator"
	"svw.info/sheep/web"
)

// statusWriter captures HTTP status and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// requestLogger logs method, path, status, bytes, and duration and feeds
// the request histogram.
func requestLogger(logger *slog.Logger, m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		dur := time.Since(start)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		m.ObserveRequest(r.Method, r.URL.Path, sw.status, dur)
		logger.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"dur", dur.Round(time.Millisecond),
		)
	})
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfgPath := flag.String("config", "", "YAML config file (default $SHEEP_CONFIG)")
	addr := flag.String("addr", "", "listen address, overrides the config")
	levelStr := flag.String("log-level", "", "debug|info|warn|error, overrides the config")
	delay := flag.Duration("removal-delay", -1, "tile removal delay, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *levelStr != "" {
		cfg.Server.LogLevel = *levelStr
	}
	if *delay >= 0 {
		cfg.Game.RemovalDelay = *delay
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Server.Namespace, reg)

	// Wire providers → use cases → HTTP adapter
	g := generator.NewLayeredGenerator(cfg.Game.Field)
	v := validator.New()
	st := storage.NewMemory()
	hin := hint.NewTail()
	sv := solver.NewBacktrackingSolver()
	if cfg.Game.SolverNodes > 0 {
		sv.MaxNodes = cfg.Game.SolverNodes
	}
	uc := usecase.NewService(g, v, hin, sv, st, m, logger, game.Options{RemovalDelay: cfg.Game.RemovalDelay})
	h := httpadapter.New(uc)

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(web.StaticFS())))
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/", web.Index(web.Templates(), cfg.Game.Field))
	h.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           requestLogger(logger, m, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				uc.Sweep(ctx, cfg.Game.SessionTTL)
			}
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.Server.Addr, "field", cfg.Game.Field, "removal_delay", cfg.Game.RemovalDelay)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
