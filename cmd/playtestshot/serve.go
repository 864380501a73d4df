package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/playtestshot/internal/api"
	"github.com/example/playtestshot/internal/session"
)

// serveCmd runs the HTTP annotation host.
type serveCmd struct {
	*root
	fs *flag.FlagSet

	listen     string
	token      string
	store      string
	allowFiles bool
}

func (s *serveCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	s := &serveCmd{root: r, fs: fs}
	fs.Usage = usageFunc(s)
	cfg := r.config
	fs.StringVar(&s.listen, "listen", cfg.Server.Listen, "address to listen on")
	fs.StringVar(&s.token, "token", cfg.Server.Token, "bearer token required on /api (empty disables auth)")
	fs.StringVar(&s.store, "store", cfg.Store, "comment store: \"memory\" or a SQLite file")
	fs.BoolVar(&s.allowFiles, "allow-files", cfg.Editor.AllowFiles, "allow local file paths as image sources")
	if err := fs.Parse(args); err != nil {
		return nil, &UsageError{of: s}
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: s}
	}
	return s, nil
}

func (s *serveCmd) Run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: s.config.Server.Level(),
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", s.listen),
		slog.String("store", s.store),
		slog.Bool("auth", s.token != ""),
		slog.Int("max_width", s.config.Editor.MaxWidth),
		slog.Int("max_height", s.config.Editor.MaxHeight))

	store, err := openStore(s.store)
	if err != nil {
		return err
	}
	defer closeWithLog("store", store)

	svc := s.service(store)
	sessions := session.NewManager(svc, s.resolver(s.allowFiles),
		session.WithLogger(logger),
		session.WithShellOptions(s.shellOptions(logger)...))
	defer sessions.Close()

	httpServer := &http.Server{
		Addr:              s.listen,
		Handler:           api.NewRouter(sessions, svc, s.token, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", s.listen))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// open event streams only end when their sessions close
		sessions.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server stopped successfully")
	return nil
}
