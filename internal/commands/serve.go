package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/securebank-dev/ledger/internal/config"
	"github.com/securebank-dev/ledger/internal/history"
	"github.com/securebank-dev/ledger/internal/ledger"
	"github.com/securebank-dev/ledger/internal/server"
	"github.com/securebank-dev/ledger/internal/session"
	"github.com/securebank-dev/ledger/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger HTTP daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.LogLevel)

	st, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	engine := ledger.NewEngine(st, cfg.Limits.DailyWithdrawLimit())
	sessions := session.NewManager(st, session.Options{
		MaxAttempts: cfg.Auth.MaxAttempts,
		IdleTimeout: cfg.Auth.IdleTimeout(),
		LoginDelay:  cfg.Auth.LoginDelay(),
	})
	srv := server.New(engine, sessions, history.NewLog(st), logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Expired sessions are also caught lazily on Validate; the sweeper
	// just keeps the table from accumulating abandoned ones.
	go sessions.Run(ctx, cfg.Auth.IdleTimeout()/2)

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledger daemon listening", "addr", cfg.Addr, "db", cfg.DBPath)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	if level == "debug" {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
