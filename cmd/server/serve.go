package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/remaimber-it/interview-coach/internal/api"
	"github.com/remaimber-it/interview-coach/internal/service"
	"github.com/remaimber-it/interview-coach/web"
)

var noUI bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Serve the JSON API, the Swagger UI and the bundled web page; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&noUI, "no-ui", false, "serve only the API and Swagger UI")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel, debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Dependencies ────────────────────────────────────────────────
	db, err := setupStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open session store", "error", err)
		return err
	}
	defer db.Close()

	gateway, err := setupGateway(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create model gateway", "error", err)
		return err
	}

	archive, err := setupArchive(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create resume archive", "error", err)
		return err
	}

	interviews := service.NewInterviewService(db, gateway, setupPrompts(cfg), archive, logger)
	interviews.SetEvaluationWorkers(cfg.LLM.EvaluationWorkers)
	handler := api.NewHandler(interviews, logger)

	opts := api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.SecureCookies,
	}
	if !noUI {
		opts.UI = web.Handler()
	}

	// ── Background sweeper ──────────────────────────────────────────
	go interviews.RunCleanup(ctx, cfg.SessionTTL, cfg.CleanupInterval)

	// ── Server ──────────────────────────────────────────────────────
	// WriteTimeout covers a full report: one evaluation per answer plus the summary.
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           api.NewRouter(handler, opts),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout*11 + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "address", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed to start", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}
	logger.Info("goodbye")
	return nil
}
