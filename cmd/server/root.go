package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remaimber-it/interview-coach/internal/infrastructure/config"
	"github.com/remaimber-it/interview-coach/internal/llm"
	"github.com/remaimber-it/interview-coach/internal/prompts"
	"github.com/remaimber-it/interview-coach/internal/resume"
	"github.com/remaimber-it/interview-coach/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "interview-coach",
	Short: "AI mock interview assistant",
	Long:  "Interview Coach runs practice interviews: the model asks questions, evaluates answers and writes a hiring summary.",
	// With no subcommand the HTTP server starts.
	RunE:         runServe,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: INTERVIEW_COACH_CONFIG env var or ./config.yaml when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path > INTERVIEW_COACH_CONFIG > ./config.yaml if it exists > env only.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("INTERVIEW_COACH_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return config.Load(path)
}

func setupLogger(level string, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Info("using in-memory session store")
		return store.NewMemory(), nil
	default:
		logger.Info("using sqlite session store", "path", cfg.Store.Path)
		return store.NewSQLite(cfg.Store.Path)
	}
}

func setupGateway(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Gateway, error) {
	if msg := cfg.LLM.MissingCredential(); msg != "" {
		logger.Warn("model gateway not configured", "provider", cfg.LLM.Provider, "reason", msg)
	}
	g, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("model gateway: %w", err)
	}
	logger.Info("model gateway ready", "gateway", g.Name())
	return g, nil
}

func setupArchive(ctx context.Context, cfg *config.Config, logger *slog.Logger) (resume.Archive, error) {
	a := cfg.ResumeArchive
	if a.Bucket == "" {
		return resume.NopArchive{}, nil
	}
	archive, err := resume.NewS3Archive(ctx, resume.S3Config{
		Bucket:    a.Bucket,
		Prefix:    a.Prefix,
		Region:    a.Region,
		Endpoint:  a.Endpoint,
		AccessKey: a.AccessKey,
		SecretKey: a.SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("resume archive: %w", err)
	}
	logger.Info("archiving resumes", "bucket", a.Bucket, "prefix", a.Prefix)
	return archive, nil
}

func setupPrompts(cfg *config.Config) *prompts.Builder {
	return prompts.NewBuilder(cfg.Prompts)
}
