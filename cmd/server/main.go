package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/memberdesk/internal/config"
	"github.com/JonMunkholm/memberdesk/internal/core"
	_ "github.com/JonMunkholm/memberdesk/internal/core/datasets" // Register all datasets
	"github.com/JonMunkholm/memberdesk/internal/logging"
	"github.com/JonMunkholm/memberdesk/internal/pdfdoc"
	"github.com/JonMunkholm/memberdesk/internal/store"
	"github.com/JonMunkholm/memberdesk/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	pool, err := store.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	db := store.New(pool)
	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	asm, err := newAssembler(cfg.Report)
	if err != nil {
		slog.Error("invalid report configuration", "error", err)
		os.Exit(1)
	}

	service := core.NewService(db, core.Options{
		MaxFileSize:    cfg.Import.MaxFileSize,
		MaxConcurrent:  cfg.Import.MaxConcurrent,
		MaxWaitTime:    cfg.Import.MaxWaitTime,
		ImportTimeout:  cfg.Import.Timeout,
		PreviewSamples: cfg.Import.PreviewSamples,
		Assembler:      asm,
	})
	slog.Info("datasets registered", "count", core.Count())

	server := web.NewServer(service, cfg, db)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartHistoryPruner(jobCtx, core.RetentionConfig{
		MaxAge:   cfg.Import.HistoryMaxAge,
		Interval: cfg.Import.HistoryPruneInterval,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.ImportLimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newAssembler builds the document assembler from the report settings.
func newAssembler(cfg config.ReportConfig) (*pdfdoc.Assembler, error) {
	overflow, err := pdfdoc.ParseOverflowPolicy(cfg.Overflow)
	if err != nil {
		return nil, err
	}

	opts := []pdfdoc.Option{
		pdfdoc.WithWrapWidth(cfg.WrapWidth),
		pdfdoc.WithMaxLines(cfg.MaxLines),
		pdfdoc.WithOverflow(overflow),
	}
	if cfg.Language != "" {
		tag, err := language.Parse(cfg.Language)
		if err != nil {
			return nil, fmt.Errorf("report language %q: %w", cfg.Language, err)
		}
		opts = append(opts, pdfdoc.WithLanguage(tag))
	}
	return pdfdoc.New(opts...), nil
}
