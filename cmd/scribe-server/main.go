package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medscribe/scribe/internal/config"
	"github.com/medscribe/scribe/internal/domain/scribe"
	"github.com/medscribe/scribe/internal/platform/db"
	"github.com/medscribe/scribe/internal/platform/llm"
	"github.com/medscribe/scribe/internal/platform/middleware"
)

const (
	connectTimeout = 15 * time.Second
	seedTimeout    = 10 * time.Second
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "scribe-server",
		Short:        "Clinical transcript to SOAP note API server",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file loaded before reading configuration")

	rootCmd.AddCommand(serveCmd(&envFile))
	rootCmd.AddCommand(seedCmd(&envFile))
	rootCmd.AddCommand(historyCmd(&envFile))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(*envFile)
		},
	}
}

func seedCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample notes into an empty history store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}

			ctx := context.Background()
			store, backend, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			inserted, err := scribe.Seed(ctx, store, time.Now())
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			if inserted > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s history with %d sample note(s).\n", backend, inserted)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "History is not empty; nothing seeded.")
			}
			return nil
		},
	}
}

func historyCmd(envFile *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print stored notes, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}

			ctx := context.Background()
			store, _, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			items, err := store.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}
			printHistory(cmd.OutOrStdout(), items, limit)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of notes to print (0 for all)")
	return cmd
}

func printHistory(w io.Writer, items []*scribe.NoteRecord, limit int) {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	fmt.Fprintf(w, "%-20s %-26s %-16s %s\n", "RECORDED AT", "ID", "PATIENT", "ASSESSMENT")
	fmt.Fprintln(w, "-------------------- -------------------------- ---------------- ----------------------------------------")
	for _, n := range items {
		fmt.Fprintf(w, "%-20s %-26s %-16s %s\n",
			n.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			truncate(n.ID, 26),
			truncate(n.PatientID, 16),
			truncate(assessmentLine(n.SOAPNote), 40))
	}
	fmt.Fprintf(w, "%d note(s)\n", len(items))
}

// assessmentLine returns the "A:" line of a SOAP note, or its first line.
func assessmentLine(note string) string {
	lines := strings.Split(strings.TrimSpace(note), "\n")
	for _, l := range lines {
		t := strings.TrimSpace(strings.ReplaceAll(l, "*", ""))
		if strings.HasPrefix(t, "A:") {
			return strings.TrimSpace(strings.TrimPrefix(t, "A:"))
		}
	}
	if len(lines) > 0 {
		return strings.TrimSpace(lines[0])
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func newLogger(dev bool) zerolog.Logger {
	if dev {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// openStore connects to the history store selected by the DATABASE_URL scheme.
func openStore(ctx context.Context, cfg *config.Config) (scribe.HistoryRepository, string, error) {
	backend, err := cfg.StoreBackend()
	if err != nil {
		return nil, "", err
	}

	switch backend {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, backend, err
		}
		store, err := scribe.NewHistoryRepoPG(ctx, pool, cfg.HistoryCollection)
		if err != nil {
			pool.Close()
			return nil, backend, err
		}
		return store, backend, nil
	default:
		store, err := scribe.NewHistoryRepoMongo(ctx, cfg.DatabaseURL, cfg.DatabaseName, cfg.HistoryCollection)
		if err != nil {
			return nil, backend, err
		}
		return store, backend, nil
	}
}

// seedOnStart seeds an empty store within timeout. Failures are logged and do
// not stop the server.
func seedOnStart(ctx context.Context, store scribe.HistoryRepository, logger zerolog.Logger, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	inserted, err := scribe.Seed(ctx, store, time.Now())
	if err != nil {
		logger.Warn().Err(err).Msg("failed to seed history")
		return 0
	}
	if inserted > 0 {
		logger.Info().Int("notes", inserted).Msg("seeded empty history with sample notes")
	}
	return inserted
}

func runServer(envFile string) error {
	// Config
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Logger
	logger := newLogger(cfg.IsDev())

	// History store
	ctx := context.Background()
	connectCtx, cancelConnect := context.WithTimeout(ctx, connectTimeout)
	store, backend, err := openStore(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to history store")
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("failed to close history store")
		}
	}()
	logger.Info().Str("store", backend).Str("database", cfg.DatabaseName).Msg("connected to history store")

	seedOnStart(ctx, store, logger, seedTimeout)

	// Note generator
	generator, err := llm.New(ctx, llm.Options{
		Demo:      cfg.IsDemoMode(),
		DemoNote:  scribe.DemoSOAPNote,
		DemoDelay: cfg.DemoDelay,
		Provider:  cfg.LLMProvider,
		APIKey:    cfg.GeminiAPIKey,
		Model:     cfg.LLMModel,
		BaseURL:   cfg.LLMBaseURL,
		Timeout:   cfg.LLMTimeout,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to configure note generator")
		return err
	}
	if cfg.IsDemoMode() {
		logger.Warn().Msg("GEMINI_API_KEY not set; serving the demo SOAP note")
	} else {
		logger.Info().Str("provider", cfg.LLMProvider).Str("model", cfg.LLMModel).Msg("note generator ready")
	}

	e := newServer(cfg, logger, store, backend, generator)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("mode", cfg.Mode()).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer builds the echo instance with middleware and all routes.
func newServer(cfg *config.Config, logger zerolog.Logger, store scribe.HistoryRepository, backend string, generator scribe.NoteGenerator) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderContentType, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "ok",
			"mode":   cfg.Mode(),
			"store":  backend,
		})
	})
	e.GET("/health/db", db.HealthHandler(store, backend))

	// Scribe API
	svc := scribe.NewService(generator, store, logger)
	scribe.NewHandler(svc, logger).RegisterRoutes(e.Group("/api"))

	return e
}
