package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/localnerve/bootmgr/internal/database"
	"github.com/localnerve/bootmgr/internal/logger"
	"github.com/localnerve/bootmgr/internal/render"
	"github.com/localnerve/bootmgr/internal/server"
	"github.com/localnerve/bootmgr/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  `Migrate the schema and start the HTTP API server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runServe(cmd.Context())
		},
	}
}

func (s *state) runServe(ctx context.Context) error {
	defer logger.Sync()
	cfg := s.cfg

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	renderer := render.NewFileRenderer(cfg.TemplatePath, cfg.MaxTemplateBytes)
	if err := renderer.Check(); err != nil {
		logger.L().Warn("template directory unavailable", zap.String("path", renderer.Root()), zap.Error(err))
	}

	app := server.New(server.Options{
		DB:        db,
		DBType:    cfg.DBType,
		Limits:    services.Limits{MaxNodeset: cfg.MaxNodeset, BatchSize: cfg.BatchSize},
		Renderer:  renderer,
		Templates: renderer,
	})

	// Setup graceful shutdown
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.L().Info("starting server",
			zap.String("address", cfg.Address()),
			zap.String("db_type", cfg.DBType),
			zap.String("template_path", renderer.Root()),
			zap.String("version", Version))
		errChan <- app.Listen(cfg.Address())
	}()

	select {
	case <-ctx.Done():
		logger.L().Info("gracefully shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.L().Info("server stopped")
		return nil

	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
