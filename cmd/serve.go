package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"calendar-sync/core/loader"
	"calendar-sync/core/logger"
	"calendar-sync/core/middleware/auth"
	"calendar-sync/core/middleware/rayid"
	"calendar-sync/feature/calsync"
	"calendar-sync/feature/scheduler"
	"calendar-sync/feature/syncapi"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "calendar-sync/docs/swagger"
)

// @title Calendar Sync API
// @version 1.0
// @description Triggers and inspects calendar feed synchronisation runs.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// serveCmd runs scheduled syncs and exposes the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled syncs and serve the HTTP API",
	Long: `Runs a sync pass on the sync.schedule cron expression and serves
/health, /sync/status and /sync/run. Triggers that arrive while a pass is
running share that pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// 1. Configuration, logger and record store
		d, err := setup(ctx)
		if err != nil {
			return err
		}
		defer d.logger.Sync()
		zap.ReplaceGlobals(d.logger)

		// 2. Scheduler. Locations are resolved on every pass so a driver
		// database created after startup is picked up.
		runner := scheduler.NewRunner(func(ctx context.Context, opts calsync.Options) (*calsync.RunReport, error) {
			loc, err := d.locate(ctx)
			if err != nil {
				return nil, err
			}
			return d.driver(loc).Run(ctx, opts)
		}, d.logger)

		if d.cfg.Sync.Schedule != "" {
			if err := runner.Start(d.cfg.Sync.Schedule); err != nil {
				return err
			}
			defer runner.Stop()
		}

		// 3. HTTP app
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(syncapi.NewFeature(runner, d.logger))

		// RayID first so every log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(d.logger, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger and health stay public
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Use(auth.New(auth.Config{ApiKey: d.cfg.Server.ApiKey, SkipPaths: []string{"/health"}}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		// 4. Start server
		errCh := make(chan error, 1)
		go func() {
			d.logger.Info("Starting server", zap.String("address", d.cfg.Server.Address()))
			errCh <- app.Listen(d.cfg.Server.Address())
		}()

		// 5. Graceful shutdown
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
			d.logger.Info("Shutting down server...")
			return app.Shutdown()
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
