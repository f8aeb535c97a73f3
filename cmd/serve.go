package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vetclinic-backend/clock"
	"vetclinic-backend/config"
	"vetclinic-backend/controllers"
	"vetclinic-backend/database"
	"vetclinic-backend/metrics"
	"vetclinic-backend/middlewares"
	"vetclinic-backend/routes"
	"vetclinic-backend/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer shutdown(log, db)

		if err := database.Migrate(db); err != nil {
			return err
		}

		if cfg.JWTSecret == "" {
			cfg.JWTSecret = uuid.NewString()
			log.Warn("JWT secret not configured, using a random one; tokens will not survive a restart")
		}

		app := NewApp(cfg, db, log, metrics.New(cfg.AppName), clock.System())

		errCh := make(chan error, 1)
		go func() {
			log.Info("API server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
			errCh <- app.Listen(":" + cfg.Port)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("listen: %w", err)
		case sig := <-quit:
			log.Info("shutting down", zap.String("signal", sig.String()))
		}
		return app.ShutdownWithTimeout(10 * time.Second)
	},
}

// NewApp builds the fiber application with the full middleware chain.
func NewApp(cfg config.Config, db *gorm.DB, log *zap.Logger, m *metrics.Metrics, clk clock.Clock) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middlewares.NewErrorHandler(log, cfg.IsProduction()),
		BodyLimit:             cfg.BodyLimitBytes,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middlewares.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-Id",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Duration(cfg.RateLimitWindow) * time.Second,
	}))

	auth := middlewares.NewAuth(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	h := controllers.NewHandler(services.New(db, clk, log, m), auth, clk, log)
	routes.Register(app, h, auth, db, m, log)
	return app
}
