package main

import (
	"context"
	"fmt"
	"log"

	common_api "laundry-pos/internal/common/api"
	"laundry-pos/internal/config"
	"laundry-pos/internal/database"
	"laundry-pos/internal/features/audit"
	"laundry-pos/internal/features/auth"
	"laundry-pos/internal/features/invoice"
	sync_feature "laundry-pos/internal/features/sync"
	"laundry-pos/internal/logger"
	"laundry-pos/internal/middleware"
	"laundry-pos/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// NewSyncWorker wires the background worker from its repositories and the
// process configuration.
func NewSyncWorker(configRepo sync_feature.ConfigRepository, queueRepo sync_feature.QueueRepository, invoiceRepo invoice.InvoiceRepository, cfg *config.Config, zl *zap.Logger) *sync_feature.Worker {
	return sync_feature.NewWorker(configRepo, queueRepo, invoiceRepo, nil, cfg.SyncInterval, zl)
}

// StartSyncWorker ties the worker's periodic tick to the app lifecycle.
func StartSyncWorker(lc fx.Lifecycle, worker *sync_feature.Worker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			worker.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			worker.Stop()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			NewFiberServer,

			// Repositories
			audit.NewAuditRepository,
			invoice.NewInvoiceRepository,
			sync_feature.NewConfigRepository,
			sync_feature.NewQueueRepository,

			// Worker
			NewSyncWorker,

			// Services
			audit.NewAuditService,
			auth.NewAuthService,
			invoice.NewInvoiceService,
			sync_feature.NewSyncService,

			// The invoice feature only needs the enqueue slice of the
			// sync service
			func(s sync_feature.SyncService) invoice.SyncEnqueuer { return s },

			// Controllers
			invoice.NewInvoiceController,
			sync_feature.NewSyncController,

			// API Routes
			AsRoute(audit.NewAuditApi),
			AsRoute(auth.NewAuthApi),
			AsRoute(invoice.NewInvoiceApi),
			AsRoute(sync_feature.NewSyncApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) {
				utils.SetSecret(cfg.JWTSecret)
			},
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartSyncWorker,
		),
	)

	app.Run()
}
