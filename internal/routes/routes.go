package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dompet-pay/dompet_pay/internal/account"
	"github.com/dompet-pay/dompet_pay/internal/config"
	"github.com/dompet-pay/dompet_pay/internal/ledger"
	"github.com/dompet-pay/dompet_pay/internal/middleware"
	"github.com/dompet-pay/dompet_pay/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Storage backends. The in-memory store backs both the account repository
	// and the ledger store so cascade deletes and atomic commits share state.
	var (
		accountRepo account.Repository
		store       ledger.Store
	)
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
		store = ledger.NewPostgresStore(d.DB)
	} else {
		mem := ledger.NewMemoryStore()
		accountRepo = mem
		store = mem
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	accountSvc := account.NewService(accountRepo)
	ledgerSvc := ledger.NewService(store, notifier)

	accountHandler := account.NewHandler(accountSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAccountRoutes(api, accountHandler)

	rateLimiter := middleware.MutationRateLimit(d.Cache, d.Cfg.TxnRateLimit)
	RegisterTransactionRoutes(api, ledgerHandler, rateLimiter)

	return nil
}
