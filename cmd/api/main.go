package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablebill-api/internal/application/service"
	"github.com/sangkips/tablebill-api/internal/config"
	"github.com/sangkips/tablebill-api/internal/infrastructure/database"
	"github.com/sangkips/tablebill-api/internal/infrastructure/messaging"
	"github.com/sangkips/tablebill-api/internal/infrastructure/repository"
	"github.com/sangkips/tablebill-api/internal/presentation/http/handler"
	"github.com/sangkips/tablebill-api/internal/presentation/http/middleware"
	"github.com/sangkips/tablebill-api/internal/presentation/http/routes"
	"github.com/sangkips/tablebill-api/pkg/logger"
	"github.com/sangkips/tablebill-api/pkg/notify"
	"github.com/sangkips/tablebill-api/pkg/printer"
	"github.com/sangkips/tablebill-api/pkg/utils"
	"golang.org/x/sync/errgroup"
)

const idempotencySweepInterval = time.Hour

// defaultGrants are the roles seeded on first start
var defaultGrants = []database.RoleGrant{
	{Role: service.RoleManager, Permissions: service.Actions},
	{Role: "cashier", Permissions: []string{
		service.ActionManageInvoices,
		service.ActionCollectPayments,
		service.ActionManageShifts,
		service.ActionRequestVoid,
		service.ActionViewReports,
	}},
	{Role: "waiter", Permissions: []string{
		service.ActionManageOrders,
		service.ActionRequestVoid,
	}},
}

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Component:   cfg.App.Name,
		Environment: cfg.App.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		return err
	}

	if err := database.AutoMigrate(db, log); err != nil {
		return err
	}

	if err := database.SeedDefaultData(db, defaultGrants, cfg.Admin, service.RoleManager, log); err != nil {
		log.Warn("failed to seed default data", "error", err)
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	stores := service.Stores{
		Tx:       repository.NewTransactor(db),
		Orders:   repository.NewOrderRepository(db),
		Items:    repository.NewOrderItemRepository(db),
		Invoices: repository.NewInvoiceRepository(db),
		Shifts:   repository.NewShiftRepository(db),
		Payments: repository.NewPaymentRepository(db),
		Voids:    repository.NewVoidRequestRepository(db),
		Dishes:   repository.NewDishRepository(db),
		Staff:    repository.NewStaffRepository(db),
		Settings: repository.NewSettingsRepository(db),
		Audit:    repository.NewAuditRepository(db),
	}
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Notifications go to connected terminals and, when configured, the broker
	hub := notify.NewHub(cfg.Notify.BufferSize)
	publishers := notify.Multi{hub}
	if cfg.Notify.RabbitMQURL != "" {
		broker, err := messaging.NewRabbitMQPublisher(cfg.Notify.RabbitMQURL, cfg.Notify.Exchange, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, notifications stay local", "error", err)
		} else {
			defer broker.Close()
			publishers = append(publishers, broker)
		}
	}

	// Initialize services
	billing := service.NewBilling(stores, cfg.Billing, publishers, log)
	orderService := service.NewOrderService(billing)
	invoiceService := service.NewInvoiceService(billing)
	voidService := service.NewVoidService(billing)
	shiftService := service.NewShiftService(billing)
	settingsService := service.NewSettingsService(billing)

	// Initialize thermal printer
	thermalPrinter, err := printer.New(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warn("failed to initialize printer", "error", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	printerService := service.NewPrinterService(thermalPrinter, invoiceService, shiftService, cfg.Printer, log)

	handlers := &routes.Handlers{
		Order:        handler.NewOrderHandler(orderService),
		Invoice:      handler.NewInvoiceHandler(invoiceService),
		Void:         handler.NewVoidHandler(voidService),
		Shift:        handler.NewShiftHandler(shiftService),
		Settings:     handler.NewSettingsHandler(settingsService),
		Printer:      handler.NewPrinterHandler(printerService),
		Notification: handler.NewNotificationHandler(hub),
	}

	limiter := middleware.NewTerminalRateLimiter(
		middleware.RateLimiterConfigFromWindow(cfg.RateLimit.Requests, cfg.RateLimit.Duration),
	)

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     limiter,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", "name", cfg.App.Name, "port", cfg.App.Port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(idempotencySweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				n, err := idempotencyRepo.DeleteExpired(gctx)
				if err != nil {
					log.Warn("idempotency sweep failed", "error", err)
					continue
				}
				if n > 0 {
					log.Info("expired idempotency keys removed", "count", n)
				}
			}
		}
	})

	return g.Wait()
}
