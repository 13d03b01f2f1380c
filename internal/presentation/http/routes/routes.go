package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablebill-api/internal/application/service"
	"github.com/sangkips/tablebill-api/internal/config"
	domainRepo "github.com/sangkips/tablebill-api/internal/domain/repository"
	"github.com/sangkips/tablebill-api/internal/presentation/http/handler"
	"github.com/sangkips/tablebill-api/internal/presentation/http/middleware"
	"github.com/sangkips/tablebill-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Order        *handler.OrderHandler
	Invoice      *handler.InvoiceHandler
	Void         *handler.VoidHandler
	Shift        *handler.ShiftHandler
	Settings     *handler.SettingsHandler
	Printer      *handler.PrinterHandler
	Notification *handler.NotificationHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.TerminalRateLimiter
	Logger          *slog.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWTManager))
	if deps.RateLimiter != nil {
		protected.Use(deps.RateLimiter.Middleware())
	}

	idem := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		Logger: deps.Logger,
	})

	registerOrderRoutes(protected, h, idem)
	registerInvoiceRoutes(protected, h, idem)
	registerVoidRoutes(protected, h)
	registerShiftRoutes(protected, h)
	registerSystemRoutes(protected, h)

	return router
}

func registerOrderRoutes(rg *gin.RouterGroup, h *Handlers, idem gin.HandlerFunc) {
	orders := rg.Group("/orders")
	{
		orders.GET("/open", middleware.RequireAnyPermission(service.ActionManageOrders, service.ActionManageInvoices), h.Order.ListOpen)
		orders.GET("/:id", middleware.RequireAnyPermission(service.ActionManageOrders, service.ActionManageInvoices), h.Order.Get)
		orders.POST("", middleware.RequirePermission(service.ActionManageOrders), h.Order.Open)
		orders.POST("/:id/items", middleware.RequirePermission(service.ActionManageOrders), h.Order.AddItem)
		orders.PATCH("/items/:itemId/status", middleware.RequirePermission(service.ActionManageOrders), h.Order.TransitionItem)
		orders.POST("/:id/checkout", middleware.RequirePermission(service.ActionManageInvoices), idem, h.Order.Checkout)
	}
}

func registerInvoiceRoutes(rg *gin.RouterGroup, h *Handlers, idem gin.HandlerFunc) {
	invoices := rg.Group("/invoices")
	invoices.Use(middleware.RequireAnyPermission(service.ActionManageInvoices, service.ActionCollectPayments))
	{
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.GET("/:id/split-people", h.Invoice.SplitPeople)
		invoices.POST("/merge", middleware.RequirePermission(service.ActionManageInvoices), idem, h.Invoice.Merge)
		invoices.POST("/:id/split", middleware.RequirePermission(service.ActionManageInvoices), idem, h.Invoice.SplitItems)
		invoices.POST("/:id/discount", h.Invoice.Discount)
		invoices.POST("/:id/pay", middleware.RequirePermission(service.ActionCollectPayments), idem, h.Invoice.Pay)
		invoices.POST("/:id/print", h.Printer.PrintInvoice)
	}
}

func registerVoidRoutes(rg *gin.RouterGroup, h *Handlers) {
	voids := rg.Group("/voids")
	{
		voids.GET("/pending", middleware.RequireAnyPermission(service.ActionApproveVoid, service.ActionRequestVoid), h.Void.ListPending)
		voids.POST("", middleware.RequirePermission(service.ActionRequestVoid), h.Void.Request)
		// Approval is authorized by the supervisor credentials in the body,
		// so the terminal session only needs to be a void requester.
		voids.POST("/:id/approve", middleware.RequireAnyPermission(service.ActionRequestVoid, service.ActionApproveVoid), h.Void.Approve)
		voids.POST("/:id/reject", middleware.RequirePermission(service.ActionApproveVoid), h.Void.Reject)
		voids.POST("/direct", middleware.RequirePermission(service.ActionVoidDirect), h.Void.Direct)
	}
}

func registerShiftRoutes(rg *gin.RouterGroup, h *Handlers) {
	shifts := rg.Group("/shifts")
	{
		shifts.POST("", middleware.RequirePermission(service.ActionManageShifts), h.Shift.Open)
		shifts.GET("/current", middleware.RequirePermission(service.ActionManageShifts), h.Shift.Current)
		shifts.POST("/:id/close", middleware.RequirePermission(service.ActionManageShifts), h.Shift.Close)
		shifts.GET("/:id/z-report", middleware.RequireAnyPermission(service.ActionViewReports, service.ActionManageShifts), h.Shift.ZReport)
		shifts.GET("/:id/x-report", middleware.RequireAnyPermission(service.ActionViewReports, service.ActionManageShifts), h.Shift.XReport)
		shifts.POST("/:id/print", middleware.RequireAnyPermission(service.ActionViewReports, service.ActionManageShifts), h.Printer.PrintShiftReport)
	}
}

func registerSystemRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/settings/billing", h.Settings.GetBillingSettings)
	rg.GET("/printer/status", h.Printer.GetStatus)
	rg.GET("/notifications/stream", h.Notification.Stream)
}
