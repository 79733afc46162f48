package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/stockledger/internal/api/handlers"
	"github.com/andresuchdata/stockledger/internal/api/middleware"
	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(svc *service.LedgerService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Unread-Count", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if svc == nil {
		return router
	}

	apiGroup := router.Group("/api/v1")

	inventory := handlers.NewInventoryHandler(svc)
	products := apiGroup.Group("/products")
	{
		products.GET("", inventory.ListProducts)
		products.POST("", inventory.CreateProduct)
		products.GET("/:id", inventory.GetProduct)
		products.PUT("/:id", inventory.UpdateProduct)
		products.DELETE("/:id", inventory.DeleteProduct)
		products.GET("/:id/velocity", inventory.ProductVelocity)
	}
	locations := apiGroup.Group("/locations")
	{
		locations.GET("", inventory.ListLocations)
		locations.POST("", inventory.CreateLocation)
		locations.PUT("/:id", inventory.UpdateLocation)
		locations.DELETE("/:id", inventory.DeleteLocation)
	}
	stock := apiGroup.Group("/stock")
	{
		stock.GET("/partition", inventory.StockPartition)
		stock.GET("/drift", inventory.PartitionDrift)
		stock.POST("/transfer", inventory.Transfer)
		stock.POST("/write-off", inventory.WriteOff)
	}
	suppliers := apiGroup.Group("/suppliers")
	{
		suppliers.GET("", inventory.ListSuppliers)
		suppliers.POST("", inventory.CreateSupplier)
		suppliers.PUT("/:id", inventory.UpdateSupplier)
		suppliers.DELETE("/:id", inventory.DeleteSupplier)
	}

	orders := handlers.NewOrderHandler(svc)
	orderGroup := apiGroup.Group("/orders")
	{
		orderGroup.GET("", orders.ListOrders)
		orderGroup.POST("", orders.CreateOrder)
		orderGroup.PATCH("/:id/status", orders.UpdateOrderStatus)
	}
	poGroup := apiGroup.Group("/purchase-orders")
	{
		poGroup.GET("", orders.ListPurchaseOrders)
		poGroup.POST("", orders.CreatePurchaseOrder)
		poGroup.POST("/:id/receive", orders.ReceivePurchaseOrder)
		poGroup.POST("/:id/delay", orders.DelayPurchaseOrder)
		poGroup.POST("/overdue-check", orders.CheckOverdue)
	}
	returns := apiGroup.Group("/returns")
	{
		returns.GET("", orders.ListReturns)
		returns.POST("", orders.CreateReturn)
		returns.POST("/:id/resolve", orders.ResolveReturn)
	}

	feed := handlers.NewFeedHandler(svc)
	apiGroup.GET("/activities", feed.ListActivities)
	notifications := apiGroup.Group("/notifications")
	{
		notifications.GET("", feed.ListNotifications)
		notifications.POST("", feed.CreateNotification)
		notifications.POST("/read-all", feed.MarkAllRead)
		notifications.POST("/:id/read", feed.MarkRead)
		notifications.DELETE("/:id", feed.DeleteNotification)
	}

	taskHandler := handlers.NewTaskHandler(svc)
	tasks := apiGroup.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	analyticsHandler := handlers.NewAnalyticsHandler(svc)
	analyticsGroup := apiGroup.Group("/analytics")
	{
		analyticsGroup.GET("/dashboard", analyticsHandler.GetDashboard)
		analyticsGroup.GET("/products/:id", analyticsHandler.GetProductAnalysis)
		analyticsGroup.GET("/aging", analyticsHandler.GetAging)
		analyticsGroup.GET("/reorder", analyticsHandler.GetReorderSuggestions)
		analyticsGroup.GET("/suppliers", analyticsHandler.GetSupplierPerformance)
		analyticsGroup.GET("/po-aging", analyticsHandler.GetPOAging)
		analyticsGroup.GET("/status-summary", analyticsHandler.GetStatusSummary)
		analyticsGroup.GET("/financials", analyticsHandler.GetFinancials)
		analyticsGroup.GET("/copilot", analyticsHandler.GetCopilotInsights)
		analyticsGroup.POST("/copilot/:id/dismiss", analyticsHandler.DismissCopilotInsight)
	}
	insights := apiGroup.Group("/insights")
	{
		insights.GET("", analyticsHandler.GetInsights)
		insights.GET("/quick", analyticsHandler.GetQuickInsights)
	}

	reportHandler := handlers.NewReportHandler(svc)
	reportGroup := apiGroup.Group("/reports")
	{
		reportGroup.GET("", reportHandler.ListReports)
		reportGroup.POST("", reportHandler.GenerateReport)
		reportGroup.DELETE("", reportHandler.ClearReports)
		reportGroup.GET("/:id/download", reportHandler.DownloadReport)
		reportGroup.PATCH("/:id", reportHandler.RenameReport)
		reportGroup.DELETE("/:id", reportHandler.DeleteReport)
	}

	snapshots := handlers.NewSnapshotHandler(svc)
	apiGroup.GET("/snapshot", snapshots.Export)
	apiGroup.PUT("/snapshot", snapshots.Import)

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
