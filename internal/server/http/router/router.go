package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/metrics"
	"github.com/polkiloo/fueldelivery/internal/server/http/handlers"
	"github.com/polkiloo/fueldelivery/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.DeliveryFacade, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Metrics(m))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	engine.GET("/health", handlers.Health(facade))
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	userHandler := handlers.NewUserHandler(facade)
	notificationHandler := handlers.NewNotificationHandler(facade)

	var (
		staff        = middleware.RequireRoles(model.RoleAdmin, model.RoleApprovalSupervisor, model.RoleMonitoring)
		adminOnly    = middleware.RequireRoles(model.RoleAdmin)
		dispatchers  = middleware.RequireRoles(model.RoleAdmin, model.RoleApprovalSupervisor)
		observers    = middleware.RequireRoles(model.RoleAdmin, model.RoleMonitoring)
		driversOnly  = middleware.RequireRoles(model.RoleDriver)
		authRequired = middleware.AuthRequired(facade)
	)

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(authRequired)
	secured.GET("/me", authHandler.Me)

	orders := secured.Group("/orders")
	orders.POST("/fuel", orderHandler.CreateFuel)
	orders.POST("/product", orderHandler.CreateProduct)
	orders.GET("", orderHandler.List)
	orders.GET("/stats", observers, orderHandler.Stats)
	orders.GET("/:id", orderHandler.Get)
	orders.GET("/fuel/:id", orderHandler.GetKind(model.OrderKindFuel))
	orders.GET("/product/:id", orderHandler.GetKind(model.OrderKindProduct))
	orders.PATCH("/:id/status", staff, orderHandler.ChangeStatus)
	orders.PATCH("/:id/price", adminOnly, orderHandler.SetPrice)
	orders.PATCH("/:id/assign-driver", dispatchers, orderHandler.AssignDriver)
	orders.PATCH("/:id/tracking", driversOnly, orderHandler.Track)
	orders.PATCH("/:id/start", driversOnly, orderHandler.Start)
	orders.PATCH("/:id/complete", driversOnly, orderHandler.Complete)
	orders.PATCH("/:id/cancel", orderHandler.Cancel)

	users := secured.Group("/users")
	users.POST("", adminOnly, userHandler.Create)
	users.GET("", staff, userHandler.List)
	users.GET("/stats", observers, userHandler.Stats)
	users.PATCH("/drivers/manage", dispatchers, userHandler.ManageDriver)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", adminOnly, userHandler.Delete)
	users.PATCH("/:id/role", adminOnly, userHandler.ChangeRole)
	users.PATCH("/:id/approve-profile", dispatchers, userHandler.ReviewProfile)

	notifications := secured.Group("/notifications")
	notifications.GET("/my-notifications", notificationHandler.Mine)
	notifications.GET("/stats", notificationHandler.MyStats)
	notifications.PATCH("/:id/read", notificationHandler.MarkRead)
	notifications.PATCH("/mark-all-read", notificationHandler.MarkAllRead)
	notifications.POST("", observers, notificationHandler.SendToUser)
	notifications.POST("/send-to-user", observers, notificationHandler.SendToUser)
	notifications.POST("/send-to-group", observers, notificationHandler.SendToGroup)
	notifications.DELETE("/:id", observers, notificationHandler.Delete)
	notifications.GET("/admin/stats", observers, notificationHandler.AdminStats)

	return engine
}
