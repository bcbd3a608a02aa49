package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"huntboard/internal/api/handler"
	"huntboard/internal/api/middleware"
	"huntboard/internal/metrics"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Webhooks  *handler.WebhookHandler
	Workflows *handler.WorkflowHandler
	Products  *handler.ProductHandler
	Analysis  *handler.AnalysisHandler
	Stats     *handler.StatsHandler
	Health    *handler.HealthHandler
}

// NewRouter wires the middleware chain and every route. Webhook paths are
// unauthenticated; workflows require an admin; products, analysis and stats
// need any authenticated caller.
func NewRouter(h Handlers, auth *middleware.Authenticator, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		metrics.Middleware(),
	)

	r.GET("/healthz", h.Health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/products", h.Webhooks.Products)
		webhooks.GET("/products", h.Webhooks.Probe)
		webhooks.POST("/analysis", h.Webhooks.Analysis)
		webhooks.GET("/analysis", h.Webhooks.Probe)
		webhooks.POST("/executions", h.Webhooks.Executions)
		webhooks.GET("/executions", h.Webhooks.Probe)
	}

	authed := api.Group("", auth.Authenticate())

	workflows := authed.Group("/workflows", auth.RequireAdmin())
	{
		workflows.GET("", h.Workflows.List)
		workflows.POST("", h.Workflows.Create)
		workflows.GET("/:id", h.Workflows.Get)
		workflows.PUT("/:id", h.Workflows.Update)
		workflows.DELETE("/:id", h.Workflows.Delete)
		workflows.POST("/:id/run", h.Workflows.Run)
		workflows.GET("/:id/executions", h.Workflows.Executions)
	}

	products := authed.Group("/products")
	{
		products.GET("", h.Products.List)
		products.POST("", h.Products.Create)
		products.GET("/:id", h.Products.Get)
		products.PUT("/:id", h.Products.Update)
		products.DELETE("/:id", h.Products.Delete)
	}

	analysis := authed.Group("/analysis")
	{
		analysis.GET("", h.Analysis.List)
		analysis.GET("/:id", h.Analysis.Get)
	}

	authed.GET("/admin/stats", h.Stats.Get)

	return r
}
