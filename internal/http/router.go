package api

import (
	stdhttp "net/http"

	intconfig "budgetflow/internal/config"
	h "budgetflow/internal/http/handlers"
	"budgetflow/internal/http/middleware"
	"budgetflow/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(env intconfig.Env, hs *h.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warnf("failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	metrics := gin.WrapH(promhttp.Handler())
	r.GET(env.MetricsPath, metrics)

	api := r.Group("/api")
	{
		api.GET("/health", hs.Health)
		if env.MetricsPath != "/api/metrics" {
			api.GET("/metrics", metrics)
		}
		api.GET("/auth/users", hs.Users)
		api.POST("/auth/token", hs.IssueToken)

		authed := api.Group("", middleware.Authenticate(hs.Tokens, hs.Catalog))
		authed.GET("/me", hs.Me)
		authed.GET("/routes", middleware.RequireRoles("ADMIN"), h.Routes)

		requests := authed.Group("/requests")
		requests.GET("", hs.ListRequests)
		requests.POST("", hs.CreateRequest)
		requests.GET("/:id", hs.GetRequest)
		requests.POST("/:id/transitions", hs.Transition)
		requests.POST("/:id/return", hs.Return)
		requests.POST("/:id/resubmit", hs.Resubmit)
		requests.PUT("/:id/identifier", hs.RenameID)
		requests.GET("/:id/summary.pdf", hs.RequestSummaryPDF)

		authed.GET("/anomalies", hs.ListAnomalies)
		authed.GET("/notifications", hs.ListNotifications)
		authed.PUT("/notifications/:id/read", hs.MarkNotificationRead)
		authed.GET("/reports/summary", hs.Summary)

		catalog := authed.Group("/catalog")
		catalog.GET("/projects", hs.Projects)
		catalog.GET("/return-reasons", hs.ReturnReasons)
		catalog.GET("/departments", hs.Departments)
	}

	h.SetRouter(r)
	return r
}
