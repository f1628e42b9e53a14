package handlers

import (
	"budgetflow/internal/http/middleware"
	"budgetflow/internal/repositories"
	"budgetflow/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers binds the HTTP routes to the workflow services.
type Handlers struct {
	Requests      services.RequestService
	Notifications services.NotificationService
	Anomalies     services.AnomalyService
	Reports       services.ReportsService
	Docs          services.DocsService
	Catalog       *repositories.Catalog
	Tokens        middleware.TokenIssuer
	StoreDriver   string
}

func (h *Handlers) requests(c *gin.Context) services.RequestService {
	return h.Requests.WithRequestID(middleware.GetRequestID(c))
}

func (h *Handlers) notifications(c *gin.Context) services.NotificationService {
	svc := h.Notifications
	svc.RequestID = middleware.GetRequestID(c)
	return svc
}

func (h *Handlers) anomalies(c *gin.Context) services.AnomalyService {
	svc := h.Anomalies
	svc.RequestID = middleware.GetRequestID(c)
	return svc
}

func (h *Handlers) docs(c *gin.Context) services.DocsService {
	svc := h.Docs
	svc.RequestID = middleware.GetRequestID(c)
	svc.Requests = svc.Requests.WithRequestID(svc.RequestID)
	return svc
}
