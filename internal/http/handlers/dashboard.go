package handlers

import (
	"net/http"
	"slices"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// ListAnomalies GET /api/anomalies
func (h *Handlers) ListAnomalies(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	flags, err := h.anomalies(c).List(c.Request.Context(), actor)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"anomalies": flags, "count": len(flags)})
}

// ListNotifications GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	list, err := h.notifications(c).List(c.Request.Context(), actor.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

// MarkNotificationRead PUT /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	svc := h.notifications(c)
	id := c.Param("id")
	mine, err := svc.List(c.Request.Context(), actor.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !slices.ContainsFunc(mine, func(n models.Notification) bool { return n.ID == id }) {
		RespondDomainError(c, domain.NotFoundError{Resource: "notification", ID: id})
		return
	}
	if err := svc.MarkRead(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summary GET /api/reports/summary
func (h *Handlers) Summary(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	sum, err := h.Reports.Summary(c.Request.Context(), actor)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Projects GET /api/catalog/projects
func (h *Handlers) Projects(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": h.Catalog.Projects(actor)})
}

// ReturnReasons GET /api/catalog/return-reasons
func (h *Handlers) ReturnReasons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reasons": h.Catalog.ReturnReasons()})
}

// Departments GET /api/catalog/departments
func (h *Handlers) Departments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"departments": h.Catalog.Departments()})
}
