package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
	"budgetflow/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type requestResponse struct {
	models.Request
	StatusLabel  string          `json:"statusLabel"`
	NextStatuses []models.Status `json:"nextStatuses"`
}

func present(actor domain.Actor, req models.Request) requestResponse {
	return requestResponse{
		Request:      req,
		StatusLabel:  req.Status.Label(),
		NextStatuses: services.NextStatuses(req, actor),
	}
}

// ListRequests GET /api/requests?status=&q=
func (h *Handlers) ListRequests(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	filter := services.ListFilter{
		Status: models.Status(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Search: c.Query("q"),
	}
	list, err := h.requests(c).List(c.Request.Context(), actor, filter)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list, "count": len(list)})
}

// CreateRequest POST /api/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var in services.CreateInput
	if !BindJSONOrError(c, &in) {
		return
	}
	req, err := h.requests(c).Create(c.Request.Context(), in, actor)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Location", "/api/requests/"+req.ID)
	c.JSON(http.StatusCreated, present(actor, req))
}

// GetRequest GET /api/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	req, err := h.requests(c).Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, present(actor, req))
}

type transitionRequest struct {
	Target      models.Status    `json:"target" binding:"required"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
}

// Transition POST /api/requests/:id/transitions
func (h *Handlers) Transition(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var body transitionRequest
	if !BindJSONOrError(c, &body) {
		return
	}
	var edits *services.Edits
	if body.Amount != nil || body.Description != nil {
		edits = &services.Edits{Amount: body.Amount, Description: body.Description}
	}
	target := models.Status(strings.ToUpper(strings.TrimSpace(string(body.Target))))
	req, err := h.requests(c).AttemptTransition(c.Request.Context(), c.Param("id"), target, actor, edits)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, present(actor, req))
}

// Return POST /api/requests/:id/return
func (h *Handlers) Return(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var body services.ReturnInput
	if !BindJSONOrError(c, &body) {
		return
	}
	req, err := h.requests(c).ReturnForCorrection(c.Request.Context(), c.Param("id"), actor, body.Reasons, body.Comment)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, present(actor, req))
}

// Resubmit POST /api/requests/:id/resubmit
//
// The body is optional; when present it may carry corrected amount and
// description.
func (h *Handlers) Resubmit(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	edits, ok := bindOptionalEdits(c)
	if !ok {
		return
	}
	req, err := h.requests(c).Resubmit(c.Request.Context(), c.Param("id"), actor, edits)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, present(actor, req))
}

type renameRequest struct {
	NewID string `json:"newId"`
}

// RenameID PUT /api/requests/:id/identifier
func (h *Handlers) RenameID(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var body renameRequest
	if !BindJSONOrError(c, &body) {
		return
	}
	req, err := h.requests(c).RenameID(c.Request.Context(), c.Param("id"), body.NewID, actor)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Location", "/api/requests/"+req.ID)
	c.JSON(http.StatusOK, present(actor, req))
}

// RequestSummaryPDF GET /api/requests/:id/summary.pdf
func (h *Handlers) RequestSummaryPDF(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	pdf, filename, err := h.docs(c).RequestSummaryPDF(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// bindOptionalEdits decodes a resubmission body when one is sent, chunked or
// not. An empty body means no edits.
func bindOptionalEdits(c *gin.Context) (*services.Edits, bool) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil, true
	}
	var edits services.Edits
	if err := c.ShouldBindJSON(&edits); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, true
		}
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return nil, false
	}
	return &edits, true
}
