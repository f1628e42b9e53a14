package handlers

import (
	"net/http"
	"strings"

	"budgetflow/internal/domain"
	"budgetflow/internal/http/middleware"
	"budgetflow/internal/utils"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// IssueToken POST /api/auth/token
//
// Sign-in is a user picker: any catalog user can obtain a token.
func (h *Handlers) IssueToken(c *gin.Context) {
	var req tokenRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.Catalog.User(strings.TrimSpace(req.UserID))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	token, exp, err := h.Tokens.Issue(u)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "issue token", Err: err})
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "auth", "issue_token", "user="+u.ID)
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": exp.UTC(), "user": u})
}

// Me GET /api/me
func (h *Handlers) Me(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	u, err := h.Catalog.User(actor.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// Users GET /api/auth/users
//
// Lists the accounts a client can sign in as.
func (h *Handlers) Users(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.Catalog.Users()})
}
