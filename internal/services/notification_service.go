package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
	"budgetflow/internal/repositories"
	"budgetflow/internal/utils"

	"github.com/google/uuid"
)

// NotificationService routes workflow events to a recipient and records them.
type NotificationService struct {
	Store            repositories.Store
	AdminRecipientID string
	Clock            func() time.Time
	NewID            func() string
	RequestID        string
}

func (s NotificationService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s NotificationService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// Recipient applies the routing rule: administrators' actions notify the
// request owner, everyone else's notify the administrative recipient.
func (s NotificationService) Recipient(actor domain.Actor, req models.Request) string {
	if actor.IsAdmin() {
		return req.RequesterID
	}
	return s.AdminRecipientID
}

func (s NotificationService) build(userID, requestID, message string, sev models.Severity) models.Notification {
	return models.Notification{
		ID:        s.newID(),
		UserID:    userID,
		RequestID: requestID,
		Message:   message,
		Timestamp: s.now(),
		Read:      false,
		Severity:  sev,
	}
}

// ForTransition builds the notification for a committed transition.
func (s NotificationService) ForTransition(actor domain.Actor, req models.Request, rule transitionRule) models.Notification {
	label := rule.To.Label()
	var msg string
	switch {
	case rule.To == models.StatusReturned:
		msg = fmt.Sprintf("Request %s was returned for correction. Please review the reasons.", req.ID)
	case rule.From == models.StatusReturned:
		msg = fmt.Sprintf("Request %s was corrected and resubmitted as %s by %s", req.ID, label, actor.Name)
	case actor.IsAdmin():
		msg = fmt.Sprintf("Request %s changed status to %s", req.ID, label)
	default:
		msg = fmt.Sprintf("Request %s was updated to %s by %s", req.ID, label, actor.Name)
	}
	return s.build(s.Recipient(actor, req), req.ID, msg, rule.Severity)
}

// ForCreation notifies the administrative recipient about a new request.
func (s NotificationService) ForCreation(actor domain.Actor, req models.Request) models.Notification {
	msg := fmt.Sprintf("New request: %s (%s) from %s", req.Title, req.ID, actor.Name)
	return s.build(s.AdminRecipientID, req.ID, msg, models.SeverityInfo)
}

// ForRename confirms an identifier change to the acting administrator.
func (s NotificationService) ForRename(actor domain.Actor, oldID, newID string) models.Notification {
	msg := fmt.Sprintf("Request identifier changed from %s to %s", oldID, newID)
	return s.build(actor.UserID, newID, msg, models.SeveritySuccess)
}

// Dispatch appends n inside tx.
func (s NotificationService) Dispatch(tx repositories.Tx, n models.Notification) error {
	if strings.TrimSpace(n.UserID) == "" {
		return domain.ValidationError{Field: "recipient", Msg: "notification has no recipient"}
	}
	return tx.AppendNotification(n)
}

func (s NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ValidationError{Field: "userId", Msg: "required"}
	}
	return s.Store.ListNotifications(ctx, userID)
}

// MarkRead is idempotent; an unknown id is NotFound.
func (s NotificationService) MarkRead(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ValidationError{Field: "id", Msg: "required"}
	}
	err := s.Store.WithTx(ctx, func(tx repositories.Tx) error {
		return tx.MarkNotificationRead(id)
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "notification", "mark_read", "id="+id)
	return nil
}
