package services

import (
	"context"
	"fmt"
	"strings"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
	"budgetflow/internal/repositories"
	"budgetflow/internal/utils"

	"github.com/google/uuid"
)

// ReturnInput is the rationale an administrator gives when sending a request
// back for correction. At least one reason or a comment is required.
type ReturnInput struct {
	Reasons []string `json:"reasons" validate:"omitempty,dive,required,max=255"`
	Comment string   `json:"comment" validate:"max=2000"`
}

func (in ReturnInput) validate(catalog *repositories.Catalog) (ReturnInput, error) {
	in.Reasons = utils.UniqueTrimmed(in.Reasons)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateStruct(in); err != nil {
		return in, err
	}
	if len(in.Reasons) == 0 && in.Comment == "" {
		return in, domain.ValidationError{Field: "reasons", Msg: "select at least one reason or write a comment"}
	}
	if catalog != nil {
		for _, r := range in.Reasons {
			if !catalog.IsReturnReason(r) {
				return in, domain.ValidationError{Field: "reasons", Msg: "unknown return reason " + r}
			}
		}
	}
	return in, nil
}

// ReturnForCorrection moves request id to RETURNED and writes a fresh return
// note, replacing any earlier one.
func (s RequestService) ReturnForCorrection(ctx context.Context, id string, actor domain.Actor, reasons []string, comment string) (models.Request, error) {
	var (
		updated models.Request
		from    models.Status
		note    models.Notification
	)
	err := s.Store.WithTx(ctx, func(tx repositories.Tx) error {
		req, err := tx.GetRequest(id)
		if err != nil {
			return err
		}
		from = req.Status
		rule, err := checkTransition(req, models.StatusReturned, actor)
		if err != nil {
			return err
		}
		in, err := ReturnInput{Reasons: reasons, Comment: comment}.validate(s.Catalog)
		if err != nil {
			return err
		}

		updated = s.advance(req, rule, actor)
		updated.ReturnNote = &models.ReturnNote{
			ID:        "RN-" + uuid.NewString(),
			RequestID: updated.ID,
			AdminName: actor.Name,
			Timestamp: updated.UpdatedAt,
			Reasons:   in.Reasons,
			Comment:   in.Comment,
		}
		if err := tx.ReplaceRequest(req.ID, updated); err != nil {
			return err
		}
		note = s.Notifier.ForTransition(actor, updated, rule)
		return s.Notifier.Dispatch(tx, note)
	})
	if err != nil {
		recordRejection("return", err)
		utils.LogWarn(s.RequestID, "request", "return", fmt.Sprintf("id=%s actor=%s rejected: %v", id, actor.UserID, err))
		return models.Request{}, err
	}
	recordTransition(from, models.StatusReturned)
	recordNotification(note.Severity)
	utils.LogEvent(s.RequestID, "request", "return", fmt.Sprintf("id=%s from=%s reasons=%d actor=%s", updated.ID, from, len(updated.ReturnNote.Reasons), actor.UserID))
	return updated, nil
}

// Resubmit sends a RETURNED request back into the flow at the stage it left:
// REQ_DISBURSEMENT when it had passed budget approval, PROPOSED otherwise.
func (s RequestService) Resubmit(ctx context.Context, id string, actor domain.Actor, edits *Edits) (models.Request, error) {
	req, err := s.Store.GetRequest(ctx, id)
	if err != nil {
		recordRejection("resubmit", err)
		return models.Request{}, err
	}
	if req.Status != models.StatusReturned {
		err := domain.InvalidTransitionError{From: string(req.Status), To: string(ResubmitTarget(req))}
		recordRejection("resubmit", err)
		return models.Request{}, err
	}
	// AttemptTransition re-reads the record inside its transaction; a concurrent
	// writer that moved it on makes the transition invalid there.
	return s.AttemptTransition(ctx, id, ResubmitTarget(req), actor, edits)
}
