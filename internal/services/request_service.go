package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
	"budgetflow/internal/repositories"
	"budgetflow/internal/utils"

	"github.com/shopspring/decimal"
)

// RequestService applies the request lifecycle rules through a Store.
type RequestService struct {
	Store     repositories.Store
	Catalog   *repositories.Catalog
	Notifier  NotificationService
	Clock     func() time.Time
	RequestID string
}

// WithRequestID returns a copy whose log lines carry reqID.
func (s RequestService) WithRequestID(reqID string) RequestService {
	s.RequestID = reqID
	s.Notifier.RequestID = reqID
	return s
}

func (s RequestService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

type CreateInput struct {
	ProjectID   string          `json:"projectId" validate:"required"`
	Title       string          `json:"title" validate:"required,max=255"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"required"`
	Documents   []string        `json:"documents" validate:"omitempty,dive,required,max=255"`
}

func (in *CreateInput) normalize() {
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Title = utils.NormalizeSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Documents = utils.UniqueTrimmed(in.Documents)
}

// Edits are the corrections a resubmission may carry.
type Edits struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
}

func (e *Edits) empty() bool {
	return e == nil || (e.Amount == nil && e.Description == nil)
}

func (e *Edits) validate() error {
	if e == nil {
		return nil
	}
	if e.Amount != nil {
		if err := validatePositiveAmount("amount", *e.Amount); err != nil {
			return err
		}
	}
	if e.Description != nil && strings.TrimSpace(*e.Description) == "" {
		return domain.ValidationError{Field: "description", Msg: "required"}
	}
	return nil
}

func (e *Edits) apply(r *models.Request) {
	if e == nil {
		return
	}
	if e.Amount != nil {
		r.Amount = *e.Amount
	}
	if e.Description != nil {
		r.Description = strings.TrimSpace(*e.Description)
	}
}

// maxSuffixDigits bounds the numeric suffixes NextRequestID considers.
const maxSuffixDigits = 9

// NextRequestID returns REQ-#### numbered one past the highest numeric
// suffix (the part after the last '-') among ids. Suffixes longer than nine
// digits are ignored.
func NextRequestID(ids []string) string {
	highest := 0
	for _, id := range ids {
		suffix := id[strings.LastIndex(id, "-")+1:]
		if len(suffix) > maxSuffixDigits {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("REQ-%04d", highest+1)
}

// Create files a new request in PROPOSED with a single history entry.
func (s RequestService) Create(ctx context.Context, in CreateInput, actor domain.Actor) (models.Request, error) {
	req, err := s.create(ctx, in, actor)
	if err != nil {
		recordRejection("create", err)
		return models.Request{}, err
	}
	recordTransition("", models.StatusProposed)
	recordNotification(models.SeverityInfo)
	utils.LogEvent(s.RequestID, "request", "create", fmt.Sprintf("id=%s project=%s requester=%s", req.ID, req.ProjectID, req.RequesterID))
	return req, nil
}

func (s RequestService) create(ctx context.Context, in CreateInput, actor domain.Actor) (models.Request, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return models.Request{}, err
	}
	if err := validatePositiveAmount("amount", in.Amount); err != nil {
		return models.Request{}, err
	}
	if strings.TrimSpace(actor.UserID) == "" {
		return models.Request{}, domain.UnauthorizedError{Action: "create request", Reason: "no acting user"}
	}
	project, err := s.Catalog.Project(in.ProjectID)
	if err != nil {
		return models.Request{}, domain.ValidationError{Field: "projectId", Msg: "unknown project " + in.ProjectID, Err: err}
	}
	if !actor.IsAdmin() && project.OwnerDepartmentID != actor.DepartmentID {
		return models.Request{}, domain.UnauthorizedError{Action: "create request", Reason: "project belongs to another department"}
	}

	now := s.now()
	var created models.Request
	err = s.Store.WithTx(ctx, func(tx repositories.Tx) error {
		ids, err := tx.RequestIDs()
		if err != nil {
			return err
		}
		created = models.Request{
			ID:            NextRequestID(ids),
			Title:         in.Title,
			ProjectID:     project.ID,
			RequesterID:   actor.UserID,
			RequesterName: actor.Name,
			DepartmentID:  actor.DepartmentID,
			Amount:        in.Amount,
			Description:   in.Description,
			Documents:     in.Documents,
			Status:        models.StatusProposed,
			History: []models.HistoryEntry{{
				Status:    models.StatusProposed,
				Timestamp: now,
				ActorName: actor.Name,
				Action:    createdAction,
			}},
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		}
		if err := tx.InsertRequest(created); err != nil {
			return err
		}
		return s.Notifier.Dispatch(tx, s.Notifier.ForCreation(actor, created))
	})
	if err != nil {
		return models.Request{}, err
	}
	return created, nil
}

// AttemptTransition moves request id to target on behalf of actor. Edits are
// only accepted when the transition is a resubmission out of RETURNED.
func (s RequestService) AttemptTransition(ctx context.Context, id string, target models.Status, actor domain.Actor, edits *Edits) (models.Request, error) {
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
		rule, err := checkTransition(req, target, actor)
		if err != nil {
			return err
		}
		switch {
		case rule.To == models.StatusReturned:
			return domain.ValidationError{Field: "reasons", Msg: "a return needs a reason or comment; use the return operation"}
		case rule.From == models.StatusReturned:
			if err := edits.validate(); err != nil {
				return err
			}
		case !edits.empty():
			return domain.ValidationError{Field: "edits", Msg: "amount and description can only change on resubmission"}
		}

		updated = s.advance(req, rule, actor)
		edits.apply(&updated)
		if err := tx.ReplaceRequest(req.ID, updated); err != nil {
			return err
		}
		note = s.Notifier.ForTransition(actor, updated, rule)
		return s.Notifier.Dispatch(tx, note)
	})
	if err != nil {
		recordRejection("transition", err)
		utils.LogWarn(s.RequestID, "request", "transition", fmt.Sprintf("id=%s target=%s actor=%s rejected: %v", id, target, actor.UserID, err))
		return models.Request{}, err
	}
	recordTransition(from, updated.Status)
	recordNotification(note.Severity)
	utils.LogEvent(s.RequestID, "request", "transition", fmt.Sprintf("id=%s %s->%s actor=%s", updated.ID, from, updated.Status, actor.UserID))
	return updated, nil
}

// advance returns a copy of req moved along rule: status, one history entry,
// updatedAt and version change together. Leaving RETURNED drops the note.
func (s RequestService) advance(req models.Request, rule transitionRule, actor domain.Actor) models.Request {
	now := s.now()
	next := req.Clone()
	next.Status = rule.To
	next.History = append(next.History, models.HistoryEntry{
		Status:    rule.To,
		Timestamp: now,
		ActorName: actor.Name,
		Action:    rule.Action,
	})
	next.UpdatedAt = now
	next.Version++
	if rule.To != models.StatusReturned {
		next.ReturnNote = nil
	}
	return next
}

// RenameID changes a request's identifier in place. History, status and the
// return note are kept; notifications pointing at the old id follow it.
func (s RequestService) RenameID(ctx context.Context, id, newID string, actor domain.Actor) (models.Request, error) {
	newID = strings.TrimSpace(newID)
	var (
		renamed models.Request
		changed bool
	)
	err := s.Store.WithTx(ctx, func(tx repositories.Tx) error {
		req, err := tx.GetRequest(id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			return domain.UnauthorizedError{Action: "rename request", Reason: "administrator role required"}
		}
		if newID == "" {
			return domain.ValidationError{Field: "newId", Msg: "required"}
		}
		if strings.ContainsAny(newID, " \t\n/?#") {
			return domain.ValidationError{Field: "newId", Msg: "must not contain spaces, '/', '?' or '#'"}
		}
		if newID == req.ID {
			renamed = req
			return nil
		}
		if _, err := tx.GetRequest(newID); err == nil {
			return domain.ConflictError{Resource: "request", Msg: "identifier " + newID + " already exists"}
		} else if !domain.IsNotFound(err) {
			return err
		}

		renamed = req.Clone()
		renamed.ID = newID
		renamed.Version++
		if renamed.ReturnNote != nil {
			renamed.ReturnNote.RequestID = newID
		}
		if err := tx.ReplaceRequest(req.ID, renamed); err != nil {
			return err
		}
		if err := tx.RetargetNotifications(req.ID, newID); err != nil {
			return err
		}
		changed = true
		return s.Notifier.Dispatch(tx, s.Notifier.ForRename(actor, req.ID, newID))
	})
	if err != nil {
		recordRejection("rename", err)
		return models.Request{}, err
	}
	if changed {
		recordNotification(models.SeveritySuccess)
		utils.LogEvent(s.RequestID, "request", "rename", fmt.Sprintf("id=%s new_id=%s actor=%s", id, newID, actor.UserID))
	}
	return renamed, nil
}

// Get returns a request visible to actor: administrators see everything,
// department users only what they filed.
func (s RequestService) Get(ctx context.Context, id string, actor domain.Actor) (models.Request, error) {
	req, err := s.Store.GetRequest(ctx, id)
	if err != nil {
		return models.Request{}, err
	}
	if !actor.IsAdmin() && !req.IsOwner(actor.UserID) {
		return models.Request{}, domain.UnauthorizedError{Action: "view request", Reason: "not the requester"}
	}
	return req, nil
}

type ListFilter struct {
	Status models.Status
	Search string
}

// List returns the requests actor may see, newest first.
func (s RequestService) List(ctx context.Context, actor domain.Actor, f ListFilter) ([]models.Request, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: "unknown status " + string(f.Status)}
	}
	all, err := s.Store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.TrimSpace(f.Search)
	out := []models.Request{}
	for _, r := range all {
		if !actor.IsAdmin() && !r.IsOwner(actor.UserID) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if search != "" && !utils.ContainsFold(r.Title, search) &&
			!utils.ContainsFold(r.RequesterName, search) && !utils.ContainsFold(r.ID, search) {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b models.Request) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Import inserts pre-existing records as they are, skipping identifiers that
// already exist. It is used to load seed data.
func (s RequestService) Import(ctx context.Context, reqs []models.Request) (int, error) {
	n := 0
	err := s.Store.WithTx(ctx, func(tx repositories.Tx) error {
		for _, r := range reqs {
			if err := validateImported(r); err != nil {
				return err
			}
			if _, err := tx.GetRequest(r.ID); err == nil {
				continue
			} else if !domain.IsNotFound(err) {
				return err
			}
			if err := tx.InsertRequest(r); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

// validateImported checks the record invariants Create and the transition
// paths guarantee for new requests.
func validateImported(r models.Request) error {
	if len(r.History) == 0 || r.History[len(r.History)-1].Status != r.Status {
		return domain.ValidationError{Field: "history", Msg: "request " + r.ID + " status does not match its last history entry"}
	}
	if r.Amount.IsNegative() {
		return domain.ValidationError{Field: "amount", Msg: "request " + r.ID + " has a negative amount"}
	}
	if (r.ReturnNote != nil) != (r.Status == models.StatusReturned) {
		return domain.ValidationError{Field: "returnNote", Msg: "request " + r.ID + " must carry a return note exactly when RETURNED"}
	}
	return nil
}
