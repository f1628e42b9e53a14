package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
	"budgetflow/internal/repositories"
	"budgetflow/internal/utils"
)

// AnomalyService evaluates the heuristics over a consistent snapshot of the
// store. Flags are derived on every call and never persisted.
type AnomalyService struct {
	Store     repositories.Store
	Catalog   *repositories.Catalog
	Location  *time.Location
	Clock     func() time.Time
	RequestID string
}

// List evaluates every request and returns the flags caller may see:
// administrators get all of them, department users only flags on their
// own requests.
func (s AnomalyService) List(ctx context.Context, caller domain.Actor) ([]models.AnomalyFlag, error) {
	snapshot, err := s.Store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock().UTC()
	}
	flags := Detect(snapshot, s.projectLookup(), now, s.Location)
	recordAnomalies(flags)
	utils.LogEvent(s.RequestID, "anomaly", "evaluate", fmt.Sprintf("requests=%d flags=%d", len(snapshot), len(flags)))

	if caller.IsAdmin() {
		return flags, nil
	}
	owner := make(map[string]string, len(snapshot))
	for _, r := range snapshot {
		owner[r.ID] = r.RequesterID
	}
	out := []models.AnomalyFlag{}
	for _, f := range flags {
		if owner[f.RequestID] == caller.UserID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s AnomalyService) projectLookup() func(string) (models.Project, bool) {
	return func(id string) (models.Project, bool) {
		if s.Catalog == nil {
			return models.Project{}, false
		}
		p, err := s.Catalog.Project(id)
		return p, err == nil
	}
}

// Detect runs the HIGH_COST and DUPLICATE_RECEIPT heuristics over requests.
//
// Requests are visited in (CreatedAt, ID) order; each contributes its
// HIGH_COST flag first, then one DUPLICATE_RECEIPT flag per earlier request
// by the same requester with an equal amount created on the same calendar
// day in loc. Flag ids are AN-001, AN-002, ... in output order. Requests
// whose project is unknown are not checked for cost.
func Detect(requests []models.Request, project func(id string) (models.Project, bool), now time.Time, loc *time.Location) []models.AnomalyFlag {
	if loc == nil {
		loc = time.UTC
	}
	ordered := slices.Clone(requests)
	slices.SortStableFunc(ordered, func(a, b models.Request) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	flags := []models.AnomalyFlag{}
	add := func(requestID string, t models.AnomalyType, sev models.AnomalySeverity, desc string) {
		flags = append(flags, models.AnomalyFlag{
			ID:          fmt.Sprintf("AN-%03d", len(flags)+1),
			RequestID:   requestID,
			Type:        t,
			Description: desc,
			Severity:    sev,
			DetectedAt:  now,
		})
	}

	for i, r := range ordered {
		if p, ok := project(r.ProjectID); ok && r.Amount.GreaterThan(p.Budget) {
			add(r.ID, models.AnomalyHighCost, models.AnomalyHigh,
				fmt.Sprintf("Requested amount (%s) exceeds the project budget (%s)", utils.FormatAmount(r.Amount), utils.FormatAmount(p.Budget)))
		}
		for _, earlier := range ordered[:i] {
			if earlier.RequesterID != r.RequesterID || !earlier.Amount.Equal(r.Amount) {
				continue
			}
			if !utils.SameDay(earlier.CreatedAt, r.CreatedAt, loc) {
				continue
			}
			add(r.ID, models.AnomalyDuplicateReceipt, models.AnomalyMedium,
				fmt.Sprintf("Possible duplicate: same requester and amount as %s on the same day", earlier.ID))
		}
	}
	return flags
}
