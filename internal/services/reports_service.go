package services

import (
	"context"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
	"budgetflow/internal/repositories"

	"github.com/shopspring/decimal"
)

// Summary is the dashboard view over the requests a caller can see.
type Summary struct {
	Total       int                   `json:"total"`
	Pending     int                   `json:"pending"`
	Completed   int                   `json:"completed"`
	Returned    int                   `json:"returned"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
	ByStatus    map[models.Status]int `json:"byStatus"`
}

type ReportsService struct {
	Store repositories.Store
}

// Summary counts the caller's visible requests. Pending is everything that
// is neither COMPLETED nor RETURNED.
func (s ReportsService) Summary(ctx context.Context, caller domain.Actor) (Summary, error) {
	all, err := s.Store.Snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{TotalAmount: decimal.Zero, ByStatus: map[models.Status]int{}}
	for _, st := range models.AllStatuses {
		out.ByStatus[st] = 0
	}
	for _, r := range all {
		if !caller.IsAdmin() && !r.IsOwner(caller.UserID) {
			continue
		}
		out.Total++
		out.TotalAmount = out.TotalAmount.Add(r.Amount)
		out.ByStatus[r.Status]++
		switch r.Status {
		case models.StatusCompleted:
			out.Completed++
		case models.StatusReturned:
			out.Returned++
		default:
			out.Pending++
		}
	}
	return out, nil
}
