package services

import (
	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
)

// historyGate restricts a rule by whether BUDGET_APPROVED appears in the
// request's history.
type historyGate int

const (
	anyHistory historyGate = iota
	withBudgetApproval
	withoutBudgetApproval
)

type transitionRule struct {
	From        models.Status
	To          models.Status
	OwnerMayAct bool // admins may always act; owners only when set
	Gate        historyGate
	Action      string
	Severity    models.Severity
}

var transitionTable = []transitionRule{
	{From: models.StatusProposed, To: models.StatusBudgetApproved, Action: "Approved budget", Severity: models.SeveritySuccess},
	{From: models.StatusProposed, To: models.StatusReturned, Action: "Returned for correction", Severity: models.SeverityWarning},
	{From: models.StatusBudgetApproved, To: models.StatusInProgress, Action: "Started activity", Severity: models.SeverityInfo},
	{From: models.StatusInProgress, To: models.StatusReqDisbursement, OwnerMayAct: true, Action: "Requested disbursement", Severity: models.SeverityInfo},
	{From: models.StatusReqDisbursement, To: models.StatusExecReview, Action: "Forwarded to executive review", Severity: models.SeverityInfo},
	{From: models.StatusReqDisbursement, To: models.StatusReturned, Action: "Returned for correction", Severity: models.SeverityWarning},
	{From: models.StatusExecReview, To: models.StatusDisburseApproved, Action: "Approved disbursement", Severity: models.SeveritySuccess},
	{From: models.StatusExecReview, To: models.StatusReturned, Action: "Returned for correction", Severity: models.SeverityWarning},
	{From: models.StatusDisburseApproved, To: models.StatusCompleted, Action: "Payment completed", Severity: models.SeveritySuccess},
	{From: models.StatusDisburseApproved, To: models.StatusReturned, Action: "Returned for correction", Severity: models.SeverityWarning},
	{From: models.StatusReturned, To: models.StatusProposed, OwnerMayAct: true, Gate: withoutBudgetApproval, Action: "Corrected and resubmitted", Severity: models.SeverityInfo},
	{From: models.StatusReturned, To: models.StatusReqDisbursement, OwnerMayAct: true, Gate: withBudgetApproval, Action: "Corrected and re-requested disbursement", Severity: models.SeverityInfo},
}

const createdAction = "Submitted new request"

func (g historyGate) admits(hasBudgetApproval bool) bool {
	switch g {
	case withBudgetApproval:
		return hasBudgetApproval
	case withoutBudgetApproval:
		return !hasBudgetApproval
	default:
		return true
	}
}

func findRule(from, to models.Status, hasBudgetApproval bool) (transitionRule, bool) {
	for _, r := range transitionTable {
		if r.From == from && r.To == to && r.Gate.admits(hasBudgetApproval) {
			return r, true
		}
	}
	return transitionRule{}, false
}

// Reachable reports whether the table has an edge from -> to for a request
// with the given budget-approval history.
func Reachable(from, to models.Status, hasBudgetApproval bool) bool {
	_, ok := findRule(from, to, hasBudgetApproval)
	return ok
}

// Allowed is the single authorization predicate of the state machine.
func Allowed(from, to models.Status, role domain.Role, isOwner, hasBudgetApproval bool) bool {
	rule, ok := findRule(from, to, hasBudgetApproval)
	if !ok {
		return false
	}
	return role == domain.RoleAdmin || (rule.OwnerMayAct && isOwner)
}

// NextStatuses lists the statuses actor may move req to, in table order.
func NextStatuses(req models.Request, actor domain.Actor) []models.Status {
	budget := req.HasReached(models.StatusBudgetApproved)
	owner := req.IsOwner(actor.UserID)
	out := []models.Status{}
	for _, r := range transitionTable {
		if r.From == req.Status && Allowed(r.From, r.To, actor.Role, owner, budget) {
			out = append(out, r.To)
		}
	}
	return out
}

// ResubmitTarget is the status a RETURNED request re-enters: disbursement
// review when it had already passed budget approval, proposal otherwise.
func ResubmitTarget(req models.Request) models.Status {
	if req.HasReached(models.StatusBudgetApproved) {
		return models.StatusReqDisbursement
	}
	return models.StatusProposed
}

// checkTransition runs reachability then authorization. It never mutates req.
func checkTransition(req models.Request, to models.Status, actor domain.Actor) (transitionRule, error) {
	budget := req.HasReached(models.StatusBudgetApproved)
	rule, ok := findRule(req.Status, to, budget)
	if !ok {
		return transitionRule{}, domain.InvalidTransitionError{From: string(req.Status), To: string(to)}
	}
	if !Allowed(req.Status, to, actor.Role, req.IsOwner(actor.UserID), budget) {
		reason := "administrator role required"
		if rule.OwnerMayAct {
			reason = "only the requester or an administrator may act"
		}
		return transitionRule{}, domain.UnauthorizedError{Action: "move request to " + string(to), Reason: reason}
	}
	return rule, nil
}
