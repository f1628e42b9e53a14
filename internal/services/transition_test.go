package services

import (
	"testing"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestAllowedTable(t *testing.T) {
	cases := []struct {
		from, to models.Status
		role     domain.Role
		owner    bool
		budget   bool
		want     bool
	}{
		{models.StatusProposed, models.StatusBudgetApproved, domain.RoleAdmin, false, false, true},
		{models.StatusProposed, models.StatusBudgetApproved, domain.RoleUserDepartment, true, false, false},
		{models.StatusInProgress, models.StatusReqDisbursement, domain.RoleUserDepartment, true, true, true},
		{models.StatusInProgress, models.StatusReqDisbursement, domain.RoleUserDepartment, false, true, false},
		{models.StatusReturned, models.StatusProposed, domain.RoleUserDepartment, true, false, true},
		{models.StatusReturned, models.StatusProposed, domain.RoleUserDepartment, true, true, false},
		{models.StatusReturned, models.StatusReqDisbursement, domain.RoleAdmin, false, true, true},
		{models.StatusReturned, models.StatusReqDisbursement, domain.RoleAdmin, false, false, false},
		{models.StatusCompleted, models.StatusReturned, domain.RoleAdmin, false, true, false},
		{models.StatusDraft, models.StatusProposed, domain.RoleAdmin, true, false, false},
		{models.StatusProposed, models.StatusDraft, domain.RoleAdmin, true, false, false},
	}
	for _, tc := range cases {
		got := Allowed(tc.from, tc.to, tc.role, tc.owner, tc.budget)
		assert.Equal(t, tc.want, got, "%s -> %s role=%s owner=%v budget=%v", tc.from, tc.to, tc.role, tc.owner, tc.budget)
	}
}

func TestNextStatuses(t *testing.T) {
	req := models.Request{
		RequesterID: owner.UserID,
		Status:      models.StatusReqDisbursement,
		History: []models.HistoryEntry{
			{Status: models.StatusProposed}, {Status: models.StatusBudgetApproved},
			{Status: models.StatusInProgress}, {Status: models.StatusReqDisbursement},
		},
	}
	assert.Equal(t, []models.Status{models.StatusExecReview, models.StatusReturned}, NextStatuses(req, admin))
	assert.Empty(t, NextStatuses(req, owner))
}

func TestResubmitTarget(t *testing.T) {
	early := models.Request{History: []models.HistoryEntry{{Status: models.StatusProposed}, {Status: models.StatusReturned}}}
	assert.Equal(t, models.StatusProposed, ResubmitTarget(early))

	late := models.Request{History: []models.HistoryEntry{
		{Status: models.StatusProposed}, {Status: models.StatusBudgetApproved}, {Status: models.StatusInProgress},
		{Status: models.StatusReqDisbursement}, {Status: models.StatusReturned},
	}}
	assert.Equal(t, models.StatusReqDisbursement, ResubmitTarget(late))
}
