package models

// Status is a lifecycle state of a budget request.
type Status string

const (
	// StatusDraft is reserved for a save-without-submit flow. Nothing creates
	// a draft and no transition enters or leaves it.
	StatusDraft            Status = "DRAFT"
	StatusProposed         Status = "PROPOSED"
	StatusReturned         Status = "RETURNED"
	StatusBudgetApproved   Status = "BUDGET_APPROVED"
	StatusInProgress       Status = "IN_PROGRESS"
	StatusReqDisbursement  Status = "REQ_DISBURSEMENT"
	StatusExecReview       Status = "EXEC_REVIEW"
	StatusDisburseApproved Status = "DISBURSE_APPROVED"
	StatusCompleted        Status = "COMPLETED"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusDraft,
	StatusProposed,
	StatusReturned,
	StatusBudgetApproved,
	StatusInProgress,
	StatusReqDisbursement,
	StatusExecReview,
	StatusDisburseApproved,
	StatusCompleted,
}

var statusLabels = map[Status]string{
	StatusDraft:            "Draft",
	StatusProposed:         "Proposed for approval",
	StatusReturned:         "Returned for correction",
	StatusBudgetApproved:   "Budget approved",
	StatusInProgress:       "Activity in progress",
	StatusReqDisbursement:  "Disbursement requested",
	StatusExecReview:       "Executive review",
	StatusDisburseApproved: "Disbursement approved",
	StatusCompleted:        "Payment completed",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Terminal() bool { return s == StatusCompleted }
