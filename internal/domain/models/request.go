package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryEntry is one audit record of a committed transition.
type HistoryEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
}

// ReturnNote carries the rationale of the most recent return.
type ReturnNote struct {
	ID        string    `json:"id"`
	RequestID string    `json:"requestId"`
	AdminName string    `json:"adminName"`
	Timestamp time.Time `json:"timestamp"`
	Reasons   []string  `json:"reasons"`
	Comment   string    `json:"comment"`
}

// Request is a budget disbursement request.
type Request struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	ProjectID     string          `json:"projectId"`
	RequesterID   string          `json:"requesterId"`
	RequesterName string          `json:"requesterName"`
	DepartmentID  string          `json:"departmentId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Documents     []string        `json:"documents"`
	Status        Status          `json:"status"`
	History       []HistoryEntry  `json:"history"`
	ReturnNote    *ReturnNote     `json:"returnNote,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Version       int64           `json:"version"`
}

// HasReached reports whether the request's history ever recorded status s.
// It is recomputed from history on every call.
func (r Request) HasReached(s Status) bool {
	for _, h := range r.History {
		if h.Status == s {
			return true
		}
	}
	return false
}

// IsOwner reports whether userID filed the request.
func (r Request) IsOwner(userID string) bool {
	return userID != "" && r.RequesterID == userID
}

// Clone returns a deep copy so callers never share slices with the store.
func (r Request) Clone() Request {
	out := r
	if r.Documents != nil {
		out.Documents = append([]string(nil), r.Documents...)
	}
	if r.History != nil {
		out.History = append([]HistoryEntry(nil), r.History...)
	}
	if r.ReturnNote != nil {
		note := *r.ReturnNote
		note.Reasons = append([]string(nil), r.ReturnNote.Reasons...)
		out.ReturnNote = &note
	}
	return out
}
