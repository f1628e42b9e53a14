package models

import "time"

type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeveritySuccess Severity = "SUCCESS"
	SeverityError   Severity = "ERROR"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RequestID string    `json:"requestId,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	Severity  Severity  `json:"severity"`
}
