package models

import "time"

type AnomalyType string

const (
	AnomalyHighCost         AnomalyType = "HIGH_COST"
	AnomalyDuplicateReceipt AnomalyType = "DUPLICATE_RECEIPT"
)

type AnomalySeverity string

const (
	AnomalyLow    AnomalySeverity = "LOW"
	AnomalyMedium AnomalySeverity = "MEDIUM"
	AnomalyHigh   AnomalySeverity = "HIGH"
)

// AnomalyFlag is a derived observation about a request. It is recomputed on
// every evaluation and never stored.
type AnomalyFlag struct {
	ID          string          `json:"id"`
	RequestID   string          `json:"requestId"`
	Type        AnomalyType     `json:"type"`
	Description string          `json:"description"`
	Severity    AnomalySeverity `json:"severity"`
	DetectedAt  time.Time       `json:"detectedAt"`
}
