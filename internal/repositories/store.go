package repositories

import (
	"context"

	"budgetflow/internal/domain/models"
)

// Store is the authoritative collection of requests and notifications.
//
// All writes happen inside WithTx, which serializes writers: a transaction
// either commits every change made through its Tx or none of them. Reads
// outside a transaction return deep copies of committed state only.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	GetRequest(ctx context.Context, id string) (models.Request, error)
	Snapshot(ctx context.Context) ([]models.Request, error)
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
}

// Tx is the write view of a Store inside one transaction.
type Tx interface {
	GetRequest(id string) (models.Request, error)
	RequestIDs() ([]string, error)
	InsertRequest(r models.Request) error
	// ReplaceRequest swaps the whole record stored under oldID for r. When
	// r.ID differs from oldID the record is renamed.
	ReplaceRequest(oldID string, r models.Request) error

	AppendNotification(n models.Notification) error
	RetargetNotifications(oldRequestID, newRequestID string) error
	MarkNotificationRead(id string) error
}
