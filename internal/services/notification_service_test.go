package services

import (
	"context"
	"testing"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipient(t *testing.T) {
	svc := NotificationService{AdminRecipientID: "U001"}
	req := models.Request{ID: "REQ-0001", RequesterID: owner.UserID}

	assert.Equal(t, owner.UserID, svc.Recipient(admin, req))
	assert.Equal(t, "U001", svc.Recipient(owner, req))
	assert.Equal(t, "U001", svc.Recipient(peer, req))
}

func TestMarkRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, owner, 100)

	notes, err := f.notifier.List(ctx, admin.UserID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	id := notes[0].ID

	require.NoError(t, f.notifier.MarkRead(ctx, id))
	require.NoError(t, f.notifier.MarkRead(ctx, id))

	notes, err = f.notifier.List(ctx, admin.UserID)
	require.NoError(t, err)
	assert.True(t, notes[0].Read)

	assert.True(t, domain.IsNotFound(f.notifier.MarkRead(ctx, "N999")))
	assert.True(t, domain.IsValidation(f.notifier.MarkRead(ctx, " ")))
}

func TestDispatchWithoutRecipientRollsBack(t *testing.T) {
	f := newFixture(t)
	f.requests.Notifier.AdminRecipientID = ""
	ctx := context.Background()

	_, err := f.requests.Create(ctx, CreateInput{ProjectID: "PJ001", Title: "x", Amount: decimalOne(), Description: "y"}, owner)
	assert.True(t, domain.IsValidation(err))

	all, err := f.store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
