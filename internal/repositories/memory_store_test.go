package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest(id string) models.Request {
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	return models.Request{
		ID: id, Title: "Projector", ProjectID: "PJ001", RequesterID: "U003", RequesterName: "Dr. Somchai",
		DepartmentID: "DEPT001", Amount: decimal.NewFromInt(1200), Description: "Room 4",
		Documents: []string{"quote.pdf"}, Status: models.StatusProposed,
		History:   []models.HistoryEntry{{Status: models.StatusProposed, Timestamp: at, ActorName: "Dr. Somchai", Action: "Submitted"}},
		CreatedAt: at, UpdatedAt: at, Version: 1,
	}
}

func seedMemory(t *testing.T, s *MemoryStore, reqs ...models.Request) {
	t.Helper()
	require.NoError(t, s.WithTx(context.Background(), func(tx Tx) error {
		for _, r := range reqs {
			if err := tx.InsertRequest(r); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestMemoryStoreRollbackOnError(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedMemory(t, s, sampleRequest("REQ-0001"))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx Tx) error {
		r, err := tx.GetRequest("REQ-0001")
		require.NoError(t, err)
		r.Status = models.StatusBudgetApproved
		require.NoError(t, tx.ReplaceRequest(r.ID, r))
		require.NoError(t, tx.InsertRequest(sampleRequest("REQ-0002")))
		require.NoError(t, tx.AppendNotification(models.Notification{ID: "N1", UserID: "U003"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetRequest(ctx, "REQ-0001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProposed, got.Status)
	_, err = s.GetRequest(ctx, "REQ-0002")
	assert.True(t, domain.IsNotFound(err))
	notes, err := s.ListNotifications(ctx, "U003")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestMemoryStoreRename(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedMemory(t, s, sampleRequest("REQ-0001"), sampleRequest("REQ-0002"))
	require.NoError(t, s.WithTx(ctx, func(tx Tx) error {
		return tx.AppendNotification(models.Notification{ID: "N1", UserID: "U003", RequestID: "REQ-0001"})
	}))

	err := s.WithTx(ctx, func(tx Tx) error {
		r, err := tx.GetRequest("REQ-0001")
		if err != nil {
			return err
		}
		r.ID = "REQ-0002"
		return tx.ReplaceRequest("REQ-0001", r)
	})
	assert.True(t, domain.IsConflict(err))

	err = s.WithTx(ctx, func(tx Tx) error {
		r, err := tx.GetRequest("REQ-0001")
		if err != nil {
			return err
		}
		r.ID = "REQ-0099"
		if err := tx.ReplaceRequest("REQ-0001", r); err != nil {
			return err
		}
		if _, err := tx.GetRequest("REQ-0001"); !domain.IsNotFound(err) {
			t.Errorf("old id still visible inside tx: %v", err)
		}
		ids, err := tx.RequestIDs()
		if err != nil {
			return err
		}
		assert.ElementsMatch(t, []string{"REQ-0099", "REQ-0002"}, ids)
		return tx.RetargetNotifications("REQ-0001", "REQ-0099")
	})
	require.NoError(t, err)

	_, err = s.GetRequest(ctx, "REQ-0001")
	assert.True(t, domain.IsNotFound(err))
	got, err := s.GetRequest(ctx, "REQ-0099")
	require.NoError(t, err)
	assert.Equal(t, "Projector", got.Title)

	all, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "REQ-0099", all[0].ID, "rename keeps insertion order")

	notes, err := s.ListNotifications(ctx, "U003")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "REQ-0099", notes[0].RequestID)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedMemory(t, s, sampleRequest("REQ-0001"))

	got, err := s.GetRequest(ctx, "REQ-0001")
	require.NoError(t, err)
	got.History[0].Status = models.StatusCompleted
	got.Documents[0] = "tampered"

	again, err := s.GetRequest(ctx, "REQ-0001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProposed, again.History[0].Status)
	assert.Equal(t, "quote.pdf", again.Documents[0])
}

func TestMemoryStoreNotifications(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.WithTx(ctx, func(tx Tx) error {
		for _, id := range []string{"N1", "N2", "N3"} {
			if err := tx.AppendNotification(models.Notification{ID: id, UserID: "U001"}); err != nil {
				return err
			}
		}
		return tx.AppendNotification(models.Notification{ID: "N4", UserID: "U002"})
	}))

	notes, err := s.ListNotifications(ctx, "U001")
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "N3", notes[0].ID)

	require.NoError(t, s.WithTx(ctx, func(tx Tx) error { return tx.MarkNotificationRead("N1") }))
	err = s.WithTx(ctx, func(tx Tx) error { return tx.MarkNotificationRead("N9") })
	assert.True(t, domain.IsNotFound(err))

	notes, err = s.ListNotifications(ctx, "U001")
	require.NoError(t, err)
	assert.True(t, notes[2].Read)
	assert.False(t, notes[0].Read)
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.WithTx(ctx, func(tx Tx) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
