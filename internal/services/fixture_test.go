package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
	"budgetflow/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	adminUser = models.User{ID: "U001", Name: "Finance Admin", Role: domain.RoleAdmin, DepartmentID: "DEPT004"}
	ownerUser = models.User{ID: "U003", Name: "Dr. Somchai", Role: domain.RoleUserDepartment, DepartmentID: "DEPT001"}
	peerUser  = models.User{ID: "U004", Name: "Dr. Manee", Role: domain.RoleUserDepartment, DepartmentID: "DEPT001"}
	otherUser = models.User{ID: "U005", Name: "Khun Wichai", Role: domain.RoleUserDepartment, DepartmentID: "DEPT002"}

	admin = adminUser.Actor()
	owner = ownerUser.Actor()
	peer  = peerUser.Actor()
	other = otherUser.Actor()
)

var testReasons = []string{"Incomplete documents", "Amount does not match the budget", "Other"}

// testClock advances one minute per call.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type fixture struct {
	store    *repositories.MemoryStore
	catalog  *repositories.Catalog
	clock    *testClock
	requests RequestService
	notifier NotificationService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	catalog := repositories.NewCatalog(
		[]models.User{adminUser, ownerUser, peerUser, otherUser},
		[]models.Department{{ID: "DEPT001", Name: "Science"}, {ID: "DEPT002", Name: "Arts"}, {ID: "DEPT004", Name: "Finance"}},
		[]models.Project{
			{ID: "PJ001", Name: "Science Camp", Budget: decimal.NewFromInt(200000), OwnerDepartmentID: "DEPT001"},
			{ID: "PJ002", Name: "Art Exhibition", Budget: decimal.NewFromInt(80000), OwnerDepartmentID: "DEPT002"},
		},
		testReasons,
	)
	clock := &testClock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	var seq int
	var seqMu sync.Mutex
	notifier := NotificationService{
		Store:            store,
		AdminRecipientID: adminUser.ID,
		Clock:            clock.Now,
		NewID: func() string {
			seqMu.Lock()
			defer seqMu.Unlock()
			seq++
			return fmt.Sprintf("N%03d", seq)
		},
	}
	return fixture{
		store:    store,
		catalog:  catalog,
		clock:    clock,
		notifier: notifier,
		requests: RequestService{Store: store, Catalog: catalog, Notifier: notifier, Clock: clock.Now},
	}
}

func (f fixture) create(t *testing.T, actor domain.Actor, amount int64) models.Request {
	t.Helper()
	project := "PJ001"
	if actor.DepartmentID == "DEPT002" {
		project = "PJ002"
	}
	req, err := f.requests.Create(context.Background(), CreateInput{
		ProjectID:   project,
		Title:       "Lab equipment",
		Amount:      decimal.NewFromInt(amount),
		Description: "Microscopes for the teaching lab",
		Documents:   []string{"quote.pdf"},
	}, actor)
	require.NoError(t, err)
	return req
}

// walk drives req through targets as the given actors and returns the result.
func (f fixture) walk(t *testing.T, id string, steps ...step) models.Request {
	t.Helper()
	var (
		req models.Request
		err error
	)
	for _, s := range steps {
		if s.to == models.StatusReturned {
			req, err = f.requests.ReturnForCorrection(context.Background(), id, s.actor, []string{testReasons[0]}, "")
		} else {
			req, err = f.requests.AttemptTransition(context.Background(), id, s.to, s.actor, nil)
		}
		require.NoError(t, err, "step to %s", s.to)
	}
	return req
}

type step struct {
	to    models.Status
	actor domain.Actor
}

func statuses(req models.Request) []models.Status {
	out := make([]models.Status, 0, len(req.History))
	for _, h := range req.History {
		out = append(out, h.Status)
	}
	return out
}
