package services

import (
	"context"
	"testing"
	"time"

	"budgetflow/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anomalyRequest(id, requester, project string, amount int64, created time.Time) models.Request {
	return models.Request{
		ID: id, RequesterID: requester, ProjectID: project,
		Amount: decimal.NewFromInt(amount), Status: models.StatusProposed, CreatedAt: created,
		History: []models.HistoryEntry{{Status: models.StatusProposed, Timestamp: created}},
	}
}

func projectsOf(projects ...models.Project) func(string) (models.Project, bool) {
	return func(id string) (models.Project, bool) {
		for _, p := range projects {
			if p.ID == id {
				return p, true
			}
		}
		return models.Project{}, false
	}
}

func TestDetectHighCost(t *testing.T) {
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	day := time.Date(2023, 10, 20, 11, 30, 0, 0, time.UTC)
	lookup := projectsOf(models.Project{ID: "PJ003", Budget: decimal.NewFromInt(200000)})

	flags := Detect([]models.Request{
		anomalyRequest("REQ-2023-003", "U003", "PJ003", 250000, day),
		anomalyRequest("REQ-2023-010", "U003", "PJ003", 200000, day.Add(time.Hour)),
		anomalyRequest("REQ-2023-011", "U004", "PJ404", 999999, day.Add(2*time.Hour)),
	}, lookup, now, nil)

	require.Len(t, flags, 1)
	assert.Equal(t, "AN-001", flags[0].ID)
	assert.Equal(t, "REQ-2023-003", flags[0].RequestID)
	assert.Equal(t, models.AnomalyHighCost, flags[0].Type)
	assert.Equal(t, models.AnomalyHigh, flags[0].Severity)
	assert.Contains(t, flags[0].Description, "250,000")
	assert.Contains(t, flags[0].Description, "200,000")
	assert.Equal(t, now, flags[0].DetectedAt)
}

func TestDetectDuplicateReceipt(t *testing.T) {
	first := time.Date(2023, 10, 28, 10, 0, 0, 0, time.UTC)
	lookup := projectsOf(models.Project{ID: "PJ005", Budget: decimal.NewFromInt(80000)})

	// input order must not matter
	flags := Detect([]models.Request{
		anomalyRequest("REQ-2023-007", "U005", "PJ005", 5000, first.Add(5*time.Minute)),
		anomalyRequest("REQ-2023-006", "U005", "PJ005", 5000, first),
		anomalyRequest("REQ-2023-008", "U006", "PJ005", 5000, first.Add(time.Minute)),
		anomalyRequest("REQ-2023-009", "U005", "PJ005", 5001, first.Add(2*time.Minute)),
		anomalyRequest("REQ-2023-012", "U005", "PJ005", 5000, first.Add(24*time.Hour)),
	}, lookup, time.Now(), time.UTC)

	require.Len(t, flags, 1)
	assert.Equal(t, "REQ-2023-007", flags[0].RequestID)
	assert.Equal(t, models.AnomalyDuplicateReceipt, flags[0].Type)
	assert.Equal(t, models.AnomalyMedium, flags[0].Severity)
	assert.Contains(t, flags[0].Description, "REQ-2023-006")
}

func TestDetectOrderingAndTies(t *testing.T) {
	at := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	lookup := projectsOf(models.Project{ID: "P", Budget: decimal.NewFromInt(100)})

	flags := Detect([]models.Request{
		anomalyRequest("B", "U1", "P", 500, at),
		anomalyRequest("A", "U1", "P", 500, at),
		anomalyRequest("C", "U1", "P", 500, at.Add(time.Hour)),
	}, lookup, at, nil)

	got := make([]string, 0, len(flags))
	for _, f := range flags {
		got = append(got, f.ID+":"+f.RequestID+":"+string(f.Type))
	}
	assert.Equal(t, []string{
		"AN-001:A:HIGH_COST",
		"AN-002:B:HIGH_COST",
		"AN-003:B:DUPLICATE_RECEIPT",
		"AN-004:C:HIGH_COST",
		"AN-005:C:DUPLICATE_RECEIPT",
		"AN-006:C:DUPLICATE_RECEIPT",
	}, got)
}

func TestDetectSameDayUsesLocation(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*3600)
	a := time.Date(2023, 10, 28, 16, 30, 0, 0, time.UTC) // 23:30 in ICT
	b := a.Add(time.Hour)                                // next day in ICT
	reqs := []models.Request{
		anomalyRequest("R1", "U1", "P", 10, a),
		anomalyRequest("R2", "U1", "P", 10, b),
	}
	assert.Len(t, Detect(reqs, projectsOf(), a, time.UTC), 1)
	assert.Empty(t, Detect(reqs, projectsOf(), a, bangkok))
}

func TestAnomalyServiceVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	high := f.create(t, owner, 250000)
	f.create(t, other, 100)

	svc := AnomalyService{Store: f.store, Catalog: f.catalog, Clock: f.clock.Now}

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, high.ID, all[0].RequestID)
	assert.Equal(t, models.AnomalyHighCost, all[0].Type)

	mine, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
