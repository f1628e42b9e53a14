package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"budgetflow/internal/domain/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed seeddata/seed.yaml
var defaultSeed []byte

// SeedRequest is the YAML shape of a pre-existing request.
type SeedRequest struct {
	ID          string          `yaml:"id"`
	Title       string          `yaml:"title"`
	ProjectID   string          `yaml:"projectId"`
	RequesterID string          `yaml:"requesterId"`
	Amount      decimal.Decimal `yaml:"amount"`
	Description string          `yaml:"description"`
	Documents   []string        `yaml:"documents"`
	CreatedAt   time.Time       `yaml:"createdAt"`
	History     []SeedHistory   `yaml:"history"`
	ReturnNote  *SeedReturnNote `yaml:"returnNote"`
}

type SeedHistory struct {
	Status    models.Status `yaml:"status"`
	Timestamp time.Time     `yaml:"timestamp"`
	ActorName string        `yaml:"actorName"`
	Action    string        `yaml:"action"`
}

type SeedReturnNote struct {
	AdminName string   `yaml:"adminName"`
	Reasons   []string `yaml:"reasons"`
	Comment   string   `yaml:"comment"`
}

// Seed is the reference data the service starts with.
type Seed struct {
	Departments   []models.Department `yaml:"departments"`
	Users         []models.User       `yaml:"users"`
	Projects      []models.Project    `yaml:"projects"`
	ReturnReasons []string            `yaml:"returnReasons"`
	Requests      []SeedRequest       `yaml:"requests"`
}

// LoadSeed parses path, or the embedded default when path is empty.
func LoadSeed(path string) (Seed, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
		}
		raw = b
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	for _, u := range s.Users {
		if !u.Role.Valid() {
			return Seed{}, fmt.Errorf("seed user %s: unknown role %q", u.ID, u.Role)
		}
	}
	for _, r := range s.Requests {
		if len(r.History) == 0 {
			return Seed{}, fmt.Errorf("seed request %s: history is empty", r.ID)
		}
		for _, h := range r.History {
			if !h.Status.Valid() {
				return Seed{}, fmt.Errorf("seed request %s: unknown status %q", r.ID, h.Status)
			}
		}
	}
	return s, nil
}

// Build turns a seed request into a full record using the requester's user
// entry. The current status is the last history entry's status.
func (r SeedRequest) Build(requester models.User) models.Request {
	req := models.Request{
		ID:            r.ID,
		Title:         r.Title,
		ProjectID:     r.ProjectID,
		RequesterID:   requester.ID,
		RequesterName: requester.Name,
		DepartmentID:  requester.DepartmentID,
		Amount:        r.Amount,
		Description:   r.Description,
		Documents:     append([]string{}, r.Documents...),
		CreatedAt:     r.CreatedAt.UTC(),
		Version:       1,
	}
	for _, h := range r.History {
		req.History = append(req.History, models.HistoryEntry{
			Status:    h.Status,
			Timestamp: h.Timestamp.UTC(),
			ActorName: h.ActorName,
			Action:    h.Action,
		})
	}
	last := req.History[len(req.History)-1]
	req.Status = last.Status
	req.UpdatedAt = last.Timestamp
	if r.ReturnNote != nil && req.Status == models.StatusReturned {
		req.ReturnNote = &models.ReturnNote{
			ID:        "RN-" + r.ID,
			RequestID: r.ID,
			AdminName: r.ReturnNote.AdminName,
			Timestamp: last.Timestamp,
			Reasons:   append([]string{}, r.ReturnNote.Reasons...),
			Comment:   r.ReturnNote.Comment,
		}
	}
	return req
}
