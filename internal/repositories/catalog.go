package repositories

import (
	"slices"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
)

// Catalog holds read-only reference data: users, departments, projects and
// the return reason catalog.
type Catalog struct {
	users         map[string]models.User
	userOrder     []string
	departments   []models.Department
	projects      map[string]models.Project
	projectOrder  []string
	returnReasons []string
}

func NewCatalog(users []models.User, departments []models.Department, projects []models.Project, returnReasons []string) *Catalog {
	c := &Catalog{
		users:         make(map[string]models.User, len(users)),
		departments:   append([]models.Department{}, departments...),
		projects:      make(map[string]models.Project, len(projects)),
		returnReasons: append([]string{}, returnReasons...),
	}
	for _, u := range users {
		c.users[u.ID] = u
		c.userOrder = append(c.userOrder, u.ID)
	}
	for _, p := range projects {
		c.projects[p.ID] = p
		c.projectOrder = append(c.projectOrder, p.ID)
	}
	return c
}

func (c *Catalog) User(id string) (models.User, error) {
	u, ok := c.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user", ID: id}
	}
	return u, nil
}

func (c *Catalog) Users() []models.User {
	out := make([]models.User, 0, len(c.userOrder))
	for _, id := range c.userOrder {
		out = append(out, c.users[id])
	}
	return out
}

func (c *Catalog) Departments() []models.Department {
	return append([]models.Department{}, c.departments...)
}

func (c *Catalog) Project(id string) (models.Project, error) {
	p, ok := c.projects[id]
	if !ok {
		return models.Project{}, domain.NotFoundError{Resource: "project", ID: id}
	}
	return p, nil
}

// Projects lists projects visible to actor: admins see every project,
// department users only the ones their department owns.
func (c *Catalog) Projects(actor domain.Actor) []models.Project {
	out := []models.Project{}
	for _, id := range c.projectOrder {
		p := c.projects[id]
		if actor.IsAdmin() || p.OwnerDepartmentID == actor.DepartmentID {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) ReturnReasons() []string {
	return append([]string{}, c.returnReasons...)
}

func (c *Catalog) IsReturnReason(reason string) bool {
	return slices.Contains(c.returnReasons, reason)
}
