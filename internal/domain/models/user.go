package models

import (
	"budgetflow/internal/domain"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Email        string      `json:"email" yaml:"email"`
	Role         domain.Role `json:"role" yaml:"role"`
	DepartmentID string      `json:"departmentId" yaml:"departmentId"`
}

func (u User) Actor() domain.Actor {
	return domain.Actor{
		UserID:       u.ID,
		Name:         u.Name,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
	}
}

type Department struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Project is a budget line owned by a department.
type Project struct {
	ID                string          `json:"id" yaml:"id"`
	Name              string          `json:"name" yaml:"name"`
	Budget            decimal.Decimal `json:"budget" yaml:"budget"`
	OwnerDepartmentID string          `json:"ownerDepartmentId" yaml:"ownerDepartmentId"`
}
