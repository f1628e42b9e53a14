package domain

// Role is the coarse permission level of a user.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleUserDepartment Role = "USER_DEPARTMENT"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUserDepartment
}

// Actor is the authenticated caller of a core operation.
type Actor struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	DepartmentID string `json:"departmentId"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
