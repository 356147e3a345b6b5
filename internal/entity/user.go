package entity

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID            string    `json:"_id,omitempty"`
	EmployeeID    string    `json:"employeeId,omitempty"`
	FullName      string    `json:"fullName,omitempty"`
	Nickname      string    `json:"nickname,omitempty"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	Password      string    `json:"password,omitempty"`
	Photo         string    `json:"photo,omitempty"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	Role          Role      `json:"role"`
	PositionID    RefID     `json:"positionId,omitempty"`
	LevelID       RefID     `json:"levelId,omitempty"`
	DepartmentID  RefID     `json:"departmentId,omitempty"`
	Position      *NamedRef `json:"position,omitempty"`
	Level         *NamedRef `json:"level,omitempty"`
	Department    *NamedRef `json:"department,omitempty"`
	IsActive      *bool     `json:"isActive,omitempty"`
	CreatedAt     string    `json:"createdAt,omitempty"`
	UpdatedAt     string    `json:"updatedAt,omitempty"`
}

// ScopeDepartment is the department the user belongs to, whichever of the
// flat or populated forms the backend filled in.
func (u User) ScopeDepartment() string {
	if u.DepartmentID != "" {
		return string(u.DepartmentID)
	}
	if u.Department != nil {
		return u.Department.ID
	}
	return ""
}

func (u User) PositionRef() string {
	if u.PositionID != "" {
		return string(u.PositionID)
	}
	if u.Position != nil {
		return u.Position.ID
	}
	return ""
}

func (u User) LevelRef() string {
	if u.LevelID != "" {
		return string(u.LevelID)
	}
	if u.Level != nil {
		return u.Level.ID
	}
	return ""
}

func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Password string `json:"password"`
}
