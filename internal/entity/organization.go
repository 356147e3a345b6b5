package entity

type DepartmentManager struct {
	ID            string `json:"_id"`
	EmployeeID    string `json:"employeeId,omitempty"`
	FullName      string `json:"fullName,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
}

type Department struct {
	ID         string             `json:"_id,omitempty"`
	Name       string             `json:"name"`
	ManagerID  RefID              `json:"managerId,omitempty"`
	Manager    *DepartmentManager `json:"manager,omitempty"`
	Address    string             `json:"address,omitempty"`
	LocationID RefID              `json:"locationId,omitempty"`
	Location   *Location          `json:"location,omitempty"`
	StaffCount int                `json:"staffCount,omitempty"`
	Members    int                `json:"members,omitempty"`
}

func (d Department) ScopeDepartment() string {
	return d.ID
}

type SubDepartment struct {
	ID           string      `json:"_id,omitempty"`
	Name         string      `json:"name"`
	DepartmentID RefID       `json:"departmentId,omitempty"`
	SubManagerID RefID       `json:"subManagerId,omitempty"`
	SubManager   *User       `json:"subManager,omitempty"`
	Department   *Department `json:"department,omitempty"`
	CreatedAt    string      `json:"createdAt,omitempty"`
	UpdatedAt    string      `json:"updatedAt,omitempty"`
}

func (s SubDepartment) ScopeDepartment() string {
	if s.DepartmentID != "" {
		return string(s.DepartmentID)
	}
	if s.Department != nil {
		return s.Department.ID
	}
	return ""
}

type Position struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Level struct {
	ID          string    `json:"_id,omitempty"`
	Name        string    `json:"name"`
	PositionID  RefID     `json:"positionId,omitempty"`
	Position    *NamedRef `json:"position,omitempty"`
	Description string    `json:"description,omitempty"`
}

type Location struct {
	ID         string `json:"_id,omitempty"`
	Name       string `json:"name"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Address    string `json:"Address,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}
