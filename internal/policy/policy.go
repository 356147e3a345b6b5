// Package policy decides which departments, sub-departments, users and shifts
// a caller may see, based on their role and own department.
package policy

import (
	"errors"

	"github.com/adamanr/shift_console/internal/entity"
)

var ErrNoAccess = errors.New("no access")

type Scope struct {
	Role         entity.Role
	DepartmentID string
}

func (s Scope) Unrestricted() bool {
	return s.Role == entity.RoleAdmin
}

// Allows reports whether a record owned by departmentID is visible.
func (s Scope) Allows(departmentID string) bool {
	if s.Unrestricted() {
		return true
	}
	return s.DepartmentID != "" && departmentID == s.DepartmentID
}

// Check fails with ErrNoAccess for a restricted caller that has no department.
func (s Scope) Check() error {
	if !s.Unrestricted() && s.DepartmentID == "" {
		return ErrNoAccess
	}
	return nil
}

// DefaultDepartment is the department a form starts with: the caller's own
// for restricted roles, none for admins.
func DefaultDepartment(s Scope) string {
	if s.Unrestricted() {
		return ""
	}
	return s.DepartmentID
}

type DepartmentScoped interface {
	ScopeDepartment() string
}

// Visible keeps the items the scope allows, preserving order. The result is
// never nil.
func Visible[T DepartmentScoped](s Scope, items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if s.Allows(item.ScopeDepartment()) {
			out = append(out, item)
		}
	}
	return out
}

// VisibleIn narrows Visible to a single department. An empty departmentID or
// one outside the scope yields nothing.
func VisibleIn[T DepartmentScoped](s Scope, items []T, departmentID string) []T {
	out := make([]T, 0)
	if departmentID == "" || !s.Allows(departmentID) {
		return out
	}
	for _, item := range items {
		if item.ScopeDepartment() == departmentID {
			out = append(out, item)
		}
	}
	return out
}

// Catalog is the unfiltered reference data the options are computed from.
type Catalog struct {
	Departments    []entity.Department
	SubDepartments []entity.SubDepartment
	Users          []entity.User
	Shifts         []entity.Shift
}

// Options are the choices offered by a department-driven form.
type Options struct {
	DepartmentID   string                 `json:"departmentId"`
	Departments    []entity.Department    `json:"departments"`
	SubDepartments []entity.SubDepartment `json:"subDepartments"`
	Users          []entity.User          `json:"users"`
	Shifts         []entity.Shift         `json:"shifts"`
	NoAccess       bool                   `json:"noAccess,omitempty"`
}

// Resolve computes the dropdown sets for the selected department. With no
// selection the role default is used.
func Resolve(s Scope, c Catalog, selected string) Options {
	if err := s.Check(); err != nil {
		return Options{
			Departments:    []entity.Department{},
			SubDepartments: []entity.SubDepartment{},
			Users:          []entity.User{},
			Shifts:         []entity.Shift{},
			NoAccess:       true,
		}
	}

	if selected == "" {
		selected = DefaultDepartment(s)
	}
	if !s.Allows(selected) {
		selected = ""
	}

	return Options{
		DepartmentID:   selected,
		Departments:    Visible(s, c.Departments),
		SubDepartments: VisibleIn(s, c.SubDepartments, selected),
		Users:          VisibleIn(s, c.Users, selected),
		Shifts:         VisibleIn(s, c.Shifts, selected),
	}
}

// Restrict applies the scope to the whole catalog.
func Restrict(s Scope, c Catalog) Catalog {
	return Catalog{
		Departments:    Visible(s, c.Departments),
		SubDepartments: Visible(s, c.SubDepartments),
		Users:          Visible(s, c.Users),
		Shifts:         Visible(s, c.Shifts),
	}
}
