// Package users holds the user directory rules of the console: filtering,
// form validation and employee id allocation.
package users

import (
	"fmt"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/adamanr/shift_console/internal/apperr"
	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/policy"
)

type Filter struct {
	DepartmentID string
	PositionID   string
	Role         entity.Role
	Search       string
}

// Apply keeps the users visible to scope that match every filter. Search
// looks at full name, email and employee id.
func (f Filter) Apply(scope policy.Scope, list []entity.User) []entity.User {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]entity.User, 0, len(list))
	for _, u := range policy.Visible(scope, list) {
		if f.DepartmentID != "" && u.ScopeDepartment() != f.DepartmentID {
			continue
		}
		if f.PositionID != "" && u.PositionRef() != f.PositionID {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if search != "" && !matches(u, search) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func matches(u entity.User, search string) bool {
	for _, field := range []string{u.DisplayName(), u.Email, u.EmployeeID} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// Validate checks the user form. Managers may only place users in their own
// department and never grant the admin role.
func Validate(scope policy.Scope, u entity.User, creating bool) error {
	fe := apperr.FieldErrors{}

	if strings.TrimSpace(u.FirstName) == "" {
		fe.Add("firstName", "First name is required")
	}
	if strings.TrimSpace(u.LastName) == "" {
		fe.Add("lastName", "Last name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		fe.Add("email", "Email is required")
	} else if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
		fe.Add("email", "Email is invalid")
	}
	if u.PositionRef() == "" {
		fe.Add("positionId", "Position is required")
	}
	if u.LevelRef() == "" {
		fe.Add("levelId", "Level is required")
	}
	if u.Role != "" && !u.Role.Valid() {
		fe.Add("role", "Role is invalid")
	} else if u.Role == entity.RoleAdmin && !scope.Unrestricted() {
		fe.Add("role", "Only administrators can grant the admin role")
	}
	if creating && u.Password == "" {
		fe.Add("password", "Password is required")
	}

	switch dept := u.ScopeDepartment(); {
	case dept == "":
		fe.Add("departmentId", "Department is required")
	case !scope.Allows(dept):
		fe.Add("departmentId", "You can only manage users in your own department")
	}

	return fe.Err()
}

// NextEmployeeID allocates "PPPYYYY-NNN": the first three letters of the
// department name, the year, and the next sequence number after the highest
// one already used with that prefix.
func NextEmployeeID(departmentName string, existing []entity.User, year int) string {
	prefix := departmentPrefix(departmentName) + strconv.Itoa(year) + "-"

	highest := 0
	for _, u := range existing {
		if !strings.HasPrefix(u.EmployeeID, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(u.EmployeeID, prefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, highest+1)
}

func departmentPrefix(name string) string {
	letters := make([]rune, 0, 3)
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
		if len(letters) == 3 {
			break
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}

// SortByName orders users by display name, in place.
func SortByName(list []entity.User) {
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].DisplayName()) < strings.ToLower(list[j].DisplayName())
	})
}
