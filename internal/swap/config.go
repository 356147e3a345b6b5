package swap

import (
	"github.com/adamanr/shift_console/internal/apperr"
	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/policy"
)

// DefaultConfig is what a department gets before anyone configures it.
func DefaultConfig(departmentID string) entity.SwapConfig {
	return entity.SwapConfig{
		DepartmentID:     departmentID,
		SwapsEnabled:     true,
		RequiresApproval: true,
		MinAdvanceNotice: 1,
		MaxSwapsPerMonth: 3,
	}
}

func ValidateConfig(scope policy.Scope, c entity.SwapConfig) error {
	fe := apperr.FieldErrors{}

	switch {
	case c.DepartmentID == "":
		fe.Add("departmentId", "Department is required")
	case !scope.Allows(c.DepartmentID):
		fe.Add("departmentId", policy.ErrNoAccess.Error())
	}
	if c.MinAdvanceNotice < 1 {
		fe.Add("minAdvanceNotice", "Minimum advance notice must be at least 1 day")
	}
	if c.MaxSwapsPerMonth < 1 {
		fe.Add("maxSwapsPerMonth", "Maximum swaps per month must be at least 1")
	}
	return fe.Err()
}
