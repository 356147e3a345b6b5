package api

import (
	"fmt"
	"net/http"

	"github.com/adamanr/shift_console/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Query parameter sets, bound the way generated oapi handlers bind them:
// optional values are pointers and stay nil when absent.

type PageParams struct {
	Page  *int `form:"page" json:"page,omitempty"`
	Limit *int `form:"limit" json:"limit,omitempty"`
}

type ListSchedulesParams struct {
	StartDate       *string `form:"startDate" json:"startDate,omitempty"`
	EndDate         *string `form:"endDate" json:"endDate,omitempty"`
	DepartmentID    *string `form:"departmentId" json:"departmentId,omitempty"`
	SubDepartmentID *string `form:"subDepartmentId" json:"subDepartmentId,omitempty"`
	UserID          *string `form:"userId" json:"userId,omitempty"`
	ShiftID         *string `form:"shiftId" json:"shiftId,omitempty"`
	PageParams
}

type ListUsersParams struct {
	DepartmentID *string `form:"departmentId" json:"departmentId,omitempty"`
	PositionID   *string `form:"positionId" json:"positionId,omitempty"`
	Role         *string `form:"role" json:"role,omitempty"`
	Search       *string `form:"search" json:"search,omitempty"`
	PageParams
}

type ListShiftsParams struct {
	Search          *string `form:"search" json:"search,omitempty"`
	ShiftType       *string `form:"shiftType" json:"shiftType,omitempty"`
	DepartmentID    *string `form:"departmentId" json:"departmentId,omitempty"`
	SubDepartmentID *string `form:"subDepartmentId" json:"subDepartmentId,omitempty"`
	PageParams
}

type ListSwapsParams struct {
	Status       *string `form:"status" json:"status,omitempty"`
	DepartmentID *string `form:"departmentId" json:"departmentId,omitempty"`
	FromUserID   *string `form:"fromUserId" json:"fromUserId,omitempty"`
	ToUserID     *string `form:"toUserId" json:"toUserId,omitempty"`
	Sort         *string `form:"sort" json:"sort,omitempty"`
	PageParams
}

type DateRangeParams struct {
	StartDate *string `form:"startDate" json:"startDate,omitempty"`
	EndDate   *string `form:"endDate" json:"endDate,omitempty"`
}

type CalendarParams struct {
	Month        *string `form:"month" json:"month,omitempty"`
	DepartmentID *string `form:"departmentId" json:"departmentId,omitempty"`
}

type OptionsParams struct {
	DepartmentID *string `form:"departmentId" json:"departmentId,omitempty"`
}

type AuditParams struct {
	Limit *int `form:"limit" json:"limit,omitempty"`
}

type queryBinding struct {
	name     string
	required bool
	dest     any
}

func bindQuery(r *http.Request, bindings ...queryBinding) error {
	values := r.URL.Query()
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, b.required, b.name, values, b.dest); err != nil {
			return apperr.New(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", b.name, err))
		}
	}
	return nil
}

func optional(name string, dest any) queryBinding {
	return queryBinding{name: name, dest: dest}
}

func (p *PageParams) bindings() []queryBinding {
	return []queryBinding{optional("page", &p.Page), optional("limit", &p.Limit)}
}

func pathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", apperr.New(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return value, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
