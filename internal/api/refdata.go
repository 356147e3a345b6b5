package api

import (
	"net/http"
	"time"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/policy"
	"github.com/adamanr/shift_console/internal/refdata"
)

type refDataView struct {
	Users          []entity.User                    `json:"users"`
	Departments    []entity.Department              `json:"departments"`
	SubDepartments []entity.SubDepartment           `json:"subDepartments"`
	Positions      []entity.Position                `json:"positions"`
	Levels         []entity.Level                   `json:"levels"`
	Locations      []entity.Location                `json:"locations"`
	Shifts         []entity.Shift                   `json:"shifts"`
	Meta           map[gateway.Resource]entity.Meta `json:"meta"`
	LoadedAt       time.Time                        `json:"loadedAt"`
}

// scopedView is the snapshot as the caller may see it.
func scopedView(scope policy.Scope, snap refdata.Snapshot) refDataView {
	c := policy.Restrict(scope, snap.Catalog())
	return refDataView{
		Users:          c.Users,
		Departments:    c.Departments,
		SubDepartments: c.SubDepartments,
		Positions:      nonNil(snap.Positions),
		Levels:         nonNil(snap.Levels),
		Locations:      nonNil(snap.Locations),
		Shifts:         c.Shifts,
		Meta:           snap.Meta,
		LoadedAt:       snap.LoadedAt,
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (s *Server) GetRefData(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	if err := id.Scope().Check(); err != nil {
		s.httpError(w, err, "No access")
		return
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		s.httpError(w, err, "Failed to load reference data")
		return
	}

	s.httpResponse(w, http.StatusOK, scopedView(id.Scope(), snap), "success")
}

func (s *Server) RefreshRefData(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	store := s.deps.RefData.Get(id.UserID)
	if err := store.Refetch(r.Context()); err != nil {
		s.httpError(w, err, "Failed to refresh reference data")
		return
	}

	snap, _ := store.Snapshot()
	s.httpResponse(w, http.StatusOK, scopedView(id.Scope(), snap), "success")
}

// GetOptions computes the dropdown sets for a department-driven form.
func (s *Server) GetOptions(w http.ResponseWriter, r *http.Request) {
	var params OptionsParams
	if err := bindQuery(r, optional("departmentId", &params.DepartmentID)); err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	scope := identity(r).Scope()
	if err := scope.Check(); err != nil {
		s.httpResponse(w, http.StatusOK, policy.Resolve(scope, policy.Catalog{}, ""), "success")
		return
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		s.httpError(w, err, "Failed to load reference data")
		return
	}

	s.httpResponse(w, http.StatusOK, policy.Resolve(scope, snap.Catalog(), deref(params.DepartmentID)), "success")
}
