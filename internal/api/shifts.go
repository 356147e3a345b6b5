package api

import (
	"net/http"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/shift"
	"github.com/go-chi/chi/v5"
)

var shiftsResource = resource[entity.Shift]{
	name:  gateway.Shifts,
	label: "shift",
	owner: entity.Shift.ScopeDepartment,
}

func (s *Server) mountShifts(r chi.Router) {
	r.Get("/", s.ListShifts)
	r.Get("/types", s.ListShiftTypes)
	r.Post("/", s.CreateShift)
	r.Get("/{id}", getResource(s, shiftsResource))
	r.Patch("/{id}", s.UpdateShift)
	r.With(s.RequireConfirm).Delete("/{id}", s.DeleteShift)
}

func (s *Server) ListShifts(w http.ResponseWriter, r *http.Request) {
	var params ListShiftsParams
	bindings := append([]queryBinding{
		optional("search", &params.Search),
		optional("shiftType", &params.ShiftType),
		optional("departmentId", &params.DepartmentID),
		optional("subDepartmentId", &params.SubDepartmentID),
	}, params.PageParams.bindings()...)
	if err := bindQuery(r, bindings...); err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	scope := identity(r).Scope()
	if err := scope.Check(); err != nil {
		s.httpError(w, err, "No access")
		return
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		s.httpError(w, err, "Failed to load shifts")
		return
	}

	list := shift.Filter{
		Search:          deref(params.Search),
		ShiftType:       deref(params.ShiftType),
		DepartmentID:    deref(params.DepartmentID),
		SubDepartmentID: deref(params.SubDepartmentID),
	}.Apply(scope, snap.Shifts)

	writePage(s, w, list, params.PageParams)
}

func (s *Server) ListShiftTypes(w http.ResponseWriter, _ *http.Request) {
	s.httpResponse(w, http.StatusOK, shift.Types, "success")
}

func (s *Server) CreateShift(w http.ResponseWriter, r *http.Request) {
	s.saveShift(w, r, "")
}

func (s *Server) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}
	if err := checkExisting(s, r, shiftsResource, id); err != nil {
		s.httpError(w, err, "Failed to update shift")
		return
	}
	s.saveShift(w, r, id)
}

func (s *Server) saveShift(w http.ResponseWriter, r *http.Request, id string) {
	var in shift.Input
	if err := decodeBody(r, &in); err != nil {
		s.httpError(w, err, "Invalid request body")
		return
	}

	resp, err := s.shifts.Save(r.Context(), identity(r).Scope(), id, in)
	if err != nil {
		s.httpError(w, err, "Failed to save shift")
		return
	}

	status, action := http.StatusOK, "update"
	if id == "" {
		status, action = http.StatusCreated, "create"
	}
	s.afterMutation(r.Context(), action, gateway.Shifts, map[string]any{"id": resp.Data.ID, "shiftName": in.ShiftName})
	s.httpMessage(w, status, resp.Message, resp.Data)
}

// DeleteShift surfaces "still assigned" rejections as a dialog through
// httpError.
func (s *Server) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}
	if err := checkExisting(s, r, shiftsResource, id); err != nil {
		s.httpError(w, err, "Failed to delete shift")
		return
	}

	if err := s.shifts.Delete(r.Context(), id); err != nil {
		s.httpError(w, err, "Failed to delete shift")
		return
	}

	s.afterMutation(r.Context(), "delete", gateway.Shifts, map[string]any{"id": id})
	s.httpMessage(w, http.StatusOK, "Shift deleted successfully", nil)
}
