package api

import (
	"net/http"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/users"
	"github.com/go-chi/chi/v5"
)

func (s *Server) mountUsers(r chi.Router) {
	r.Get("/", s.ListUsers)
	r.Post("/", s.CreateUser)
	r.Get("/{id}", getResource(s, usersResource))
	r.Patch("/{id}", s.UpdateUser)
	r.With(s.RequireConfirm).Delete("/{id}", deleteResource(s, usersResource))
}

var usersResource = resource[entity.User]{
	name:  gateway.Users,
	label: "user",
	owner: entity.User.ScopeDepartment,
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	var params ListUsersParams
	bindings := append([]queryBinding{
		optional("departmentId", &params.DepartmentID),
		optional("positionId", &params.PositionID),
		optional("role", &params.Role),
		optional("search", &params.Search),
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
		s.httpError(w, err, "Failed to load users")
		return
	}

	list := users.Filter{
		DepartmentID: deref(params.DepartmentID),
		PositionID:   deref(params.PositionID),
		Role:         entity.Role(deref(params.Role)),
		Search:       deref(params.Search),
	}.Apply(scope, snap.Users)
	users.SortByName(list)

	writePage(s, w, list, params.PageParams)
}

// CreateUser validates the form and allocates an employee id when the
// caller left it blank.
func (s *Server) CreateUser(w http.ResponseWriter, r *http.Request) {
	var u entity.User
	if err := decodeBody(r, &u); err != nil {
		s.httpError(w, err, "Invalid request body")
		return
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}

	scope := identity(r).Scope()
	if err := users.Validate(scope, u, true); err != nil {
		s.httpError(w, err, "Invalid user")
		return
	}

	if u.EmployeeID == "" {
		snap, err := s.snapshot(r.Context())
		if err != nil {
			s.httpError(w, err, "Failed to load reference data")
			return
		}
		u.EmployeeID = users.NextEmployeeID(departmentName(snap.Departments, u.ScopeDepartment()), snap.Users, s.deps.Now().Year())
	}

	resp, err := gateway.Create[entity.User](r.Context(), s.deps.Backend, gateway.Users, u)
	if err != nil {
		s.httpError(w, err, "Failed to create user")
		return
	}

	s.afterMutation(r.Context(), "create", gateway.Users, map[string]any{"id": resp.Data.ID, "employeeId": u.EmployeeID})
	resp.Data.Password = ""
	s.httpMessage(w, http.StatusCreated, resp.Message, resp.Data)
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	var u entity.User
	if err := decodeBody(r, &u); err != nil {
		s.httpError(w, err, "Invalid request body")
		return
	}

	scope := identity(r).Scope()
	if err := users.Validate(scope, u, false); err != nil {
		s.httpError(w, err, "Invalid user")
		return
	}
	if err := checkExisting(s, r, usersResource, id); err != nil {
		s.httpError(w, err, "Failed to update user")
		return
	}

	resp, err := gateway.Update[entity.User](r.Context(), s.deps.Backend, gateway.Users, id, u)
	if err != nil {
		s.httpError(w, err, "Failed to update user")
		return
	}

	s.afterMutation(r.Context(), "update", gateway.Users, map[string]any{"id": id})
	resp.Data.Password = ""
	s.httpMessage(w, http.StatusOK, resp.Message, resp.Data)
}

func departmentName(departments []entity.Department, id string) string {
	for _, d := range departments {
		if d.ID == id {
			return d.Name
		}
	}
	return ""
}
