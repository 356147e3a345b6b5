package api

import (
	"fmt"
	"net/http"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/policy"
	"github.com/adamanr/shift_console/internal/refdata"
	"github.com/go-chi/chi/v5"
)

// resource describes a reference collection served straight from the cache
// and mutated through the gateway.
type resource[T any] struct {
	name  gateway.Resource
	label string
	list  func(refdata.Snapshot) []T
	// owner is the department a record belongs to. Without it only admins
	// may change the collection.
	owner func(T) string
}

var (
	departmentsResource = resource[entity.Department]{
		name:  gateway.Departments,
		label: "department",
		list:  func(s refdata.Snapshot) []entity.Department { return s.Departments },
	}
	subDepartmentsResource = resource[entity.SubDepartment]{
		name:  gateway.SubDepartments,
		label: "sub-department",
		list:  func(s refdata.Snapshot) []entity.SubDepartment { return s.SubDepartments },
		owner: entity.SubDepartment.ScopeDepartment,
	}
	positionsResource = resource[entity.Position]{
		name:  gateway.Positions,
		label: "position",
		list:  func(s refdata.Snapshot) []entity.Position { return s.Positions },
	}
	levelsResource = resource[entity.Level]{
		name:  gateway.Levels,
		label: "level",
		list:  func(s refdata.Snapshot) []entity.Level { return s.Levels },
	}
	locationsResource = resource[entity.Location]{
		name:  gateway.Locations,
		label: "location",
		list:  func(s refdata.Snapshot) []entity.Location { return s.Locations },
	}
)

// visible filters department-scoped items and passes the rest through.
func visible[T any](scope policy.Scope, items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if scoped, ok := any(item).(policy.DepartmentScoped); ok && !scope.Allows(scoped.ScopeDepartment()) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (res resource[T]) mayChange(scope policy.Scope, item T) bool {
	if scope.Unrestricted() {
		return true
	}
	if res.owner == nil {
		return false
	}
	return scope.Allows(res.owner(item))
}

func mountResource[T any](s *Server, r chi.Router, res resource[T]) {
	r.Get("/", listResource(s, res))
	r.Post("/", createResource(s, res))
	r.Get("/{id}", getResource(s, res))
	r.Patch("/{id}", updateResource(s, res))
	r.With(s.RequireConfirm).Delete("/{id}", deleteResource(s, res))
}

func listResource[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params PageParams
		if err := bindQuery(r, params.bindings()...); err != nil {
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
			s.httpError(w, err, fmt.Sprintf("Failed to load %ss", res.label))
			return
		}

		items := visible(scope, res.list(snap))
		writePage(s, w, items, params)
	}
}

func getResource[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathParam(r, "id")
		if err != nil {
			s.httpError(w, err, "Invalid parameters")
			return
		}

		item, err := gateway.Get[T](r.Context(), s.deps.Backend, res.name, id)
		if err != nil {
			s.httpError(w, err, fmt.Sprintf("Failed to load %s", res.label))
			return
		}
		if len(visible(identity(r).Scope(), []T{item})) == 0 {
			s.httpError(w, policy.ErrNoAccess, "No access")
			return
		}

		s.httpResponse(w, http.StatusOK, item, "success")
	}
}

func createResource[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := decodeBody(r, &item); err != nil {
			s.httpError(w, err, "Invalid request body")
			return
		}
		if !res.mayChange(identity(r).Scope(), item) {
			s.httpError(w, policy.ErrNoAccess, "No access")
			return
		}

		resp, err := gateway.Create[T](r.Context(), s.deps.Backend, res.name, item)
		if err != nil {
			s.httpError(w, err, fmt.Sprintf("Failed to create %s", res.label))
			return
		}

		s.afterMutation(r.Context(), "create", res.name, resp.Data)
		s.httpMessage(w, http.StatusCreated, resp.Message, resp.Data)
	}
}

func updateResource[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathParam(r, "id")
		if err != nil {
			s.httpError(w, err, "Invalid parameters")
			return
		}

		var item T
		if err := decodeBody(r, &item); err != nil {
			s.httpError(w, err, "Invalid request body")
			return
		}

		if err := checkExisting(s, r, res, id); err != nil {
			s.httpError(w, err, fmt.Sprintf("Failed to update %s", res.label))
			return
		}
		if res.owner != nil && res.owner(item) != "" && !res.mayChange(identity(r).Scope(), item) {
			s.httpError(w, policy.ErrNoAccess, "No access")
			return
		}

		resp, err := gateway.Update[T](r.Context(), s.deps.Backend, res.name, id, item)
		if err != nil {
			s.httpError(w, err, fmt.Sprintf("Failed to update %s", res.label))
			return
		}

		s.afterMutation(r.Context(), "update", res.name, map[string]any{"id": id})
		s.httpMessage(w, http.StatusOK, resp.Message, resp.Data)
	}
}

func deleteResource[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathParam(r, "id")
		if err != nil {
			s.httpError(w, err, "Invalid parameters")
			return
		}

		if err := checkExisting(s, r, res, id); err != nil {
			s.httpError(w, err, fmt.Sprintf("Failed to delete %s", res.label))
			return
		}

		resp, err := gateway.Delete(r.Context(), s.deps.Backend, res.name, id)
		if err != nil {
			s.httpError(w, err, fmt.Sprintf("Failed to delete %s", res.label))
			return
		}

		s.afterMutation(r.Context(), "delete", res.name, map[string]any{"id": id})
		s.httpMessage(w, http.StatusOK, resp.Message, nil)
	}
}

// checkExisting makes sure the caller may change the stored record. Admins
// skip the lookup.
func checkExisting[T any](s *Server, r *http.Request, res resource[T], id string) error {
	scope := identity(r).Scope()
	if scope.Unrestricted() {
		return nil
	}
	if res.owner == nil {
		return policy.ErrNoAccess
	}

	item, err := gateway.Get[T](r.Context(), s.deps.Backend, res.name, id)
	if err != nil {
		return err
	}
	if !scope.Allows(res.owner(item)) {
		return policy.ErrNoAccess
	}
	return nil
}
