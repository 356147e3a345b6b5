package api

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the console API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/version", s.GetVersion)
	r.Post("/auth/login", s.AuthLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.Authenticate)

		r.Post("/auth/logout", s.AuthLogout)
		r.Get("/auth/me", s.AuthMe)

		r.Get("/refdata", s.GetRefData)
		r.Post("/refdata/refresh", s.RefreshRefData)
		r.Get("/options", s.GetOptions)

		r.Route("/departments", func(r chi.Router) { mountResource(s, r, departmentsResource) })
		r.Route("/subdepartments", func(r chi.Router) { mountResource(s, r, subDepartmentsResource) })
		r.Route("/positions", func(r chi.Router) { mountResource(s, r, positionsResource) })
		r.Route("/levels", func(r chi.Router) { mountResource(s, r, levelsResource) })
		r.Route("/locations", func(r chi.Router) { mountResource(s, r, locationsResource) })
		r.Route("/users", s.mountUsers)
		r.Route("/shifts", s.mountShifts)
		r.Route("/schedules", s.mountSchedules)
		r.Get("/calendar", s.GetCalendar)
		r.Route("/swaps", s.mountSwaps)
		r.Route("/swap-configs", s.mountSwapConfigs)

		r.With(s.RequireAdmin).Get("/audit", s.ListAudit)
	})
}

// Handler returns a router serving only the console API.
func (s *Server) Handler() chi.Router {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
