package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamanr/shift_console/internal/apperr"
	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/export"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/pagination"
	"github.com/adamanr/shift_console/internal/policy"
	"github.com/adamanr/shift_console/internal/schedule"
	"github.com/go-chi/chi/v5"
)

// exportLimit caps how many schedules one export or calendar month pulls.
const exportLimit = 1000

func (s *Server) mountSchedules(r chi.Router) {
	r.Get("/", s.ListSchedules)
	r.Post("/", s.CreateSchedule)
	r.Get("/dates", s.ExpandDates)
	r.Post("/bulk", s.CreateSchedules)
	r.Get("/export", s.ExportSchedules)
	r.Patch("/{id}", s.UpdateSchedule)
	r.With(s.RequireConfirm).Delete("/{id}", s.DeleteSchedule)
}

type scheduleMeta struct {
	entity.Meta
	TotalPages int   `json:"totalPages"`
	Pages      []int `json:"pages"`
}

type scheduleBody struct {
	Date            string `json:"date"`
	DepartmentID    string `json:"departmentId"`
	UserID          string `json:"userId"`
	ShiftID         string `json:"shiftId"`
	SubDepartmentID string `json:"subDepartmentId,omitempty"`
}

func bindScheduleFilters(r *http.Request) (schedule.Filters, error) {
	var params ListSchedulesParams
	bindings := append([]queryBinding{
		optional("startDate", &params.StartDate),
		optional("endDate", &params.EndDate),
		optional("departmentId", &params.DepartmentID),
		optional("subDepartmentId", &params.SubDepartmentID),
		optional("userId", &params.UserID),
		optional("shiftId", &params.ShiftID),
	}, params.PageParams.bindings()...)
	if err := bindQuery(r, bindings...); err != nil {
		return schedule.Filters{}, err
	}

	return schedule.Filters{
		StartDate:       deref(params.StartDate),
		EndDate:         deref(params.EndDate),
		DepartmentID:    deref(params.DepartmentID),
		SubDepartmentID: deref(params.SubDepartmentID),
		UserID:          deref(params.UserID),
		ShiftID:         deref(params.ShiftID),
		Page:            deref(params.Page),
		Limit:           deref(params.Limit),
	}, nil
}

func (s *Server) ListSchedules(w http.ResponseWriter, r *http.Request) {
	f, err := bindScheduleFilters(r)
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	page, err := s.schedules.List(r.Context(), identity(r).Scope(), f)
	if err != nil {
		s.httpError(w, err, "Failed to load schedules")
		return
	}

	total := page.Meta.TotalFiltered
	if total == 0 {
		total = page.Meta.Total
	}
	limit := page.Meta.Limit
	if limit == 0 {
		_, limit = PageParams{Limit: &f.Limit}.resolve()
	}
	current := page.Meta.Page
	if current == 0 {
		current = 1
	}
	totalPages := pagination.TotalPages(total, limit)

	s.httpPage(w, page.Items, scheduleMeta{
		Meta:       page.Meta,
		TotalPages: totalPages,
		Pages:      pagination.WithGaps(current, totalPages),
	})
}

// checkReferences makes sure user, shift and sub-department belong to the
// form's department as the caller sees it.
func checkReferences(scope policy.Scope, c policy.Catalog, req entity.CreateScheduleRequest) error {
	opts := policy.Resolve(scope, c, req.DepartmentID)
	fe := apperr.FieldErrors{}

	if !hasID(opts.Users, req.UserID, func(u entity.User) string { return u.ID }) {
		fe.Add("userId", "user is not in the selected department")
	}
	if !hasID(opts.Shifts, req.ShiftID, func(sh entity.Shift) string { return sh.ID }) {
		fe.Add("shiftId", "shift does not belong to the selected department")
	}
	if req.SubDepartmentID != "" && !hasID(opts.SubDepartments, req.SubDepartmentID, func(sd entity.SubDepartment) string { return sd.ID }) {
		fe.Add("subDepartmentId", "sub-department does not belong to the selected department")
	}
	return fe.Err()
}

func hasID[T any](items []T, id string, key func(T) string) bool {
	for _, item := range items {
		if key(item) == id {
			return true
		}
	}
	return false
}

func applyBody(form *schedule.Form, body scheduleBody) error {
	if body.DepartmentID != "" && body.DepartmentID != form.DepartmentID {
		if err := form.SetDepartment(body.DepartmentID); err != nil {
			return err
		}
	}
	if body.Date != "" {
		form.Date = body.Date
	}
	if body.UserID != "" {
		form.UserID = body.UserID
	}
	if body.ShiftID != "" {
		form.ShiftID = body.ShiftID
	}
	if body.SubDepartmentID != "" {
		form.SubDepartmentID = body.SubDepartmentID
	}
	return nil
}

func (s *Server) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var body scheduleBody
	if err := decodeBody(r, &body); err != nil {
		s.httpError(w, err, "Invalid request body")
		return
	}

	scope := identity(r).Scope()
	form := schedule.NewForm(scope, s.deps.Now)
	if err := applyBody(form, body); err != nil {
		s.httpError(w, err, "Invalid schedule")
		return
	}

	req, err := form.Request()
	if err != nil {
		s.httpError(w, err, "Invalid schedule")
		return
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		s.httpError(w, err, "Failed to load reference data")
		return
	}
	if err := checkReferences(scope, snap.Catalog(), req); err != nil {
		s.httpError(w, err, "Invalid schedule")
		return
	}

	resp, err := s.schedules.Create(r.Context(), req)
	if err != nil {
		s.httpErrorWith(w, err, "Failed to create schedule", scheduleMessages)
		return
	}

	s.afterMutation(r.Context(), "create", gateway.Schedules, req)
	s.httpMessage(w, http.StatusCreated, resp.Message, resp.Data)
}

var scheduleMessages = map[apperr.Kind]string{
	apperr.KindConflict: "A schedule already exists for this user and date",
}

func (s *Server) loadSchedule(r *http.Request, id string) (entity.Schedule, error) {
	existing, err := gateway.Get[entity.Schedule](r.Context(), s.deps.Backend, gateway.Schedules, id)
	if err != nil {
		return entity.Schedule{}, err
	}
	if !identity(r).Scope().Allows(existing.ScopeDepartment()) {
		return entity.Schedule{}, policy.ErrNoAccess
	}
	return existing, nil
}

func (s *Server) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	var body scheduleBody
	if err := decodeBody(r, &body); err != nil {
		s.httpError(w, err, "Invalid request body")
		return
	}

	existing, err := s.loadSchedule(r, id)
	if err != nil {
		s.httpError(w, err, "Failed to load schedule")
		return
	}

	scope := identity(r).Scope()
	form := schedule.EditForm(scope, s.deps.Now, existing)
	if err := applyBody(form, body); err != nil {
		s.httpError(w, err, "Invalid schedule")
		return
	}

	req, err := form.Request()
	if err != nil {
		s.httpError(w, err, "Invalid schedule")
		return
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		s.httpError(w, err, "Failed to load reference data")
		return
	}
	if err := checkReferences(scope, snap.Catalog(), req); err != nil {
		s.httpError(w, err, "Invalid schedule")
		return
	}

	resp, err := s.schedules.Update(r.Context(), id, req)
	if err != nil {
		s.httpErrorWith(w, err, "Failed to update schedule", scheduleMessages)
		return
	}

	s.afterMutation(r.Context(), "update", gateway.Schedules, map[string]any{"id": id, "request": req})
	s.httpMessage(w, http.StatusOK, resp.Message, resp.Data)
}

func (s *Server) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	if _, err := s.loadSchedule(r, id); err != nil {
		s.httpError(w, err, "Failed to load schedule")
		return
	}

	if err := s.schedules.Delete(r.Context(), id); err != nil {
		s.httpError(w, err, "Failed to delete schedule")
		return
	}

	s.afterMutation(r.Context(), "delete", gateway.Schedules, map[string]any{"id": id})
	s.httpMessage(w, http.StatusOK, "Schedule deleted successfully", nil)
}

type expandedDates struct {
	Dates []string `json:"dates"`
	Count int      `json:"count"`
}

// ExpandDates previews the dates a bulk range covers.
func (s *Server) ExpandDates(w http.ResponseWriter, r *http.Request) {
	var params DateRangeParams
	if err := bindQuery(r, optional("startDate", &params.StartDate), optional("endDate", &params.EndDate)); err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	dates, err := schedule.ExpandRange(deref(params.StartDate), deref(params.EndDate))
	if err != nil {
		s.httpError(w, apperr.FieldErrors{"dates": err.Error()}, "Invalid date range")
		return
	}

	s.httpResponse(w, http.StatusOK, expandedDates{Dates: dates, Count: len(dates)}, "success")
}

// CreateSchedules submits one bulk request: every selected date for every
// selected user.
func (s *Server) CreateSchedules(w http.ResponseWriter, r *http.Request) {
	var draft schedule.Draft
	if err := decodeBody(r, &draft); err != nil {
		s.httpError(w, err, "Invalid request body")
		return
	}

	scope := identity(r).Scope()
	snap, err := s.snapshot(r.Context())
	if err != nil {
		s.httpError(w, err, "Failed to load reference data")
		return
	}

	req, err := schedule.Compose(scope, snap.Catalog(), draft)
	if err != nil {
		s.httpError(w, err, "Invalid bulk schedule")
		return
	}

	result, err := s.schedules.CreateMany(r.Context(), req)
	if err != nil {
		s.httpErrorWith(w, err, "Failed to create schedules", scheduleMessages)
		return
	}

	requested := len(req.Dates) * len(req.UserIDs)
	if result.Count < requested {
		s.deps.Logger.Warn("Backend created fewer schedules than requested",
			slog.Int("requested", requested), slog.Int("created", result.Count))
	}

	s.afterMutation(r.Context(), "bulk_create", gateway.Schedules, map[string]any{
		"departmentId": req.DepartmentID,
		"shiftId":      req.ShiftID,
		"dates":        len(req.Dates),
		"users":        len(req.UserIDs),
		"created":      result.Count,
	})

	message := result.Message
	if message == "" {
		message = fmt.Sprintf("Created %d schedules", result.Count)
	}
	s.httpMessage(w, http.StatusCreated, message, result)
}

func (s *Server) ExportSchedules(w http.ResponseWriter, r *http.Request) {
	f, err := bindScheduleFilters(r)
	if err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}
	f.Page, f.Limit = 1, exportLimit

	scope := identity(r).Scope()
	page, err := s.schedules.List(r.Context(), scope, f)
	if err != nil {
		s.httpError(w, err, "Failed to load schedules")
		return
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		s.httpError(w, err, "Failed to load reference data")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(f.StartDate, f.EndDate)))
	if err := export.WriteRoster(w, schedule.NewLookup(policy.Restrict(scope, snap.Catalog())), page.Items); err != nil {
		s.deps.Logger.Error("Error writing roster", slog.String("error", err.Error()))
	}
}

// GetCalendar returns the month's schedules as calendar events.
func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	var params CalendarParams
	if err := bindQuery(r, optional("month", &params.Month), optional("departmentId", &params.DepartmentID)); err != nil {
		s.httpError(w, err, "Invalid parameters")
		return
	}

	month := deref(params.Month)
	if month == "" {
		month = s.deps.Now().Format("2006-01")
	}
	first, err := time.Parse("2006-01", month)
	if err != nil {
		s.httpError(w, apperr.FieldErrors{"month": "month must be YYYY-MM"}, "Invalid month")
		return
	}
	last := first.AddDate(0, 1, -1)

	scope := identity(r).Scope()
	page, err := s.schedules.List(r.Context(), scope, schedule.Filters{
		StartDate:    first.Format(schedule.DateLayout),
		EndDate:      last.Format(schedule.DateLayout),
		DepartmentID: deref(params.DepartmentID),
		Page:         1,
		Limit:        exportLimit,
	})
	if err != nil {
		s.httpError(w, err, "Failed to load schedules")
		return
	}

	snap, err := s.snapshot(r.Context())
	if err != nil {
		s.httpError(w, err, "Failed to load reference data")
		return
	}

	events := schedule.CalendarEvents(scope, schedule.NewLookup(snap.Catalog()), page.Items, month, deref(params.DepartmentID))
	s.httpResponse(w, http.StatusOK, events, "success")
}
