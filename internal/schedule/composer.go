package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/adamanr/shift_console/internal/apperr"
	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/policy"
)

// BulkComposer assembles one bulk creation request: every selected date for
// every selected user, against one department and shift.
type BulkComposer struct {
	scope           policy.Scope
	Dates           *DateSelection
	Users           UserSelection
	departmentID    string
	shiftID         string
	subDepartmentID string
}

func NewBulkComposer(scope policy.Scope) *BulkComposer {
	return &BulkComposer{
		scope:        scope,
		Dates:        NewDateSelection(),
		departmentID: policy.DefaultDepartment(scope),
	}
}

func (b *BulkComposer) DepartmentID() string {
	return b.departmentID
}

// SetDepartment switches department and clears everything that depended on
// the previous one.
func (b *BulkComposer) SetDepartment(id string) error {
	if err := b.scope.Check(); err != nil {
		return err
	}
	if id != "" && !b.scope.Allows(id) {
		return fmt.Errorf("department %s: %w", id, policy.ErrNoAccess)
	}

	b.departmentID = id
	b.subDepartmentID = ""
	b.shiftID = ""
	b.Users.Clear()
	return nil
}

func (b *BulkComposer) SetShift(id string) {
	b.shiftID = id
}

func (b *BulkComposer) SetSubDepartment(id string) {
	b.subDepartmentID = id
}

// Options lists what the department-dependent dropdowns may offer now.
func (b *BulkComposer) Options(c policy.Catalog) policy.Options {
	return policy.Resolve(b.scope, c, b.departmentID)
}

func (b *BulkComposer) Validate() error {
	fe := apperr.FieldErrors{}
	if len(b.Dates.Selected()) == 0 {
		fe.Add("dates", "dates required")
	}
	if len(b.Users.IDs()) == 0 {
		fe.Add("userIds", "users required")
	}
	if b.departmentID == "" {
		fe.Add("departmentId", "department required")
	}
	if b.shiftID == "" {
		fe.Add("shiftId", "shift required")
	}
	return fe.Err()
}

func (b *BulkComposer) Request() (entity.BulkScheduleRequest, error) {
	if err := b.Validate(); err != nil {
		return entity.BulkScheduleRequest{}, err
	}
	return entity.BulkScheduleRequest{
		Dates:           b.Dates.Selected(),
		UserIDs:         b.Users.IDs(),
		DepartmentID:    b.departmentID,
		ShiftID:         b.shiftID,
		SubDepartmentID: b.subDepartmentID,
	}, nil
}

// Reset discards the transient selections and returns to the role default
// department.
func (b *BulkComposer) Reset() {
	b.Dates.Clear()
	b.Users.Clear()
	b.shiftID = ""
	b.subDepartmentID = ""
	b.departmentID = policy.DefaultDepartment(b.scope)
}

// Draft is a bulk request as submitted in one go. Dates come either from a
// range with optional exclusions or as an explicit list.
type Draft struct {
	StartDate       string   `json:"startDate,omitempty"`
	EndDate         string   `json:"endDate,omitempty"`
	Exclude         []string `json:"exclude,omitempty"`
	Dates           []string `json:"dates,omitempty"`
	UserIDs         []string `json:"userIds"`
	DepartmentID    string   `json:"departmentId"`
	ShiftID         string   `json:"shiftId"`
	SubDepartmentID string   `json:"subDepartmentId,omitempty"`
}

// Compose replays a draft through a BulkComposer and checks every reference
// against the caller-visible catalog.
func Compose(scope policy.Scope, c policy.Catalog, d Draft) (entity.BulkScheduleRequest, error) {
	fe := apperr.FieldErrors{}
	b := NewBulkComposer(scope)

	if d.DepartmentID != "" {
		if err := b.SetDepartment(d.DepartmentID); err != nil {
			fe.Add("departmentId", err.Error())
		}
	} else if err := scope.Check(); err != nil {
		return entity.BulkScheduleRequest{}, err
	}

	switch {
	case len(d.Dates) > 0:
		if err := b.Dates.SetDates(d.Dates); err != nil {
			fe.Add("dates", err.Error())
		}
	case d.StartDate != "" || d.EndDate != "":
		if err := b.Dates.SetRange(d.StartDate, d.EndDate); err != nil {
			fe.Add("dates", err.Error())
		}
		for _, date := range d.Exclude {
			if b.Dates.IsSelected(date) {
				b.Dates.Toggle(date)
			}
		}
	}

	dept := b.DepartmentID()
	opts := b.Options(c)

	visibleUsers := make(map[string]bool, len(opts.Users))
	for _, u := range opts.Users {
		visibleUsers[u.ID] = true
	}
	for _, id := range d.UserIDs {
		if dept != "" && !visibleUsers[id] {
			fe.Add("userIds", fmt.Sprintf("user %s is not in the selected department", id))
			continue
		}
		if !b.Users.Contains(id) {
			b.Users.Toggle(id)
		}
	}

	if d.ShiftID != "" {
		if dept != "" && !containsID(opts.Shifts, d.ShiftID, func(s entity.Shift) string { return s.ID }) {
			fe.Add("shiftId", "shift does not belong to the selected department")
		}
		b.SetShift(d.ShiftID)
	}
	if d.SubDepartmentID != "" {
		if dept != "" && !containsID(opts.SubDepartments, d.SubDepartmentID, func(s entity.SubDepartment) string { return s.ID }) {
			fe.Add("subDepartmentId", "sub-department does not belong to the selected department")
		}
		b.SetSubDepartment(d.SubDepartmentID)
	}

	if err := b.Validate(); err != nil {
		for field, msg := range err.(apperr.FieldErrors) {
			fe.Add(field, msg)
		}
	}
	if err := fe.Err(); err != nil {
		return entity.BulkScheduleRequest{}, err
	}
	return b.Request()
}

func containsID[T any](items []T, id string, key func(T) string) bool {
	for _, item := range items {
		if key(item) == id {
			return true
		}
	}
	return false
}

// SetDates replaces the range with an explicit list, sorted and de-duplicated,
// all selected. At most MaxRangeDays distinct dates are accepted.
func (s *DateSelection) SetDates(dates []string) error {
	seen := make(map[string]bool, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, err := ParseDate(d); err != nil {
			return err
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	if len(out) > MaxRangeDays {
		return ErrRangeTooLong
	}
	sort.Strings(out)

	s.dates = out
	s.selected = make(map[string]bool, len(out))
	for _, d := range out {
		s.selected[d] = true
	}
	return nil
}

// Form is the single schedule create/edit form.
type Form struct {
	scope   policy.Scope
	now     func() time.Time
	editing bool

	Date            string
	DepartmentID    string
	UserID          string
	ShiftID         string
	SubDepartmentID string
}

func NewForm(scope policy.Scope, now func() time.Time) *Form {
	return &Form{
		scope:        scope,
		now:          now,
		DepartmentID: policy.DefaultDepartment(scope),
	}
}

// EditForm starts from an existing schedule.
func EditForm(scope policy.Scope, now func() time.Time, s entity.Schedule) *Form {
	date := s.Date
	if len(date) > len(DateLayout) {
		date = date[:len(DateLayout)]
	}
	return &Form{
		scope:           scope,
		now:             now,
		editing:         true,
		Date:            date,
		DepartmentID:    s.ScopeDepartment(),
		UserID:          s.UserID.String(),
		ShiftID:         s.ShiftID.String(),
		SubDepartmentID: s.SubDepartmentID.String(),
	}
}

func (f *Form) SetDepartment(id string) error {
	if err := f.scope.Check(); err != nil {
		return err
	}
	if id != "" && !f.scope.Allows(id) {
		return fmt.Errorf("department %s: %w", id, policy.ErrNoAccess)
	}

	f.DepartmentID = id
	f.SubDepartmentID = ""
	f.UserID = ""
	f.ShiftID = ""
	return nil
}

func (f *Form) Validate() error {
	fe := apperr.FieldErrors{}

	if f.Date == "" {
		fe.Add("date", "date required")
	} else if d, err := ParseDate(f.Date); err != nil {
		fe.Add("date", err.Error())
	} else if !f.editing {
		now := f.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if d.Before(today) {
			fe.Add("date", "date cannot be in the past")
		}
	}

	if f.DepartmentID == "" {
		fe.Add("departmentId", "department required")
	} else if !f.scope.Allows(f.DepartmentID) {
		fe.Add("departmentId", policy.ErrNoAccess.Error())
	}
	if f.UserID == "" {
		fe.Add("userId", "user required")
	}
	if f.ShiftID == "" {
		fe.Add("shiftId", "shift required")
	}
	return fe.Err()
}

func (f *Form) Request() (entity.CreateScheduleRequest, error) {
	if err := f.Validate(); err != nil {
		return entity.CreateScheduleRequest{}, err
	}
	return entity.CreateScheduleRequest{
		Date:            f.Date,
		ShiftID:         f.ShiftID,
		SubDepartmentID: f.SubDepartmentID,
		UserID:          f.UserID,
		DepartmentID:    f.DepartmentID,
	}, nil
}
