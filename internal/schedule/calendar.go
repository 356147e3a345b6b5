package schedule

import (
	"sort"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/policy"
)

const unknown = "Unknown"

// Lookup resolves ids found on schedules to display names.
type Lookup struct {
	users          map[string]entity.User
	departments    map[string]string
	subDepartments map[string]string
	shifts         map[string]entity.Shift
}

func NewLookup(c policy.Catalog) *Lookup {
	l := &Lookup{
		users:          make(map[string]entity.User, len(c.Users)),
		departments:    make(map[string]string, len(c.Departments)),
		subDepartments: make(map[string]string, len(c.SubDepartments)),
		shifts:         make(map[string]entity.Shift, len(c.Shifts)),
	}
	for _, u := range c.Users {
		l.users[u.ID] = u
	}
	for _, d := range c.Departments {
		l.departments[d.ID] = d.Name
	}
	for _, sd := range c.SubDepartments {
		l.subDepartments[sd.ID] = sd.Name
	}
	for _, sh := range c.Shifts {
		l.shifts[sh.ID] = sh
	}
	return l
}

func (l *Lookup) UserName(s entity.Schedule) string {
	if s.User != nil {
		if name := (entity.User{FullName: s.User.FullName, FirstName: s.User.FirstName, LastName: s.User.LastName}).DisplayName(); name != "" {
			return name
		}
	}
	if u, ok := l.users[s.UserID.String()]; ok {
		return u.DisplayName()
	}
	return unknown
}

func (l *Lookup) DepartmentName(s entity.Schedule) string {
	if s.Department != nil && s.Department.Name != "" {
		return s.Department.Name
	}
	if name, ok := l.departments[s.ScopeDepartment()]; ok {
		return name
	}
	return unknown
}

// SubDepartmentName is empty when the schedule has no sub-department.
func (l *Lookup) SubDepartmentName(s entity.Schedule) string {
	if s.SubDepartment != nil && s.SubDepartment.Name != "" {
		return s.SubDepartment.Name
	}
	if s.SubDepartmentID == "" {
		return ""
	}
	if name, ok := l.subDepartments[s.SubDepartmentID.String()]; ok {
		return name
	}
	return unknown
}

func (l *Lookup) ShiftName(s entity.Schedule) string {
	if s.Shift != nil && s.Shift.ShiftName != "" {
		return s.Shift.ShiftName
	}
	if sh, ok := l.shifts[s.ShiftID.String()]; ok {
		return sh.ShiftName
	}
	return unknown
}

// TimeRange renders "start - end" from the formatted shift times.
func (l *Lookup) TimeRange(s entity.Schedule) string {
	start, end := "", ""
	if s.Shift != nil {
		start, end = s.Shift.StartTimeFormatted, s.Shift.EndTimeFormatted
	}
	if start == "" || end == "" {
		if sh, ok := l.shifts[s.ShiftID.String()]; ok {
			start, end = sh.StartTimeFormatted, sh.EndTimeFormatted
		}
	}
	if start == "" || end == "" {
		return ""
	}
	return start + " - " + end
}

type Event struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Department string `json:"department"`
	TimeRange  string `json:"timeRange,omitempty"`
}

// CalendarEvents turns the visible schedules of one month ("YYYY-MM") into
// calendar entries, optionally for a single department.
func CalendarEvents(scope policy.Scope, l *Lookup, schedules []entity.Schedule, month, departmentID string) []Event {
	events := make([]Event, 0, len(schedules))
	for _, s := range policy.Visible(scope, schedules) {
		date := s.Date
		if len(date) > len(DateLayout) {
			date = date[:len(DateLayout)]
		}
		if month != "" && (len(date) < len(month) || date[:len(month)] != month) {
			continue
		}
		if departmentID != "" && s.ScopeDepartment() != departmentID {
			continue
		}

		events = append(events, Event{
			ID:         s.ID,
			Title:      l.UserName(s) + " - " + l.ShiftName(s),
			Date:       date,
			Department: l.DepartmentName(s),
			TimeRange:  l.TimeRange(s),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events
}
