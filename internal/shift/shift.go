package shift

import (
	"context"
	"errors"
	"strings"

	"github.com/adamanr/shift_console/internal/apperr"
	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/policy"
)

var Types = []string{
	"Morning",
	"Evening",
	"Night",
	"Rotating",
	"On-Call",
	"Flexible",
	"Holiday",
	"Emergency",
}

// Input is the shift form. Times are "HH:MM" or "h:MM AM/PM"; ShiftType may
// be one of Types or any custom value.
type Input struct {
	ShiftName       string `json:"shiftName"`
	ShiftType       string `json:"shiftType"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DepartmentID    string `json:"departmentId"`
	SubDepartmentID string `json:"subDepartmentId,omitempty"`
}

func (in Input) Validate(scope policy.Scope) error {
	fe := apperr.FieldErrors{}

	if strings.TrimSpace(in.ShiftName) == "" {
		fe.Add("shiftName", "Shift name is required")
	}
	if strings.TrimSpace(in.ShiftType) == "" {
		fe.Add("shiftType", "Shift type is required")
	}
	if in.DepartmentID == "" {
		fe.Add("departmentId", "Department is required")
	} else if !scope.Allows(in.DepartmentID) {
		fe.Add("departmentId", policy.ErrNoAccess.Error())
	}

	start, startErr := ParseClock(in.StartTime)
	end, endErr := ParseClock(in.EndTime)
	switch {
	case in.StartTime == "":
		fe.Add("startTime", "Start time is required")
	case startErr != nil:
		fe.Add("startTime", startErr.Error())
	}
	switch {
	case in.EndTime == "":
		fe.Add("endTime", "End time is required")
	case endErr != nil:
		fe.Add("endTime", endErr.Error())
	}
	if startErr == nil && endErr == nil {
		if d := Minutes(start, end); d <= 0 || d > minutesPerDay {
			fe.Add("endTime", "Shift duration must be between 1 minute and 24 hours")
		}
	}

	return fe.Err()
}

// payload is what the backend receives: the trimmed form with times in the
// requested rendering.
func (in Input) payload(twelveHour bool) (Input, error) {
	out := in
	out.ShiftName = strings.TrimSpace(in.ShiftName)
	out.ShiftType = strings.TrimSpace(in.ShiftType)

	render := To24Hour
	if twelveHour {
		render = To12Hour
	}

	var err error
	if out.StartTime, err = render(in.StartTime); err != nil {
		return Input{}, err
	}
	if out.EndTime, err = render(in.EndTime); err != nil {
		return Input{}, err
	}
	return out, nil
}

type Service struct {
	client *gateway.Client
}

func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

// Save creates the shift, or patches it when id is set. A 400/422 that blames
// the time format is answered with one resend using 12-hour times.
func (s *Service) Save(ctx context.Context, scope policy.Scope, id string, in Input) (*gateway.Response[entity.Shift], error) {
	if err := in.Validate(scope); err != nil {
		return nil, err
	}

	body, err := in.payload(false)
	if err != nil {
		return nil, err
	}

	resp, err := s.send(ctx, id, body)
	if err == nil || !timeFormatRejected(err) {
		return resp, err
	}

	body, err = in.payload(true)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, id, body)
}

func (s *Service) send(ctx context.Context, id string, body Input) (*gateway.Response[entity.Shift], error) {
	if id == "" {
		return gateway.Create[entity.Shift](ctx, s.client, gateway.Shifts, body)
	}
	return gateway.Update[entity.Shift](ctx, s.client, gateway.Shifts, id, body)
}

func timeFormatRejected(err error) bool {
	var ae *apperr.APIError
	if !errors.As(err, &ae) {
		return false
	}
	if ae.Kind != apperr.KindBadRequest && ae.Kind != apperr.KindUnprocessable {
		return false
	}
	text := strings.ToLower(ae.Message + " " + ae.Details)
	return strings.Contains(text, "time") || strings.Contains(text, "format")
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := gateway.Delete(ctx, s.client, gateway.Shifts, id)
	return err
}

type Filter struct {
	Search          string
	ShiftType       string
	DepartmentID    string
	SubDepartmentID string
}

// Apply narrows shifts to the caller's scope and the filter. Search and type
// match case-insensitive substrings.
func (f Filter) Apply(scope policy.Scope, shifts []entity.Shift) []entity.Shift {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	typ := strings.ToLower(strings.TrimSpace(f.ShiftType))

	out := make([]entity.Shift, 0, len(shifts))
	for _, sh := range policy.Visible(scope, shifts) {
		if search != "" && !strings.Contains(strings.ToLower(sh.ShiftName), search) {
			continue
		}
		if typ != "" && !strings.Contains(strings.ToLower(sh.ShiftType), typ) {
			continue
		}
		if f.DepartmentID != "" && sh.ScopeDepartment() != f.DepartmentID {
			continue
		}
		if f.SubDepartmentID != "" && subDepartmentOf(sh) != f.SubDepartmentID {
			continue
		}
		out = append(out, sh)
	}
	return out
}

func subDepartmentOf(sh entity.Shift) string {
	if sh.SubDepartmentID != "" {
		return sh.SubDepartmentID.String()
	}
	if sh.SubDepartment != nil {
		return sh.SubDepartment.ID
	}
	return ""
}
