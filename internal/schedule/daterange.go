package schedule

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"

	// MaxRangeDays bounds one expansion or bulk request: a full leap year.
	MaxRangeDays = 366
)

var (
	ErrStartRequired = errors.New("start date is required")
	ErrEndRequired   = errors.New("end date is required")
	ErrStartAfterEnd = errors.New("start date must be before end date")
	ErrRangeTooLong  = fmt.Errorf("date range too long: at most %d days", MaxRangeDays)
)

// ParseDate reads a calendar date. Dates carry no zone; they are anchored at
// UTC midnight so day arithmetic never crosses a DST boundary.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ExpandRange lists every date from start to end inclusive, ascending. Spans
// longer than MaxRangeDays are rejected.
func ExpandRange(start, end string) ([]string, error) {
	if start == "" {
		return nil, ErrStartRequired
	}
	if end == "" {
		return nil, ErrEndRequired
	}

	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, ErrStartAfterEnd
	}

	days := int(to.Sub(from).Hours()/24) + 1
	if days > MaxRangeDays {
		return nil, ErrRangeTooLong
	}
	dates := make([]string, 0, days)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}

// DateSelection is the set of expanded dates with per-date toggles. A new
// range replaces everything and selects all of it.
type DateSelection struct {
	dates    []string
	selected map[string]bool
}

func NewDateSelection() *DateSelection {
	return &DateSelection{selected: map[string]bool{}}
}

func (s *DateSelection) SetRange(start, end string) error {
	dates, err := ExpandRange(start, end)
	if err != nil {
		s.dates = nil
		s.selected = map[string]bool{}
		return err
	}

	s.dates = dates
	s.selected = make(map[string]bool, len(dates))
	for _, d := range dates {
		s.selected[d] = true
	}
	return nil
}

// Dates returns the whole expanded range.
func (s *DateSelection) Dates() []string {
	return append([]string(nil), s.dates...)
}

// Toggle flips one date of the current range. Dates outside it are ignored.
func (s *DateSelection) Toggle(date string) {
	for _, d := range s.dates {
		if d == date {
			s.selected[date] = !s.selected[date]
			return
		}
	}
}

func (s *DateSelection) IsSelected(date string) bool {
	return s.selected[date]
}

// ToggleAll clears the selection when every date is selected and selects all
// of them otherwise.
func (s *DateSelection) ToggleAll() {
	all := len(s.Selected()) == len(s.dates)
	for _, d := range s.dates {
		s.selected[d] = !all
	}
}

// Selected returns the chosen dates in calendar order.
func (s *DateSelection) Selected() []string {
	out := make([]string, 0, len(s.dates))
	for _, d := range s.dates {
		if s.selected[d] {
			out = append(out, d)
		}
	}
	return out
}

func (s *DateSelection) Clear() {
	s.dates = nil
	s.selected = map[string]bool{}
}

// UserSelection tracks chosen user ids in the order they were picked.
type UserSelection struct {
	ids []string
}

func (s *UserSelection) Toggle(id string) {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
	s.ids = append(s.ids, id)
}

func (s *UserSelection) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// ToggleAll clears the selection when its size already equals the filtered
// list, otherwise selects every filtered user.
func (s *UserSelection) ToggleAll(filtered []string) {
	if len(s.ids) == len(filtered) {
		s.ids = nil
		return
	}
	s.ids = append([]string(nil), filtered...)
}

// Retain drops selected users that are no longer in the filtered list.
func (s *UserSelection) Retain(filtered []string) {
	keep := make(map[string]bool, len(filtered))
	for _, id := range filtered {
		keep[id] = true
	}

	out := s.ids[:0]
	for _, id := range s.ids {
		if keep[id] {
			out = append(out, id)
		}
	}
	s.ids = out
}

func (s *UserSelection) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s *UserSelection) Clear() {
	s.ids = nil
}
