package entity

type Shift struct {
	ID                 string    `json:"_id,omitempty"`
	DepartmentID       RefID     `json:"departmentId,omitempty"`
	SubDepartmentID    RefID     `json:"subDepartmentId,omitempty"`
	Department         *NamedRef `json:"department,omitempty"`
	SubDepartment      *NamedRef `json:"subDepartment,omitempty"`
	Location           *Location `json:"location,omitempty"`
	ShiftName          string    `json:"shiftName"`
	ShiftType          string    `json:"shiftType,omitempty"`
	StartTime          int       `json:"startTime,omitempty"`
	EndTime            int       `json:"endTime,omitempty"`
	DurationMinutes    int       `json:"durationMinutes,omitempty"`
	IsOvernight        bool      `json:"isOvernight,omitempty"`
	StartTimeFormatted string    `json:"startTimeFormatted,omitempty"`
	EndTimeFormatted   string    `json:"endTimeFormatted,omitempty"`
	DurationFormatted  string    `json:"durationFormatted,omitempty"`
	IsActive           *bool     `json:"isActive,omitempty"`
	CreatedAt          string    `json:"createdAt,omitempty"`
	UpdatedAt          string    `json:"updatedAt,omitempty"`
}

func (s Shift) ScopeDepartment() string {
	if s.DepartmentID != "" {
		return string(s.DepartmentID)
	}
	if s.Department != nil {
		return s.Department.ID
	}
	return ""
}

type ScheduleUser struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	FullName  string `json:"fullName,omitempty"`
}

type ScheduleShift struct {
	ID                 string `json:"_id"`
	ShiftName          string `json:"shiftName,omitempty"`
	StartTimeFormatted string `json:"startTimeFormatted,omitempty"`
	EndTimeFormatted   string `json:"endTimeFormatted,omitempty"`
}

// Schedule assigns one user to one shift on one calendar date.
type Schedule struct {
	ID              string         `json:"_id,omitempty"`
	Date            string         `json:"date"`
	DepartmentID    RefID          `json:"departmentId"`
	UserID          RefID          `json:"userId"`
	ShiftID         RefID          `json:"shiftId"`
	SubDepartmentID RefID          `json:"subDepartmentId,omitempty"`
	IsActive        *bool          `json:"isActive,omitempty"`
	Department      *NamedRef      `json:"department,omitempty"`
	SubDepartment   *NamedRef      `json:"subDepartment,omitempty"`
	User            *ScheduleUser  `json:"user,omitempty"`
	Shift           *ScheduleShift `json:"shift,omitempty"`
}

func (s Schedule) ScopeDepartment() string {
	if s.DepartmentID != "" {
		return string(s.DepartmentID)
	}
	if s.Department != nil {
		return s.Department.ID
	}
	return ""
}

type CreateScheduleRequest struct {
	Date            string `json:"date"`
	ShiftID         string `json:"shiftId"`
	SubDepartmentID string `json:"subDepartmentId,omitempty"`
	UserID          string `json:"userId"`
	DepartmentID    string `json:"departmentId"`
}

// BulkScheduleRequest is expanded by the backend into len(Dates) x len(UserIDs)
// schedules. It is never persisted as such.
type BulkScheduleRequest struct {
	Dates           []string `json:"dates"`
	UserIDs         []string `json:"userIds"`
	DepartmentID    string   `json:"departmentId"`
	ShiftID         string   `json:"shiftId"`
	SubDepartmentID string   `json:"subDepartmentId,omitempty"`
}
