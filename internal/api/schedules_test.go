package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/export"
	"github.com/adamanr/shift_console/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const icuSchedules = `{"data":[
	{"_id":"s1","date":"2025-06-20","departmentId":"d1","userId":"u3","shiftId":"sh1"},
	{"_id":"s2","date":"2025-06-05T00:00:00.000Z","departmentId":"d1","userId":"u2","shiftId":"sh1","subDepartmentId":"sd1"}
],"total":25,"page":1,"limit":10}`

const existingSchedule = `{"data":{"_id":"s1","date":"2025-01-10T00:00:00.000Z","departmentId":"d1","userId":"u3","shiftId":"sh1"}}`

func TestListSchedules(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("GET /schedules", respondJSON(http.StatusOK, icuSchedules))

	rec := env.do(http.MethodGet, "/schedules?departmentId=d2&startDate=2025-06-01", managerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode(t, rec)
	items := decodeData[[]entity.Schedule](t, resp)
	assert.Len(t, items, 2)

	var meta scheduleMeta
	require.NoError(t, json.Unmarshal(resp.Meta, &meta))
	assert.Equal(t, 25, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, meta.Pages)

	q := env.backend.query("GET /schedules")
	assert.Equal(t, "d1", q.Get("departmentId"))
	assert.Equal(t, "2025-06-01", q.Get("startDate"))
	assert.Equal(t, "true", q.Get("isActive"))
}

func TestCreateSchedule(t *testing.T) {
	created := `{"message":"Schedule created","data":{"_id":"s9","date":"2025-06-20","departmentId":"d1","userId":"u3","shiftId":"sh1"}}`

	tests := []struct {
		name    string
		body    scheduleBody
		backend http.HandlerFunc
		status  int
		message string
		errors  map[string]string
	}{
		{
			name:    "created in own department",
			body:    scheduleBody{Date: "2025-06-20", UserID: "u3", ShiftID: "sh1", SubDepartmentID: "sd1"},
			backend: respondJSON(http.StatusCreated, created),
			status:  http.StatusCreated,
			message: "Schedule created",
		},
		{
			name:    "today is allowed",
			body:    scheduleBody{Date: "2025-06-15", UserID: "u3", ShiftID: "sh1"},
			backend: respondJSON(http.StatusCreated, created),
			status:  http.StatusCreated,
			message: "Schedule created",
		},
		{
			name:    "past date",
			body:    scheduleBody{Date: "2025-06-14", UserID: "u3", ShiftID: "sh1"},
			status:  http.StatusUnprocessableEntity,
			message: "Please fix the validation errors before submitting",
			errors:  map[string]string{"date": "date cannot be in the past"},
		},
		{
			name:    "user from another department",
			body:    scheduleBody{Date: "2025-06-20", UserID: "u4", ShiftID: "sh2"},
			status:  http.StatusUnprocessableEntity,
			message: "Please fix the validation errors before submitting",
			errors: map[string]string{
				"userId":  "user is not in the selected department",
				"shiftId": "shift does not belong to the selected department",
			},
		},
		{
			name:   "other department requested",
			body:   scheduleBody{Date: "2025-06-20", DepartmentID: "d2", UserID: "u4", ShiftID: "sh2"},
			status: http.StatusForbidden,
		},
		{
			name:    "duplicate",
			body:    scheduleBody{Date: "2025-06-20", UserID: "u3", ShiftID: "sh1"},
			backend: respondJSON(http.StatusConflict, `{}`),
			status:  http.StatusConflict,
			message: "A schedule already exists for this user and date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.backend != nil {
				env.backend.handle("POST /schedules", tt.backend)
			}

			rec := env.do(http.MethodPost, "/schedules", managerToken, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			resp := decode(t, rec)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Message)
			}
			if tt.errors != nil {
				assert.Equal(t, tt.errors, resp.Errors)
			}
			if tt.backend == nil {
				assert.False(t, env.backend.called("POST /schedules"))
			}
		})
	}
}

func TestCreateSchedule_SendsDefaultDepartment(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("POST /schedules", respondJSON(http.StatusCreated, `{"data":{"_id":"s9"}}`))

	rec := env.do(http.MethodPost, "/schedules", managerToken, scheduleBody{Date: "2025-07-01", UserID: "u2", ShiftID: "sh1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var sent entity.CreateScheduleRequest
	require.NoError(t, json.Unmarshal(env.backend.body("POST /schedules"), &sent))
	assert.Equal(t, entity.CreateScheduleRequest{Date: "2025-07-01", ShiftID: "sh1", UserID: "u2", DepartmentID: "d1"}, sent)
	env.audit.AssertCalled(t, "Record", mock.Anything, "u2", "create", "schedules", sent)
}

func TestUpdateSchedule(t *testing.T) {
	t.Run("past schedule may be edited", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.handle("GET /schedules/s1", respondJSON(http.StatusOK, existingSchedule))
		env.backend.handle("PATCH /schedules/s1", respondJSON(http.StatusOK, `{"message":"Schedule updated","data":{"_id":"s1"}}`))

		rec := env.do(http.MethodPatch, "/schedules/s1", managerToken, scheduleBody{SubDepartmentID: "sd1"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Schedule updated", decode(t, rec).Message)

		var sent entity.CreateScheduleRequest
		require.NoError(t, json.Unmarshal(env.backend.body("PATCH /schedules/s1"), &sent))
		assert.Equal(t, entity.CreateScheduleRequest{Date: "2025-01-10", ShiftID: "sh1", SubDepartmentID: "sd1", UserID: "u3", DepartmentID: "d1"}, sent)
	})

	t.Run("other department", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.handle("GET /schedules/s1", respondJSON(http.StatusOK, strings.Replace(existingSchedule, `"d1"`, `"d2"`, 1)))

		rec := env.do(http.MethodPatch, "/schedules/s1", managerToken, scheduleBody{ShiftID: "sh1"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, env.backend.called("PATCH /schedules/s1"))
	})
}

func TestDeleteSchedule(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("GET /schedules/s1", respondJSON(http.StatusOK, existingSchedule))
	env.backend.handle("DELETE /schedules/s1", respondJSON(http.StatusOK, `{}`))

	rec := env.do(http.MethodDelete, "/schedules/s1", managerToken, nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.False(t, env.backend.called("DELETE /schedules/s1"))

	rec = env.do(http.MethodDelete, "/schedules/s1?confirm=true", managerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Schedule deleted successfully", decode(t, rec).Message)
	assert.True(t, env.backend.called("DELETE /schedules/s1"))
}

func mustExpand(t *testing.T, start, end string) []string {
	t.Helper()
	dates, err := schedule.ExpandRange(start, end)
	require.NoError(t, err)
	return dates
}

func TestExpandDates(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		dates  []string
		error  string
	}{
		{name: "across month end", query: "?startDate=2025-03-30&endDate=2025-04-02", status: http.StatusOK, dates: []string{"2025-03-30", "2025-03-31", "2025-04-01", "2025-04-02"}},
		{name: "single day", query: "?startDate=2025-03-30&endDate=2025-03-30", status: http.StatusOK, dates: []string{"2025-03-30"}},
		{name: "reversed", query: "?startDate=2025-04-02&endDate=2025-03-30", status: http.StatusUnprocessableEntity, error: schedule.ErrStartAfterEnd.Error()},
		{name: "missing start", query: "?endDate=2025-03-30", status: http.StatusUnprocessableEntity, error: schedule.ErrStartRequired.Error()},
		{name: "missing end", query: "?startDate=2025-03-30", status: http.StatusUnprocessableEntity, error: schedule.ErrEndRequired.Error()},
		{name: "longest allowed", query: "?startDate=2024-01-01&endDate=2024-12-31", status: http.StatusOK, dates: mustExpand(t, "2024-01-01", "2024-12-31")},
		{name: "too long", query: "?startDate=0001-01-01&endDate=9999-12-31", status: http.StatusUnprocessableEntity, error: schedule.ErrRangeTooLong.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(http.MethodGet, "/schedules/dates"+tt.query, managerToken, nil)
			require.Equal(t, tt.status, rec.Code)

			resp := decode(t, rec)
			if tt.error != "" {
				assert.Equal(t, tt.error, resp.Errors["dates"])
				return
			}
			out := decodeData[expandedDates](t, resp)
			assert.Equal(t, tt.dates, out.Dates)
			assert.Equal(t, len(tt.dates), out.Count)
		})
	}
}

func TestCreateSchedules(t *testing.T) {
	t.Run("every date for every user", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.handle("POST /schedules/createMultiUser", respondJSON(http.StatusCreated, `{"message":"Schedules created","data":[{"_id":"a"},{"_id":"b"},{"_id":"c"},{"_id":"d"}]}`))

		rec := env.do(http.MethodPost, "/schedules/bulk", managerToken, schedule.Draft{
			StartDate: "2025-07-01",
			EndDate:   "2025-07-03",
			Exclude:   []string{"2025-07-02"},
			UserIDs:   []string{"u3", "u2"},
			ShiftID:   "sh1",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		resp := decode(t, rec)
		assert.Equal(t, "Schedules created", resp.Message)
		assert.Equal(t, 4, decodeData[schedule.BulkResult](t, resp).Count)

		var sent entity.BulkScheduleRequest
		require.NoError(t, json.Unmarshal(env.backend.body("POST /schedules/createMultiUser"), &sent))
		assert.Equal(t, entity.BulkScheduleRequest{
			Dates:        []string{"2025-07-01", "2025-07-03"},
			UserIDs:      []string{"u3", "u2"},
			DepartmentID: "d1",
			ShiftID:      "sh1",
		}, sent)
		env.audit.AssertCalled(t, "Record", mock.Anything, "u2", "bulk_create", "schedules", mock.Anything)
	})

	t.Run("partial result still succeeds", func(t *testing.T) {
		env := newTestEnv(t)
		env.backend.handle("POST /schedules/createMultiUser", respondJSON(http.StatusCreated, `{"data":[{"_id":"a"}]}`))

		rec := env.do(http.MethodPost, "/schedules/bulk", adminToken, schedule.Draft{
			Dates:        []string{"2025-07-02", "2025-07-01"},
			UserIDs:      []string{"u4"},
			DepartmentID: "d2",
			ShiftID:      "sh2",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "Created 1 schedules", decode(t, rec).Message)
	})

	t.Run("rejected before sending", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/schedules/bulk", managerToken, schedule.Draft{
			StartDate: "2025-07-01",
			EndDate:   "2025-07-03",
			UserIDs:   []string{"u4"},
			ShiftID:   "sh2",
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		resp := decode(t, rec)
		assert.Contains(t, resp.Errors, "userIds")
		assert.Equal(t, "shift does not belong to the selected department", resp.Errors["shiftId"])
		assert.False(t, env.backend.called("POST /schedules/createMultiUser"))
	})

	t.Run("range too long", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(http.MethodPost, "/schedules/bulk", managerToken, schedule.Draft{
			StartDate: "2025-07-01",
			EndDate:   "2027-07-01",
			UserIDs:   []string{"u2", "u3"},
			ShiftID:   "sh1",
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, schedule.ErrRangeTooLong.Error(), decode(t, rec).Errors["dates"])
		assert.False(t, env.backend.called("POST /schedules/createMultiUser"))
	})
}

func TestExportSchedules(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("GET /schedules", respondJSON(http.StatusOK, icuSchedules))

	rec := env.do(http.MethodGet, "/schedules/export?startDate=2025-06-01&endDate=2025-06-30&page=3&limit=5", managerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="schedules_2025-06-01_2025-06-30.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))

	q := env.backend.query("GET /schedules")
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "1000", q.Get("limit"))
}

func TestGetCalendar(t *testing.T) {
	env := newTestEnv(t)
	env.backend.handle("GET /schedules", respondJSON(http.StatusOK, icuSchedules))

	rec := env.do(http.MethodGet, "/calendar", managerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	events := decodeData[[]schedule.Event](t, decode(t, rec))
	require.Len(t, events, 2)
	assert.Equal(t, schedule.Event{ID: "s2", Title: "Emily Rodriguez - ICU Day", Date: "2025-06-05", Department: "ICU"}, events[0])
	assert.Equal(t, "Sam Nurse - ICU Day", events[1].Title)

	q := env.backend.query("GET /schedules")
	assert.Equal(t, "2025-06-01", q.Get("startDate"))
	assert.Equal(t, "2025-06-30", q.Get("endDate"))
	assert.Equal(t, "d1", q.Get("departmentId"))

	rec = env.do(http.MethodGet, "/calendar?month=June", managerToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "month must be YYYY-MM", decode(t, rec).Errors["month"])
}
