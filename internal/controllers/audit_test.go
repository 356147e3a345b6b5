package controllers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditController_Record(t *testing.T) {
	mockDB := new(MockDB)
	row := NewMockRow([]interface{}{uint64(11)}, nil, AuditEventFieldDescriptions)
	mockDB.On("QueryRow", mock.Anything, mock.AnythingOfType("string"),
		"u1", "create", "schedules", `{"count":2}`, mock.AnythingOfType("time.Time")).Return(row)
	controller := NewAuditController(CreateTestDependencies(mockDB, new(MockRedis)))

	event, err := controller.Record(context.Background(), "u1", "create", "schedules", map[string]int{"count": 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(11), event.ID)
	assert.Equal(t, `{"count":2}`, event.Details)
	mockDB.AssertExpectations(t)
}

func TestAuditController_Record_Errors(t *testing.T) {
	t.Run("unencodable details", func(t *testing.T) {
		mockDB := new(MockDB)
		controller := NewAuditController(CreateTestDependencies(mockDB, new(MockRedis)))

		_, err := controller.Record(context.Background(), "u1", "create", "schedules", make(chan int))
		assert.Error(t, err)
		mockDB.AssertNotCalled(t, "QueryRow")
	})

	t.Run("insert error", func(t *testing.T) {
		mockDB := new(MockDB)
		row := NewMockRow(nil, errors.New("insert failed"), AuditEventFieldDescriptions)
		mockDB.On("QueryRow", mock.Anything, mock.AnythingOfType("string"),
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(row)
		controller := NewAuditController(CreateTestDependencies(mockDB, new(MockRedis)))

		_, err := controller.Record(context.Background(), "u1", "delete", "shifts", nil)
		assert.EqualError(t, err, "insert failed")
	})
}

func TestAuditController_List(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		limit         int
		expectedLimit int
	}{
		{name: "default limit", limit: 0, expectedLimit: DefaultAuditLimit},
		{name: "explicit limit", limit: 5, expectedLimit: 5},
		{name: "capped limit", limit: 10000, expectedLimit: MaxAuditLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := new(MockDB)
			rows := NewMockRows([][]interface{}{
				{uint64(2), "u1", "delete", "shifts", `{"id":"s1"}`, now},
				{uint64(1), "u1", "create", "shifts", `{}`, now.Add(-time.Hour)},
			}, nil, AuditEventFieldDescriptions)
			mockDB.On("Query", mock.Anything, mock.AnythingOfType("string"), tt.expectedLimit).Return(rows, nil)
			controller := NewAuditController(CreateTestDependencies(mockDB, new(MockRedis)))

			events, err := controller.List(context.Background(), tt.limit)
			require.NoError(t, err)
			require.Len(t, events, 2)
			assert.Equal(t, "delete", events[0].Action)
			assert.Equal(t, `{"id":"s1"}`, events[0].Details)
			mockDB.AssertExpectations(t)
		})
	}
}

func TestAuditController_List_QueryError(t *testing.T) {
	mockDB := new(MockDB)
	mockDB.On("Query", mock.Anything, mock.AnythingOfType("string"), DefaultAuditLimit).Return((*MockRows)(nil), errors.New("query error"))
	controller := NewAuditController(CreateTestDependencies(mockDB, new(MockRedis)))

	_, err := controller.List(context.Background(), -1)
	assert.EqualError(t, err, "query error")
}
