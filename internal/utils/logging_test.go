package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomHandler_WritesFileAndConsole(t *testing.T) {
	var console, file bytes.Buffer
	logger := slog.New(NewCustomHandler(&console, &file, slog.LevelInfo))

	logger.Info("schedule created", slog.Int("count", 3))
	logger.Debug("hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &record))
	assert.Equal(t, "schedule created", record["msg"])
	assert.Contains(t, record, "timestamp")
	assert.EqualValues(t, 3, record["count"])

	assert.Contains(t, console.String(), "schedule created count=3")
	assert.NotContains(t, console.String(), "hidden")
}

func TestMiddleware_LogsRequest(t *testing.T) {
	var console, file bytes.Buffer
	logger := slog.New(NewCustomHandler(&console, &file, slog.LevelInfo))

	h := middleware.RequestID(Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schedules", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	line := strings.TrimSpace(file.String())
	assert.Contains(t, line, `"path":"/schedules"`)
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"level":"WARN"`)
	assert.Contains(t, line, `"route":"/schedules"`)
	assert.NotContains(t, line, `"request_id":"unknown"`)
}
