package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adamanr/shift_console/internal/config"
	"github.com/adamanr/shift_console/internal/controllers"
	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/policy"
	"github.com/adamanr/shift_console/internal/refdata"
	"github.com/adamanr/shift_console/internal/session"
	logging "github.com/adamanr/shift_console/internal/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	adminToken   = "admin-token"
	managerToken = "manager-token"
	userToken    = "user-token"
	orphanToken  = "orphan-token"

	testLoginURL = "https://console.example.org/login"
)

var testNow = time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

var referenceLists = map[string]string{
	"/users": `[
		{"_id":"u1","firstName":"Ada","lastName":"Admin","email":"ada@hospital.org","role":"admin"},
		{"_id":"u2","firstName":"Emily","lastName":"Rodriguez","email":"emily@hospital.org","role":"manager","departmentId":"d1"},
		{"_id":"u3","firstName":"Sam","lastName":"Nurse","email":"sam@hospital.org","role":"user","departmentId":{"_id":"d1","name":"ICU"}},
		{"_id":"u4","firstName":"Lee","lastName":"Medic","email":"lee@hospital.org","role":"user","departmentId":"d2"}
	]`,
	"/departments": `[
		{"_id":"d1","name":"ICU"},
		{"_id":"d2","name":"Emergency"}
	]`,
	"/subdepartments": `[
		{"_id":"sd1","name":"ICU North","departmentId":"d1"},
		{"_id":"sd2","name":"Triage","departmentId":"d2"}
	]`,
	"/positions": `[{"_id":"p1","name":"Nurse"}]`,
	"/levels":    `[{"_id":"l1","name":"Senior","positionId":"p1"}]`,
	"/locations": `[{"_id":"loc1","name":"Main Campus"}]`,
	"/shifts": `[
		{"_id":"sh1","shiftName":"ICU Day","departmentId":"d1","startTime":420,"endTime":1140},
		{"_id":"sh2","shiftName":"ER Night","departmentId":"d2","startTime":1140,"endTime":420,"isOvernight":true}
	]`,
}

// fakeBackend serves the reference lists and lets a test override single
// routes by "METHOD /path".
type fakeBackend struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []string
	bodies   map[string][]byte
	queries  map[string]url.Values
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		routes:  map[string]http.HandlerFunc{},
		bodies:  map[string][]byte{},
		queries: map[string]url.Values{},
	}
}

func (b *fakeBackend) handle(route string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = h
}

func (b *fakeBackend) called(route string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r == route {
			return true
		}
	}
	return false
}

func (b *fakeBackend) body(route string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[route]
}

// query is the query string of the last request to route.
func (b *fakeBackend) query(route string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[route]
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	raw, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, route)
	if len(raw) > 0 {
		b.bodies[route] = raw
	}
	b.queries[route] = r.URL.Query()
	h, ok := b.routes[route]
	b.mu.Unlock()

	if ok {
		r.Body = io.NopCloser(bytes.NewReader(raw))
		h(w, r)
		return
	}

	if list, ok := referenceLists[r.URL.Path]; ok && r.Method == http.MethodGet {
		_, _ = io.WriteString(w, `{"data":`+list+`}`)
		return
	}

	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"message":"Not found"}`)
}

func respondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// fakeSessions maps fixed tokens to identities.
type fakeSessions struct {
	mu         sync.Mutex
	identities map[string]session.Identity
	issued     []session.Identity
	revoked    []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{identities: map[string]session.Identity{
		adminToken:   {UserID: "u1", Name: "Ada Admin", Role: entity.RoleAdmin},
		managerToken: {UserID: "u2", Name: "Emily Rodriguez", Role: entity.RoleManager, DepartmentID: "d1"},
		userToken:    {UserID: "u3", Name: "Sam Nurse", Role: entity.RoleUser, DepartmentID: "d1"},
		orphanToken:  {UserID: "u5", Name: "No Department", Role: entity.RoleManager},
	}}
}

func (f *fakeSessions) Issue(_ context.Context, id session.Identity) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, id)
	return "issued-" + id.UserID, nil
}

func (f *fakeSessions) Check(_ context.Context, token string) (*session.Identity, *entity.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token = strings.TrimPrefix(token, "Bearer ")
	id, ok := f.identities[token]
	if !ok {
		return nil, nil, controllers.ErrInvalidToken
	}
	return &id, &entity.Claims{UserID: id.UserID, Role: id.Role, TokenID: token + "-id"}, nil
}

func (f *fakeSessions) Revoke(_ context.Context, tokenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, tokenID)
	return nil
}

type MockSwapConfigs struct {
	mock.Mock
}

func (m *MockSwapConfigs) List(ctx context.Context, scope policy.Scope) ([]entity.SwapConfig, error) {
	args := m.Called(ctx, scope)
	configs, _ := args.Get(0).([]entity.SwapConfig)
	return configs, args.Error(1)
}

func (m *MockSwapConfigs) Get(ctx context.Context, scope policy.Scope, departmentID string) (*entity.SwapConfig, error) {
	args := m.Called(ctx, scope, departmentID)
	cfg, _ := args.Get(0).(*entity.SwapConfig)
	return cfg, args.Error(1)
}

func (m *MockSwapConfigs) Save(ctx context.Context, scope policy.Scope, cfg entity.SwapConfig) (*entity.SwapConfig, error) {
	args := m.Called(ctx, scope, cfg)
	saved, _ := args.Get(0).(*entity.SwapConfig)
	return saved, args.Error(1)
}

func (m *MockSwapConfigs) Delete(ctx context.Context, scope policy.Scope, departmentID string) error {
	args := m.Called(ctx, scope, departmentID)
	return args.Error(0)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) Record(ctx context.Context, actorID, action, resource string, details any) (*entity.AuditEvent, error) {
	args := m.Called(ctx, actorID, action, resource, details)
	event, _ := args.Get(0).(*entity.AuditEvent)
	return event, args.Error(1)
}

func (m *MockAudit) List(ctx context.Context, limit int) ([]entity.AuditEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]entity.AuditEvent)
	return events, args.Error(1)
}

type testEnv struct {
	backend     *fakeBackend
	sessions    *fakeSessions
	swapConfigs *MockSwapConfigs
	audit       *MockAudit
	handler     http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := gateway.NewClient(srv.URL, time.Second, logging.Discard(), nil)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.LoginURL = testLoginURL
	cfg.Redis.SessionTTL = time.Hour

	env := &testEnv{
		backend:     backend,
		sessions:    newFakeSessions(),
		swapConfigs: new(MockSwapConfigs),
		audit:       new(MockAudit),
	}
	env.audit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&entity.AuditEvent{ID: 1}, nil).Maybe()

	logger := logging.Discard()
	server := NewServer(Deps{
		Config:      cfg,
		Logger:      logger,
		Backend:     client,
		RefData:     refdata.NewRegistry(client, nil, time.Minute, time.Hour, logger),
		Sessions:    env.sessions,
		SwapConfigs: env.swapConfigs,
		Audit:       env.audit,
		Now:         func() time.Time { return testNow },
	})
	env.handler = server.Handler()
	return env
}

// do sends one request as the holder of token. An empty token sends none.
func (e *testEnv) do(method, target, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type testResponse struct {
	Status       int               `json:"status"`
	Type         string            `json:"type"`
	Data         json.RawMessage   `json:"data"`
	Message      string            `json:"message"`
	Meta         json.RawMessage   `json:"meta"`
	Presentation string            `json:"presentation"`
	Errors       map[string]string `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeData[T any](t *testing.T, resp testResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out), string(resp.Data))
	return out
}

func ids[T any](items []T, key func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, key(item))
	}
	return out
}
