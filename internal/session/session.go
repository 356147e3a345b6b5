// Package session carries the authenticated console user through a request
// and talks to the backend's login endpoints.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adamanr/shift_console/internal/apperr"
	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/policy"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbiddenRole   = errors.New("role is not allowed to use the console")
)

// AllowedRoles may sign in to the console.
var AllowedRoles = []entity.Role{entity.RoleAdmin, entity.RoleManager}

type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Identity is the signed-in user plus the backend session that acts for them.
type Identity struct {
	UserID       string      `json:"userId"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         entity.Role `json:"role"`
	DepartmentID string      `json:"departmentId"`
	Cookies      []Cookie    `json:"cookies,omitempty"`
}

func FromUser(u entity.User, cookies []*http.Cookie) Identity {
	id := Identity{
		UserID:       u.ID,
		Name:         u.DisplayName(),
		Email:        u.Email,
		Role:         u.Role,
		DepartmentID: u.ScopeDepartment(),
	}
	for _, c := range cookies {
		id.Cookies = append(id.Cookies, Cookie{Name: c.Name, Value: c.Value})
	}
	return id
}

func (i Identity) Scope() policy.Scope {
	return policy.Scope{Role: i.Role, DepartmentID: i.DepartmentID}
}

func (i Identity) HTTPCookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(i.Cookies))
	for _, c := range i.Cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

type identityKey struct{}

// WithIdentity stores id in ctx and arranges for backend calls made under
// it to carry the user's backend cookies.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey{}, id)
	return gateway.WithCookies(ctx, id.HTTPCookies())
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Guard lets admins and managers through.
func Guard(id *Identity) error {
	if id == nil || id.UserID == "" {
		return ErrUnauthenticated
	}
	for _, r := range AllowedRoles {
		if id.Role == r {
			return nil
		}
	}
	return ErrForbiddenRole
}

type Manager struct {
	client *gateway.Client
	logger *slog.Logger
}

func NewManager(client *gateway.Client, logger *slog.Logger) *Manager {
	return &Manager{client: client, logger: logger}
}

func validateLogin(req entity.LoginRequest) error {
	fe := apperr.FieldErrors{}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Nickname) == "" {
		fe.Add("email", "Email or nickname is required")
	}
	if req.Password == "" {
		fe.Add("password", "Password is required")
	}
	return fe.Err()
}

// Login signs in against the backend and captures its session cookies.
func (m *Manager) Login(ctx context.Context, req entity.LoginRequest) (Identity, error) {
	if err := validateLogin(req); err != nil {
		return Identity{}, err
	}

	resp, err := gateway.Call[entity.User](ctx, m.client, http.MethodPost, "users/login", nil, req)
	if err != nil {
		m.logger.Warn("Login rejected", slog.String("email", req.Email), slog.String("nickname", req.Nickname))
		return Identity{}, err
	}

	id := FromUser(resp.Data, resp.Cookies)
	if err := Guard(&id); err != nil {
		m.logger.Warn("Login refused for role", slog.String("user_id", id.UserID), slog.String("role", string(id.Role)))
		return Identity{}, err
	}
	return id, nil
}

// FetchCurrent asks the backend who the cookies in ctx belong to.
func (m *Manager) FetchCurrent(ctx context.Context) (entity.User, error) {
	resp, err := gateway.Call[entity.User](ctx, m.client, http.MethodGet, "users/me", nil, nil)
	if err != nil {
		return entity.User{}, err
	}
	if resp.Data.ID == "" {
		return entity.User{}, ErrUnauthenticated
	}
	return resp.Data, nil
}

// Logout ends the backend session. The error is reported but callers must
// drop local state regardless.
func (m *Manager) Logout(ctx context.Context) error {
	if _, err := gateway.Call[any](ctx, m.client, http.MethodGet, "users/logout", nil, nil); err != nil {
		m.logger.Warn("Backend logout failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
