package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamanr/shift_console/internal/apperr"
	"github.com/adamanr/shift_console/internal/config"
	"github.com/adamanr/shift_console/internal/controllers"
	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/policy"
	"github.com/adamanr/shift_console/internal/refdata"
	"github.com/adamanr/shift_console/internal/schedule"
	"github.com/adamanr/shift_console/internal/session"
	"github.com/adamanr/shift_console/internal/shift"
	"github.com/adamanr/shift_console/internal/swap"
)

type Sessions interface {
	Issue(ctx context.Context, id session.Identity) (string, error)
	Check(ctx context.Context, token string) (*session.Identity, *entity.Claims, error)
	Revoke(ctx context.Context, tokenID string) error
}

type SwapConfigs interface {
	List(ctx context.Context, scope policy.Scope) ([]entity.SwapConfig, error)
	Get(ctx context.Context, scope policy.Scope, departmentID string) (*entity.SwapConfig, error)
	Save(ctx context.Context, scope policy.Scope, cfg entity.SwapConfig) (*entity.SwapConfig, error)
	Delete(ctx context.Context, scope policy.Scope, departmentID string) error
}

type AuditLog interface {
	Record(ctx context.Context, actorID, action, resource string, details any) (*entity.AuditEvent, error)
	List(ctx context.Context, limit int) ([]entity.AuditEvent, error)
}

type Deps struct {
	Config      *config.Config
	Logger      *slog.Logger
	Backend     *gateway.Client
	RefData     *refdata.Registry
	Sessions    Sessions
	SwapConfigs SwapConfigs
	Audit       AuditLog
	Now         func() time.Time
}

type Server struct {
	deps      Deps
	logins    *session.Manager
	schedules *schedule.Service
	shifts    *shift.Service
	swaps     *swap.Service
}

func NewServer(deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Server{
		deps:      deps,
		logins:    session.NewManager(deps.Backend, deps.Logger),
		schedules: schedule.NewService(deps.Backend),
		shifts:    shift.NewService(deps.Backend),
		swaps:     swap.NewService(deps.Backend),
	}
}

// Presentation tells the UI how to surface an error.
const (
	PresentToast  = "toast"
	PresentDialog = "dialog"
)

type response struct {
	Status       int                `json:"status"`
	Type         string             `json:"type"`
	Data         any                `json:"data,omitempty"`
	Message      string             `json:"message,omitempty"`
	Meta         any                `json:"meta,omitempty"`
	Presentation string             `json:"presentation,omitempty"`
	Errors       apperr.FieldErrors `json:"errors,omitempty"`
}

func (s *Server) httpResponse(w http.ResponseWriter, status int, data any, respType string) {
	s.writeJSON(w, status, response{Status: status, Type: respType, Data: data})
}

func (s *Server) httpPage(w http.ResponseWriter, data any, meta any) {
	s.writeJSON(w, http.StatusOK, response{Status: http.StatusOK, Type: "success", Data: data, Meta: meta})
}

func (s *Server) httpMessage(w http.ResponseWriter, status int, message string, data any) {
	s.writeJSON(w, status, response{Status: status, Type: "success", Message: message, Data: data})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp response) {
	respData, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		s.deps.Logger.Error("Error marshaling response", slog.String("error", marshalErr.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(respData); err != nil {
		s.deps.Logger.Error("Error writing response", slog.String("error", err.Error()))
	}
}

// httpError maps err onto a status and a user-facing message. fallback is
// used when nothing more specific is known.
func (s *Server) httpError(w http.ResponseWriter, err error, fallback string) {
	s.httpErrorWith(w, err, fallback, nil)
}

func (s *Server) httpErrorWith(w http.ResponseWriter, err error, fallback string, overrides map[apperr.Kind]string) {
	resp := response{Type: "error", Presentation: PresentToast}

	var fe apperr.FieldErrors
	switch {
	case errors.Is(err, policy.ErrNoAccess):
		resp.Status = http.StatusForbidden
		resp.Message = policy.ErrNoAccess.Error()
	case errors.As(err, &fe):
		resp.Status = http.StatusUnprocessableEntity
		resp.Message = apperr.Describe(err, fallback)
		resp.Errors = fe
	case isAuthError(err):
		s.deps.Logger.Warn(fallback, slog.String("error", err.Error()))
		s.loginRedirect(w, err.Error())
		return
	case apperr.RequiresLogin(err):
		s.deps.Logger.Warn(fallback, slog.String("error", err.Error()))
		s.loginRedirect(w, apperr.DescribeWith(err, "Unauthorized: Please login again", overrides))
		return
	case errors.Is(err, controllers.ErrSwapConfigNotFound):
		resp.Status = http.StatusNotFound
		resp.Message = err.Error()
	default:
		resp.Status = apperr.HTTPStatus(err)
		resp.Message = apperr.DescribeWith(err, fallback, overrides)
		if apperr.InUse(err) {
			resp.Presentation = PresentDialog
		}
	}

	if resp.Status >= http.StatusInternalServerError {
		s.deps.Logger.Error(fallback, slog.String("error", err.Error()))
	} else {
		s.deps.Logger.Warn(fallback, slog.String("error", err.Error()))
	}
	s.writeJSON(w, resp.Status, resp)
}

func isAuthError(err error) bool {
	return errors.Is(err, session.ErrUnauthenticated) ||
		errors.Is(err, session.ErrForbiddenRole) ||
		errors.Is(err, controllers.ErrInvalidToken) ||
		errors.Is(err, controllers.ErrSessionRevoked)
}

// loginRedirect answers 401 and points the client at the login page.
func (s *Server) loginRedirect(w http.ResponseWriter, message string) {
	if s.deps.Config.Server.LoginURL != "" {
		w.Header().Set("Location", s.deps.Config.Server.LoginURL)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	s.writeJSON(w, http.StatusUnauthorized, response{
		Status:       http.StatusUnauthorized,
		Type:         "error",
		Message:      message,
		Presentation: PresentToast,
	})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.FieldErrors{"body": "Invalid request body"}
	}
	return nil
}

// afterMutation invalidates every user's reference cache when res is part of
// it, reloads the caller's, and records the change. Failures are logged only;
// the mutation itself already succeeded.
func (s *Server) afterMutation(ctx context.Context, action string, res gateway.Resource, details any) {
	id, ok := session.FromContext(ctx)
	if !ok {
		return
	}

	if refdata.Tracks(res) {
		s.deps.RefData.Invalidate(ctx)
		if err := s.deps.RefData.Get(id.UserID).LoadAll(ctx); err != nil {
			s.deps.Logger.Warn("Error refreshing reference data", slog.String("user_id", id.UserID), slog.String("error", err.Error()))
		}
	}
	s.audit(ctx, action, string(res), details)
}

func (s *Server) audit(ctx context.Context, action, resource string, details any) {
	if s.deps.Audit == nil {
		return
	}
	id, _ := session.FromContext(ctx)
	if _, err := s.deps.Audit.Record(ctx, id.UserID, action, resource, details); err != nil {
		s.deps.Logger.Warn("Error recording audit event", slog.String("action", action), slog.String("error", err.Error()))
	}
}

// snapshot returns the caller's reference data, loading it on first use.
func (s *Server) snapshot(ctx context.Context) (refdata.Snapshot, error) {
	id, _ := session.FromContext(ctx)
	store := s.deps.RefData.Get(id.UserID)
	if err := store.LoadAll(ctx); err != nil {
		return refdata.Snapshot{}, err
	}
	snap, _ := store.Snapshot()
	return snap, nil
}

func identity(r *http.Request) session.Identity {
	id, _ := session.FromContext(r.Context())
	return id
}
