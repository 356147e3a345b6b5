package api

import (
	"log/slog"
	"net/http"

	"github.com/adamanr/shift_console/internal/apperr"
	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/session"
	"github.com/adamanr/shift_console/internal/version"
)

var loginMessages = map[apperr.Kind]string{
	apperr.KindUnauthorized: "Invalid email or password",
	apperr.KindNotFound:     "Invalid email or password",
}

type loginResponse struct {
	Token string           `json:"token"`
	User  session.Identity `json:"user"`
}

// public strips the backend cookies before an identity leaves the server.
func public(id session.Identity) session.Identity {
	id.Cookies = nil
	return id
}

// AuthLogin signs in against the backend and opens a console session.
func (s *Server) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		s.httpError(w, err, "Invalid request body")
		return
	}

	id, err := s.logins.Login(r.Context(), req)
	if err != nil {
		s.httpErrorWith(w, err, "Login failed", loginMessages)
		return
	}

	token, err := s.deps.Sessions.Issue(r.Context(), id)
	if err != nil {
		s.httpError(w, err, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.deps.Config.Redis.SessionTTL.Seconds()),
	})

	s.deps.Logger.Info("User logged in", slog.String("user_id", id.UserID), slog.String("role", string(id.Role)))
	s.httpResponse(w, http.StatusOK, loginResponse{Token: token, User: public(id)}, "success")
}

// AuthLogout ends both sessions. Local state is dropped even when the
// backend logout fails.
func (s *Server) AuthLogout(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	if err := s.logins.Logout(r.Context()); err != nil {
		s.deps.Logger.Warn("Backend logout failed, clearing local session anyway", slog.String("user_id", id.UserID))
	}

	if claims, ok := claimsFrom(r.Context()); ok {
		if err := s.deps.Sessions.Revoke(r.Context(), claims.TokenID); err != nil {
			s.httpError(w, err, "Failed to logout")
			return
		}
	}
	s.deps.RefData.Evict(id.UserID)

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	s.httpResponse(w, http.StatusOK, map[string]string{"message": "Logged out successfully"}, "success")
}

// AuthMe re-reads the signed-in user from the backend.
func (s *Server) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.logins.FetchCurrent(r.Context())
	if err != nil {
		s.httpError(w, err, "Failed to load current user")
		return
	}

	current := session.FromUser(user, nil)
	if err := session.Guard(&current); err != nil {
		s.httpError(w, err, "Access denied")
		return
	}

	s.httpResponse(w, http.StatusOK, current, "success")
}

func (s *Server) GetVersion(w http.ResponseWriter, _ *http.Request) {
	s.httpResponse(w, http.StatusOK, version.Info(), "success")
}
