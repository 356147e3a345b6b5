package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/session"
	"github.com/oapi-codegen/runtime"
)

const SessionCookie = "console_session"

type claimsKey struct{}

func claimsFrom(ctx context.Context) (*entity.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*entity.Claims)
	return claims, ok
}

// sessionToken reads the console token from the session cookie, falling
// back to the Authorization header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get("Authorization")
}

// Authenticate loads the session behind the request's token and lets only
// console roles through.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			s.loginRedirect(w, "Unauthorized: Please login again")
			return
		}

		id, claims, err := s.deps.Sessions.Check(r.Context(), token)
		if err != nil {
			s.deps.Logger.Warn("Error checking session", slog.String("error", err.Error()))
			s.loginRedirect(w, "Unauthorized: Please login again")
			return
		}

		if err := session.Guard(id); err != nil {
			s.deps.Logger.Warn("Role is not allowed", slog.String("user_id", id.UserID), slog.String("role", string(id.Role)))
			s.loginRedirect(w, err.Error())
			return
		}

		ctx := session.WithIdentity(r.Context(), *id)
		ctx = context.WithValue(ctx, claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !identity(r).Scope().Unrestricted() {
			s.writeJSON(w, http.StatusForbidden, response{
				Status:       http.StatusForbidden,
				Type:         "error",
				Message:      "Forbidden: You do not have permission to perform this action",
				Presentation: PresentToast,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireConfirm rejects destructive requests that were not explicitly
// confirmed with ?confirm=true.
func (s *Server) RequireConfirm(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var confirm *bool
		if err := runtime.BindQueryParameter("form", true, false, "confirm", r.URL.Query(), &confirm); err != nil {
			s.httpResponse(w, http.StatusBadRequest, "Invalid format for parameter confirm", "error")
			return
		}

		if confirm == nil || !*confirm {
			s.writeJSON(w, http.StatusPreconditionRequired, response{
				Status:       http.StatusPreconditionRequired,
				Type:         "error",
				Message:      "confirmation required",
				Presentation: PresentDialog,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
