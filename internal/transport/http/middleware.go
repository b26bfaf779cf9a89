package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"event-portal/internal/app/events"
	"event-portal/internal/identity"
	"event-portal/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

// UserSource resolves a bearer access token to a portal identity.
type UserSource interface {
	UserByAccessToken(ctx context.Context, accessToken string) (*identity.Identity, error)
}

func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

// UserAuthMiddleware resolves an optional bearer token to a request
// identity. Requests without credentials pass through anonymous; routes
// that need a login stack RequireIdentity on top.
func UserAuthMiddleware(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			prefix := "Bearer "
			if strings.HasPrefix(auth, prefix) {
				id, err := users.UserByAccessToken(r.Context(), auth[len(prefix):])
				if err != nil {
					WriteHTTPError(w, http.StatusUnauthorized, "invalid_access_token", "")
					return
				}
				r = r.WithContext(identity.WithIdentity(r.Context(), *id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := identity.FromContext(r.Context()); !ok {
				WriteHTTPError(w, http.StatusUnauthorized, "authentication_required", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ReplyCacheMiddleware gives every request its own gateway reply cache, so
// repeat reads within one render are deduplicated and nothing leaks across
// requests.
func ReplyCacheMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(events.WithReplyCache(r.Context())))
		})
	}
}

func WriteHTTPError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"error": code}
	if message != "" {
		body["message"] = message
	}
	_ = json.NewEncoder(w).Encode(body)
}
