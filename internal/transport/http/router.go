package httptransport

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"event-portal/internal/app/events"
	"event-portal/internal/config"
	"event-portal/internal/identity"
	"event-portal/internal/remote"
	"event-portal/internal/token"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(cfg config.ServerConfig, users UserSource, dir identity.Directory, caller remote.Caller, tokens *token.Authorizer, health func(context.Context) error) *chi.Mux {
	svc := events.NewService(caller, identity.NewResolver(dir), Collector{})
	eventHandlers := NewEventHandlers(svc, tokens, cfg.DefaultProfile)
	checkinHandlers := NewCheckinHandlers(svc, tokens)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", healthHandler(health))

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Use(ReplyCacheMiddleware())
		r.Use(MessageCollector())

		r.Group(func(r chi.Router) {
			r.Use(UserAuthMiddleware(users))
			r.Use(RequireIdentity())
			r.Get("/events/{event_id}", eventHandlers.Event())
			r.Get("/events/{event_id}/form", eventHandlers.Form())
			r.Post("/events/{event_id}/validate", eventHandlers.Validate())
			r.Post("/events/{event_id}/register", eventHandlers.Register())
			r.Post("/events/{event_id}/registration/update", eventHandlers.Update())
			r.Post("/events/{event_id}/registration/cancel", eventHandlers.Cancel())
		})

		// Token-scoped anonymous flows. The scope check runs before any
		// gateway call.
		r.Get("/r/{event_token}", eventHandlers.Event())
		r.Get("/r/{event_token}/form", eventHandlers.Form())
		r.Post("/r/{event_token}/validate", eventHandlers.Validate())
		r.Post("/r/{event_token}/register", eventHandlers.Register())
		r.Post("/r/{event_token}/update", eventHandlers.Update())
		r.Post("/r/{event_token}/cancel", eventHandlers.Cancel())

		r.Get("/checkin/{checkin_token}", checkinHandlers.Info())
		r.Post("/checkin/{checkin_token}", checkinHandlers.Confirm())
	})

	return r
}

func healthHandler(health func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				WriteHTTPError(w, http.StatusServiceUnavailable, "unhealthy", "")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
