package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"event-portal/internal/app/events"
	"event-portal/internal/remote"
	"event-portal/internal/token"

	"github.com/go-chi/chi/v5"
)

type EventHandlers struct {
	svc            *events.Service
	tokens         *token.Authorizer
	defaultProfile string
}

func NewEventHandlers(svc *events.Service, tokens *token.Authorizer, defaultProfile string) *EventHandlers {
	if defaultProfile == "" {
		defaultProfile = "default"
	}
	return &EventHandlers{svc: svc, tokens: tokens, defaultProfile: defaultProfile}
}

// resolveRef extracts the event reference from the route: either the numeric
// id (authenticated path) or a URL token, which must pass the scope check
// before the gateway sees it.
func (h *EventHandlers) resolveRef(r *http.Request, scope token.Scope) (events.EventRef, int, string) {
	if raw := chi.URLParam(r, "event_token"); raw != "" {
		if _, err := h.tokens.Authorize(raw, scope); err != nil {
			if errors.Is(err, token.ErrScopeMismatch) {
				return events.EventRef{}, http.StatusForbidden, "token_scope_mismatch"
			}
			return events.EventRef{}, http.StatusUnauthorized, "invalid_token"
		}
		return events.EventRef{Token: raw}, 0, ""
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "event_id"), 10, 64)
	if err != nil || id < 1 {
		return events.EventRef{}, http.StatusBadRequest, "invalid_request"
	}
	return events.EventRef{EventID: id}, 0, ""
}

func (h *EventHandlers) Event() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricEventLookupTotal.Add(1)
		ref, status, code := h.resolveRef(r, token.ScopeRegister)
		if status != 0 {
			metricEventLookupErrors.Add(1)
			WriteHTTPError(w, status, code, "")
			return
		}
		event, err := h.svc.GetEvent(r.Context(), ref)
		if err != nil {
			metricEventLookupErrors.Add(1)
			writeGatewayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"event": event})
	}
}

func (h *EventHandlers) Form() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, status, code := h.resolveRef(r, token.ScopeRegister)
		if status != 0 {
			WriteHTTPError(w, status, code, "")
			return
		}
		profile := r.URL.Query().Get("profile")
		if profile == "" {
			profile = h.defaultProfile
		}
		regCtx, ok := parseRegContext(r.URL.Query().Get("context"))
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", "")
			return
		}
		form, err := h.svc.GetForm(r.Context(), ref, profile, regCtx)
		if err != nil {
			writeGatewayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"form": form})
	}
}

type validateRequest struct {
	Profile string         `json:"profile"`
	Context string         `json:"context"`
	Params  map[string]any `json:"params"`
}

func (h *EventHandlers) Validate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, status, code := h.resolveRef(r, token.ScopeRegister)
		if status != 0 {
			WriteHTTPError(w, status, code, "")
			return
		}
		var in validateRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json", "")
			return
		}
		if in.Profile == "" {
			in.Profile = h.defaultProfile
		}
		regCtx, ok := parseRegContext(in.Context)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", "")
			return
		}
		fieldErrors, err := h.svc.ValidateRegistration(r.Context(), ref, in.Profile, regCtx, remote.Params(in.Params))
		if err != nil {
			writeGatewayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"valid":  len(fieldErrors) == 0,
			"errors": fieldErrors,
		})
	}
}

type submitRequest struct {
	Profile string         `json:"profile"`
	Params  map[string]any `json:"params"`
}

func (h *EventHandlers) Register() http.HandlerFunc {
	return h.submit(token.ScopeRegister, h.createRegistration)
}

func (h *EventHandlers) Update() http.HandlerFunc {
	return h.submit(token.ScopeUpdate, h.updateRegistration)
}

func (h *EventHandlers) createRegistration(r *http.Request, ref events.EventRef, in submitRequest) (remote.Reply, error) {
	return h.svc.CreateRegistration(r.Context(), ref, in.Profile, remote.Params(in.Params), true)
}

func (h *EventHandlers) updateRegistration(r *http.Request, ref events.EventRef, in submitRequest) (remote.Reply, error) {
	return h.svc.UpdateRegistration(r.Context(), ref, in.Profile, remote.Params(in.Params), true)
}

func (h *EventHandlers) submit(scope token.Scope, do func(*http.Request, events.EventRef, submitRequest) (remote.Reply, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricRegistrationTotal.Add(1)
		ref, status, code := h.resolveRef(r, scope)
		if status != 0 {
			metricRegistrationErrors.Add(1)
			WriteHTTPError(w, status, code, "")
			return
		}
		var in submitRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			metricRegistrationErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json", "")
			return
		}
		if in.Profile == "" {
			in.Profile = h.defaultProfile
		}
		reply, err := do(r, ref, in)
		if err != nil {
			metricRegistrationErrors.Add(1)
			writeGatewayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result":   reply,
			"messages": MessagesFrom(r.Context()),
		})
	}
}

func (h *EventHandlers) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, status, code := h.resolveRef(r, token.ScopeCancel)
		if status != 0 {
			WriteHTTPError(w, status, code, "")
			return
		}
		values, err := h.svc.CancelRegistration(r.Context(), ref, true)
		if err != nil {
			writeGatewayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"values":   values,
			"messages": MessagesFrom(r.Context()),
		})
	}
}

func parseRegContext(raw string) (events.Context, bool) {
	switch events.Context(raw) {
	case "":
		return events.ContextCreate, true
	case events.ContextCreate, events.ContextUpdate, events.ContextCancel:
		return events.Context(raw), true
	default:
		return "", false
	}
}

// writeGatewayError maps gateway error kinds onto HTTP statuses, exposing
// only the user-safe message.
func writeGatewayError(w http.ResponseWriter, err error) {
	message := ""
	code := "remote_call_failed"
	var gwErr *events.Error
	if errors.As(err, &gwErr) {
		message = gwErr.Message
		code = gwErr.Unwrap().Error()
	}
	switch {
	case errors.Is(err, events.ErrEventNotFound):
		WriteHTTPError(w, http.StatusNotFound, "event_not_found", message)
	case errors.Is(err, events.ErrFormRetrieval),
		errors.Is(err, events.ErrValidationCall),
		errors.Is(err, events.ErrRegistration),
		errors.Is(err, events.ErrRegistrationUpdate),
		errors.Is(err, events.ErrCancellation),
		errors.Is(err, events.ErrCheckinVerification),
		errors.Is(err, events.ErrCheckin):
		WriteHTTPError(w, http.StatusBadGateway, code, message)
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
