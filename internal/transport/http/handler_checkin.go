package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"event-portal/internal/app/events"
	"event-portal/internal/token"

	"github.com/go-chi/chi/v5"
)

type CheckinHandlers struct {
	svc    *events.Service
	tokens *token.Authorizer
}

func NewCheckinHandlers(svc *events.Service, tokens *token.Authorizer) *CheckinHandlers {
	return &CheckinHandlers{svc: svc, tokens: tokens}
}

func (h *CheckinHandlers) authorize(r *http.Request) (string, int, string) {
	raw := chi.URLParam(r, "checkin_token")
	if raw == "" {
		return "", http.StatusBadRequest, "invalid_request"
	}
	if _, err := h.tokens.Authorize(raw, token.ScopeCheckin); err != nil {
		if errors.Is(err, token.ErrScopeMismatch) {
			return "", http.StatusForbidden, "token_scope_mismatch"
		}
		return "", http.StatusUnauthorized, "invalid_token"
	}
	return raw, 0, ""
}

func (h *CheckinHandlers) Info() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricCheckinTotal.Add(1)
		raw, status, code := h.authorize(r)
		if status != 0 {
			metricCheckinErrors.Add(1)
			WriteHTTPError(w, status, code, "")
			return
		}
		info, err := h.svc.GetCheckinInfo(r.Context(), raw, true)
		if err != nil {
			metricCheckinErrors.Add(1)
			writeGatewayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"fields":          info.Fields,
			"checkin_options": info.CheckinOptions,
			"messages":        MessagesFrom(r.Context()),
		})
	}
}

type confirmRequest struct {
	StatusID int64 `json:"status_id"`
}

func (h *CheckinHandlers) Confirm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricCheckinTotal.Add(1)
		raw, status, code := h.authorize(r)
		if status != 0 {
			metricCheckinErrors.Add(1)
			WriteHTTPError(w, status, code, "")
			return
		}
		var in confirmRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			metricCheckinErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json", "")
			return
		}
		if in.StatusID < 1 {
			metricCheckinErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request", "")
			return
		}
		ok, err := h.svc.CheckinParticipant(r.Context(), raw, in.StatusID, true)
		if err != nil {
			metricCheckinErrors.Add(1)
			writeGatewayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":       ok,
			"messages": MessagesFrom(r.Context()),
		})
	}
}
