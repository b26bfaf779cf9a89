package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-portal/internal/config"
	"event-portal/internal/identity"
	"event-portal/internal/remote"
	"event-portal/internal/token"

	"github.com/go-chi/chi/v5"
)

type fakeCaller struct {
	calls   int
	respond func(entity, action string, params remote.Params) (*remote.Call, error)
}

func (f *fakeCaller) ExecuteCall(_ context.Context, entity, action string, params remote.Params, _ remote.CallOptions) (*remote.Call, error) {
	f.calls++
	return f.respond(entity, action, params)
}

type fakeUsers map[string]identity.Identity

func (f fakeUsers) UserByAccessToken(_ context.Context, accessToken string) (*identity.Identity, error) {
	id, ok := f[accessToken]
	if !ok {
		return nil, errors.New("not found")
	}
	return &id, nil
}

type fakeDirectory map[string]string

func (f fakeDirectory) RemoteContactID(_ context.Context, userID string) (string, error) {
	return f[userID], nil
}

func newTestRouter(t *testing.T, caller *fakeCaller) (*chi.Mux, *token.Authorizer) {
	t.Helper()
	tokens := token.NewAuthorizer("test-secret")
	users := fakeUsers{"tok-ada": {UserID: "user-1", Name: "Ada"}}
	dir := fakeDirectory{"user-1": "contact-77"}
	r := NewRouter(config.ServerConfig{DefaultProfile: "standard"}, users, dir, caller, tokens, nil)
	return r, tokens
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestRegisterEndToEndForwardsMessagesOnce(t *testing.T) {
	caller := &fakeCaller{respond: func(entity, action string, params remote.Params) (*remote.Call, error) {
		if entity != "RemoteParticipant" || action != "create" {
			t.Fatalf("unexpected call %s.%s", entity, action)
		}
		if params["remote_contact_id"] != "contact-77" {
			t.Fatalf("remote_contact_id = %v, want contact-77", params["remote_contact_id"])
		}
		return remote.NewCall(remote.Reply{
			"values":          map[string]any{"id": float64(5)},
			"status_messages": []any{"Registered!"},
		}, remote.StatusDone), nil
	}}
	router, _ := newTestRouter(t, caller)

	w := doJSON(t, router, http.MethodPost, "/api/events/42/register", "tok-ada",
		map[string]any{"profile": "standard", "params": map[string]any{"name": "A"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	result := resp["result"].(map[string]any)
	if result["values"].(map[string]any)["id"] != float64(5) {
		t.Fatalf("result = %v", result)
	}
	messages := resp["messages"].([]any)
	if len(messages) != 1 || messages[0] != "Registered!" {
		t.Fatalf("messages = %v, want exactly [Registered!]", messages)
	}
}

func TestAuthenticatedRoutesRequireIdentity(t *testing.T) {
	caller := &fakeCaller{respond: func(_, _ string, _ remote.Params) (*remote.Call, error) {
		return remote.NewCall(remote.Reply{"id": float64(42)}, remote.StatusDone), nil
	}}
	router, _ := newTestRouter(t, caller)

	w := doJSON(t, router, http.MethodGet, "/api/events/42", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d, want 401", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/events/42", "tok-unknown", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", w.Code)
	}
	if caller.calls != 0 {
		t.Fatalf("gateway reached without identity: %d calls", caller.calls)
	}

	w = doJSON(t, router, http.MethodGet, "/api/events/42", "tok-ada", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated: status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestTokenScopeRejectedBeforeGateway(t *testing.T) {
	caller := &fakeCaller{respond: func(_, _ string, _ remote.Params) (*remote.Call, error) {
		return remote.NewCall(remote.Reply{}, remote.StatusDone), nil
	}}
	router, tokens := newTestRouter(t, caller)

	checkinTok, err := tokens.Issue(token.ScopeCheckin, 42, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	cancelTok, err := tokens.Issue(token.ScopeCancel, 42, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Check-in token presented against cancel.
	w := doJSON(t, router, http.MethodPost, "/api/r/"+checkinTok+"/cancel", "", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("checkin token on cancel: status = %d, want 403", w.Code)
	}
	// Cancel token presented against check-in.
	w = doJSON(t, router, http.MethodGet, "/api/checkin/"+cancelTok, "", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("cancel token on checkin: status = %d, want 403", w.Code)
	}
	if caller.calls != 0 {
		t.Fatalf("gateway reached despite scope mismatch: %d calls", caller.calls)
	}

	// The properly scoped token passes through.
	w = doJSON(t, router, http.MethodPost, "/api/r/"+cancelTok+"/cancel", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel token on cancel: status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestEventNotFoundMapsTo404WithSafeMessage(t *testing.T) {
	caller := &fakeCaller{respond: func(_, _ string, _ remote.Params) (*remote.Call, error) {
		return remote.NewCall(remote.Reply{"error_message": "Event is invite-only."}, remote.StatusError), nil
	}}
	router, _ := newTestRouter(t, caller)

	w := doJSON(t, router, http.MethodGet, "/api/events/42", "tok-ada", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["error"] != "event_not_found" {
		t.Fatalf("error = %v", resp["error"])
	}
	if resp["message"] != "Event is invite-only." {
		t.Fatalf("message = %v", resp["message"])
	}
}

func TestCancelReturnsValuesAndMessages(t *testing.T) {
	caller := &fakeCaller{respond: func(_, _ string, _ remote.Params) (*remote.Call, error) {
		return remote.NewCall(remote.Reply{
			"values":          map[string]any{"id": float64(7)},
			"status_messages": []any{"Cancelled."},
		}, remote.StatusDone), nil
	}}
	router, _ := newTestRouter(t, caller)

	w := doJSON(t, router, http.MethodPost, "/api/events/42/registration/cancel", "tok-ada", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	values := resp["values"].(map[string]any)
	if values["id"] != float64(7) {
		t.Fatalf("values = %v", values)
	}
	if _, ok := values["status_messages"]; ok {
		t.Fatal("cancel response leaked the reply envelope")
	}
	messages := resp["messages"].([]any)
	if len(messages) != 1 || messages[0] != "Cancelled." {
		t.Fatalf("messages = %v", messages)
	}
}

func TestCheckinConfirmEndToEnd(t *testing.T) {
	caller := &fakeCaller{respond: func(entity, action string, params remote.Params) (*remote.Call, error) {
		if entity != "EventCheckin" || action != "confirm" {
			t.Fatalf("unexpected call %s.%s", entity, action)
		}
		if params["status_id"] != float64(2) && params["status_id"] != int64(2) {
			t.Fatalf("status_id = %v", params["status_id"])
		}
		return remote.NewCall(remote.Reply{}, remote.StatusDone), nil
	}}
	router, tokens := newTestRouter(t, caller)

	checkinTok, err := tokens.Issue(token.ScopeCheckin, 42, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	w := doJSON(t, router, http.MethodPost, "/api/checkin/"+checkinTok, "", map[string]any{"status_id": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["ok"] != true {
		t.Fatalf("ok = %v, want true", resp["ok"])
	}
}

func TestRemoteFailureMapsToBadGateway(t *testing.T) {
	caller := &fakeCaller{respond: func(_, _ string, _ remote.Params) (*remote.Call, error) {
		return remote.NewCall(remote.Reply{"error_message": "Registration closed."}, remote.StatusError), nil
	}}
	router, _ := newTestRouter(t, caller)

	w := doJSON(t, router, http.MethodPost, "/api/events/42/register", "tok-ada",
		map[string]any{"params": map[string]any{}})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["error"] != "registration_failed" {
		t.Fatalf("error = %v", resp["error"])
	}
	if resp["message"] != "Registration closed." {
		t.Fatalf("message = %v", resp["message"])
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, &fakeCaller{respond: func(_, _ string, _ remote.Params) (*remote.Call, error) {
		return remote.NewCall(remote.Reply{}, remote.StatusDone), nil
	}})
	w := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
