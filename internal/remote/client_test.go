package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientExecuteCall(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	var gotCallID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCallID = r.Header.Get("X-Call-Id")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "is_error": 0})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "site", 5*time.Second)
	call, err := client.ExecuteCall(context.Background(), "RemoteEvent", "getsingle", Params{"event_id": 42}, CallOptions{})
	if err != nil {
		t.Fatalf("ExecuteCall() error = %v", err)
	}
	if gotPath != "/RemoteEvent/getsingle" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["event_id"] != float64(42) {
		t.Fatalf("body = %v", gotBody)
	}
	if gotCallID == "" {
		t.Fatal("expected a generated call id")
	}
	if !call.Completed() {
		t.Fatalf("status = %s, want done", call.Status())
	}
	if call.Reply()["id"] != float64(42) {
		t.Fatalf("reply = %v", call.Reply())
	}
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		httpStatus int
		body       string
		want       Status
	}{
		{name: "ok", httpStatus: http.StatusOK, body: `{"id":1}`, want: StatusDone},
		{name: "reply reports error", httpStatus: http.StatusOK, body: `{"is_error":1,"error_message":"nope"}`, want: StatusError},
		{name: "http error", httpStatus: http.StatusInternalServerError, body: `{"error_message":"boom"}`, want: StatusError},
		{name: "empty body", httpStatus: http.StatusOK, body: ``, want: StatusDone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.httpStatus)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "", "", time.Second)
			call, err := client.ExecuteCall(context.Background(), "RemoteEvent", "getsingle", nil, CallOptions{})
			if err != nil {
				t.Fatalf("ExecuteCall() error = %v", err)
			}
			if call.Status() != tt.want {
				t.Fatalf("status = %s, want %s", call.Status(), tt.want)
			}
		})
	}
}

func TestClientTransportFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused

	client := NewClient(srv.URL, "", "", time.Second)
	if _, err := client.ExecuteCall(context.Background(), "RemoteEvent", "getsingle", nil, CallOptions{}); err == nil {
		t.Fatal("expected a transport error")
	}
}

func TestClientRejectsUndecodableReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "", time.Second)
	if _, err := client.ExecuteCall(context.Background(), "RemoteEvent", "getsingle", nil, CallOptions{}); err == nil {
		t.Fatal("expected a decode error")
	}
}
