package icws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dialview/icws-monitor/internal/types"
	"github.com/rs/zerolog"
)

func newSessionServer(t *testing.T, pollStatus int, msgs []types.Message) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/connection":
			var cr connectRequest
			if err := json.NewDecoder(r.Body).Decode(&cr); err != nil || cr.UserID == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(connectResponse{SessionID: "sess-1", Token: "csrf-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/sess-1/messaging/messages":
			if r.Header.Get("ININ-ICWS-CSRF-Token") != "csrf-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if pollStatus != http.StatusOK {
				w.WriteHeader(pollStatus)
				return
			}
			_ = json.NewEncoder(w).Encode(msgs)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnectThenPoll(t *testing.T) {
	msgs := []types.Message{{Type: types.MessageQueueContents, Interactions: &types.InteractionBatch{
		Added: []types.RawInteraction{{InteractionID: "i-1"}},
	}}}
	srv := newSessionServer(t, http.StatusOK, msgs)

	s := NewSession(Config{BaseURL: srv.URL, Username: "user", Password: "pw"}, zerolog.Nop())
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect = %v", err)
	}

	got, err := s.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll = %v", err)
	}
	if len(got) != 1 || got[0].Type != types.MessageQueueContents {
		t.Fatalf("messages = %+v", got)
	}
	if got[0].Interactions == nil || got[0].Interactions.Added[0].InteractionID != "i-1" {
		t.Fatalf("interactions = %+v", got[0].Interactions)
	}
}

func TestPollWithoutSessionFails(t *testing.T) {
	s := NewSession(Config{BaseURL: "http://unused"}, zerolog.Nop())
	if _, err := s.Poll(context.Background()); err == nil {
		t.Fatal("Poll before Connect should fail")
	}
}

func TestPollErrorStatusSurfacesAsError(t *testing.T) {
	srv := newSessionServer(t, http.StatusGone, nil)
	s := NewSession(Config{BaseURL: srv.URL, Username: "user", Password: "pw"}, zerolog.Nop())
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect = %v", err)
	}
	if _, err := s.Poll(context.Background()); err == nil {
		t.Fatal("Poll on 410 should fail")
	}
}
