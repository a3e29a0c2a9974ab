package publishers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newWebhook(t *testing.T, cfg HTTPPublisherConfig) Publisher {
	t.Helper()
	pubs, err := DefaultBuilders().Build(context.Background(), []PublisherConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &cfg},
	}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return pubs[0]
}

func TestWebhookSinkPostsCardEvent(t *testing.T) {
	evt := testEvent()
	var received bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %s", got)
		}
		if got := r.Header.Get("X-Event-ID"); got != evt.ID {
			t.Errorf("X-Event-ID = %q", got)
		}
		var body Event
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CardID != "card-1" || body.SetCode != "zen" {
			t.Errorf("unexpected body %+v err=%v", body, err)
		}
		received = true
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub := newWebhook(t, HTTPPublisherConfig{
		URL:     srv.URL,
		Method:  "put",
		Headers: map[string]string{" X-Test ": "1", "X-Empty": " "},
	})
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !received {
		t.Fatalf("server did not receive request")
	}
}

func TestWebhookSinkErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, strings.Repeat("x", 2*maxErrorBody), http.StatusBadRequest)
	}))
	defer srv.Close()

	pub := newWebhook(t, HTTPPublisherConfig{URL: srv.URL, TimeoutSeconds: 1})
	err := pub.Publish(context.Background(), Event{})
	if err == nil || !strings.HasPrefix(err.Error(), "webhook responded 400: ") {
		t.Fatalf("expected status error, got %v", err)
	}
	if len(err.Error()) > len("webhook responded 400: ")+maxErrorBody {
		t.Fatalf("error body not truncated: %d bytes", len(err.Error()))
	}
}
