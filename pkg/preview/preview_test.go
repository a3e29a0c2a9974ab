package preview

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samvad-hq/scryfall-go/pkg/httpclient"
	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient returns a single response.
type stubHTTPClient struct {
	resp httpclient.Response
	err  error
}

func (s stubHTTPClient) Get(_ context.Context, _ string, _ map[string]string) (httpclient.Response, error) {
	return s.resp, s.err
}

func (s stubHTTPClient) Do(ctx context.Context, req httpclient.Request) (httpclient.Response, error) {
	return s.Get(ctx, req.URL, req.Headers)
}

const cardPage = `
<html>
  <head>
    <title>Windfall · Urza's Saga (USG) #111 · Scryfall Magic The Gathering Search</title>
    <meta property="og:title" content="Windfall">
    <meta property="og:description" content="Each player discards their hand, then draws cards.">
    <meta property="og:image" content="/large/front/windfall.jpg">
    <meta property="og:url" content="https://scryfall.com/card/usg/111/windfall">
  </head>
</html>`

func TestParseMetaPrefersOGTags(t *testing.T) {
	meta, err := parseMeta([]byte(cardPage))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "Windfall" || meta.ImageURL != "/large/front/windfall.jpg" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestParseMetaFallsBack(t *testing.T) {
	meta, err := parseMeta([]byte(`<html><head><title> Plain </title><meta name="description" content="desc"></head></html>`))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "Plain" || meta.Description != "desc" {
		t.Fatalf("unexpected fallback meta %#v", meta)
	}
}

func TestResolveURLHandlesRelative(t *testing.T) {
	got := resolveURL("/img.png", "https://scryfall.com/card/usg/111")
	if got != "https://scryfall.com/img.png" {
		t.Fatalf("resolveURL got %q", got)
	}
	if got := resolveURL("", "https://scryfall.com"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestFetchOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != defaultUserAgent {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<meta property="og:title" content="Served"><meta property="og:image" content="img/a.png">`))
	}))
	defer srv.Close()

	meta, err := NewScraper(nil, 0).Fetch(context.Background(), srv.URL+"/card/x/1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if meta.Title != "Served" || meta.URL != srv.URL+"/card/x/1" || meta.ImageURL != srv.URL+"/card/x/img/a.png" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestFetchLimitsBodyAndRejectsErrors(t *testing.T) {
	big := bytes.Repeat([]byte("a"), maxHTMLBodyBytes+10)
	meta, err := NewScraper(stubHTTPClient{resp: stubHTTPResponse{body: big, statusCode: 200}}, 0).
		Fetch(context.Background(), "https://scryfall.com/card/a")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if meta.Title != "" {
		t.Fatalf("expected empty title because body had no metadata")
	}

	_, err = NewScraper(stubHTTPClient{resp: stubHTTPResponse{body: []byte("gone"), statusCode: 404}}, 0).
		Fetch(context.Background(), "https://scryfall.com/card/a")
	if err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestCardUsesScryfallURI(t *testing.T) {
	card, err := scryfall.NewCard(scryfall.RawResponse{
		"object":       "card",
		"name":         "Windfall",
		"scryfall_uri": "https://scryfall.com/card/usg/111/windfall",
	}, scryfall.NewWrapper(nil, nil))
	if err != nil {
		t.Fatalf("NewCard: %v", err)
	}

	s := NewScraper(stubHTTPClient{resp: stubHTTPResponse{body: []byte(cardPage), statusCode: 200}}, 0)
	meta, err := s.Card(context.Background(), card)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	if meta.ImageURL != "https://scryfall.com/large/front/windfall.jpg" {
		t.Fatalf("unexpected image %q", meta.ImageURL)
	}

	bare, _ := scryfall.NewCard(scryfall.RawResponse{"object": "card"}, scryfall.NewWrapper(nil, nil))
	if _, err := s.Card(context.Background(), bare); err == nil {
		t.Fatalf("expected error for card without scryfall_uri")
	}
}

func TestManyKeepsURLOnFailure(t *testing.T) {
	s := NewScraper(stubHTTPClient{err: errors.New("offline")}, 0)
	metas, err := s.Many(context.Background(), []string{"https://a", "https://b"})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if len(metas) != 2 || metas[1].URL != "https://b" {
		t.Fatalf("unexpected metas %#v", metas)
	}
}

func TestManyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	metas, err := NewScraper(stubHTTPClient{}, 0).Many(ctx, []string{"https://a"})
	if !errors.Is(err, context.Canceled) || len(metas) != 0 {
		t.Fatalf("expected cancellation, metas=%v err=%v", metas, err)
	}
}
