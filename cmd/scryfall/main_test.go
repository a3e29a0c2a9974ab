package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd, c := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := c.execute(context.Background(), cmd)
	return out.String(), err
}

func TestParseQuery(t *testing.T) {
	q, err := parseQuery([]string{"q=t:elf", "order=name", "empty="})
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	if q["q"] != "t:elf" || q["order"] != "name" || q["empty"] != "" {
		t.Fatalf("unexpected query %v", q)
	}
	if _, err := parseQuery([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
	if q, _ := parseQuery(nil); q != nil {
		t.Fatalf("expected nil map for no pairs")
	}
}

func TestSymbolCommandRunsOffline(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0") // setup would fail if it ran
	out, err := execute(t, "symbol", "{W/U}", "G")
	if err != nil {
		t.Fatalf("symbol: %v", err)
	}
	want := scryfall.SymbolBaseURL + "WU.svg\n" + scryfall.SymbolBaseURL + "G.svg\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/cards/search":
			_, _ = w.Write([]byte(`{"object":"list","total_cards":2,"has_more":false,"data":[
				{"object":"card","id":"1","name":"Llanowar Elves","mana_cost":"{G}"},
				{"object":"card","id":"2","name":"Elvish Mystic","mana_cost":"{G}"}]}`))
		case "/cards/named":
			_, _ = w.Write([]byte(`{"object":"card","id":"3","name":"Windfall","mana_cost":"{2}{U}",
				"type_line":"Sorcery","oracle_text":"Each player discards their hand.",
				"legalities":{"commander":"legal","standard":"not_legal"},
				"prices":{"usd":"0.25"},
				"image_uris":{"normal":"https://img/normal.jpg"}}`))
		case "/sets/dom":
			_, _ = w.Write([]byte(`{"object":"set","code":"dom","name":"Dominaria","card_count":280}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"object":"error","code":"not_found","status":404,"details":"No card found."}`))
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("STORAGE_TYPE", "none")
	return srv
}

func TestSearchCommand(t *testing.T) {
	newAPI(t)
	out, err := execute(t, "--emoji", "slack", "search", "t:elf")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "2 cards") || !strings.Contains(out, "Llanowar Elves  :mana-G:") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCardCommand(t *testing.T) {
	newAPI(t)
	out, err := execute(t, "card", "windfall", "--legal", "commander")
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	for _, want := range []string{"Windfall  {2}{U}", "Sorcery", "price: 0.25", "legal in commander: true", "image: https://img/normal.jpg"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}

	if _, err := execute(t, "card", "windfall", "--legal", "foo"); err == nil {
		t.Fatalf("expected unrecognized format error")
	}
}

func TestGetCommandDescribesSetsAndErrors(t *testing.T) {
	newAPI(t)
	out, err := execute(t, "get", "/sets/dom")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "Dominaria (DOM), 280 cards\n" {
		t.Fatalf("unexpected output %q", out)
	}

	_, err = execute(t, "get", "/cards/nope")
	if err == nil || err.Error() != "No card found." {
		t.Fatalf("expected API error message, got %v", err)
	}
}

func TestFailedCommandReleasesStore(t *testing.T) {
	newAPI(t)
	t.Setenv("STORAGE_TYPE", "bbolt")
	t.Setenv("BBOLT_PATH", filepath.Join(t.TempDir(), "scryfall.db"))

	if _, err := execute(t, "get", "/cards/nope"); err == nil {
		t.Fatalf("expected API error")
	}
	// bbolt holds an exclusive file lock; a leaked handle makes this open time out.
	out, err := execute(t, "get", "/sets/dom")
	if err != nil {
		t.Fatalf("get after failure: %v", err)
	}
	if out != "Dominaria (DOM), 280 cards\n" {
		t.Fatalf("unexpected output %q", out)
	}
}
