package scryfall

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// loadFixture decodes testdata/<name>.json the same way the client decodes
// API responses.
func loadFixture(t *testing.T, name string) RawResponse {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name+".json"))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	var raw RawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
	return raw
}

// fakeFetcher serves canned payloads by locator and records every call.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]RawResponse
	fallback  RawResponse
	err       error
	calls     []string
	opts      []RequestOptions
}

func (f *fakeFetcher) Request(_ context.Context, locator string, opts RequestOptions) (RawResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, locator)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	if raw, ok := f.responses[locator]; ok {
		return raw, nil
	}
	if f.fallback != nil {
		return f.fallback, nil
	}
	return nil, &Error{Kind: KindTransport, Status: 404, Message: "no fixture for " + locator}
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func mustCard(t *testing.T, raw RawResponse, f Fetcher) *Card {
	t.Helper()
	obj, err := Wrap(raw, f)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	card, ok := obj.(*Card)
	if !ok {
		t.Fatalf("expected *Card, got %T", obj)
	}
	return card
}
