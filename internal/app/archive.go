package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samvad-hq/scryfall-go/internal/storage"
	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
)

// Save fetches locator and stores the untransformed payload under key.
func (r *Runtime) Save(ctx context.Context, key, locator string, query map[string]string) (scryfall.RawResponse, error) {
	raw, err := r.client.Request(ctx, locator, scryfall.RequestOptions{Query: query})
	if err != nil {
		return nil, err
	}
	if err := SavePayload(r.store, key, raw); err != nil {
		return nil, err
	}
	r.log.InfoObj("payload archived", "archive", map[string]any{
		"key":    key,
		"object": raw.Kind(),
	})
	return raw, nil
}

// Replay wraps the payload stored under key. Follow-up calls on the result
// (Next, Rulings, ...) go to the network as usual.
func (r *Runtime) Replay(key string) (scryfall.Object, error) {
	raw, err := LoadPayload(r.store, key)
	if err != nil {
		return nil, err
	}
	return r.client.Wrap(raw)
}

// SavePayload encodes raw and archives it under key.
func SavePayload(store storage.Store, key string, raw scryfall.RawResponse) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := store.SavePayload(key, data); err != nil {
		return fmt.Errorf("archive payload %q: %w", key, err)
	}
	return nil
}

// LoadPayload reads and decodes the payload archived under key.
func LoadPayload(store storage.Store, key string) (scryfall.RawResponse, error) {
	data, err := store.LoadPayload(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no payload archived under %q: %w", key, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load payload %q: %w", key, err)
	}
	var raw scryfall.RawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode payload %q: %w", key, err)
	}
	return raw, nil
}
