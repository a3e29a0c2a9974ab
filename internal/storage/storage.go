// Package storage keeps the local state of the CLI: an archive of raw API
// payloads that can be replayed offline and a ledger of exported card ids.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by LoadPayload for unknown keys.
var ErrNotFound = errors.New("payload not found")

// Store archives payloads and tracks exported card IDs.
type Store interface {
	Close() error

	SeenCard(id string) (bool, error)
	MarkCard(id string) error

	SavePayload(key string, payload []byte) error
	LoadPayload(key string) ([]byte, error)
	PayloadKeys() ([]string, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ExportTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultExportTTL       = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ExportTTL <= 0 {
		opts.ExportTTL = defaultExportTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore remembers nothing; every card is new and no payload exists.
type noopStore struct{}

func (noopStore) Close() error                  { return nil }
func (noopStore) SeenCard(string) (bool, error) { return false, nil }
func (noopStore) MarkCard(string) error         { return nil }
func (noopStore) SavePayload(string, []byte) error {
	return fmt.Errorf("storage disabled: cannot save payloads")
}
func (noopStore) LoadPayload(string) ([]byte, error) { return nil, ErrNotFound }
func (noopStore) PayloadKeys() ([]string, error)     { return nil, nil }
