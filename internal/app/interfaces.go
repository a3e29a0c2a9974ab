package app

import (
	"context"

	"github.com/samvad-hq/scryfall-go/pkg/publishers"
	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
)

// Searcher runs API requests and wraps the responses.
type Searcher interface {
	Get(ctx context.Context, path string, query map[string]string) (scryfall.Object, error)
}

// EventPublisher publishes export events downstream and reports how many
// sinks accepted each one.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// ExportLedger remembers which cards were already exported.
type ExportLedger interface {
	SeenCard(id string) (bool, error)
	MarkCard(id string) error
}
