package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Builder creates a Publisher from a validated config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Builders maps sink types to their builders.
type Builders map[string]Builder

// DefaultBuilders knows every sink type this package ships.
func DefaultBuilders() Builders {
	return Builders{
		TypeHTTP:   buildHTTP,
		TypeSQS:    buildSQS,
		TypeSNS:    buildSNS,
		TypePubSub: buildPubSub,
	}
}

// Build creates a publisher for every config, wrapping those with a card
// filter. Publishers already built are closed when a later one fails.
func (b Builders) Build(ctx context.Context, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	log = orSilent(log)
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := b.build(ctx, cfg, log)
		if err != nil {
			return nil, errors.Join(err, closeAll(pubs))
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

func (b Builders) build(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	builder, ok := b[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("publisher %q: no builder for type %q", cfg.ID, cfg.Type)
	}
	pub, err := builder(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
	}
	if cfg.Filter.Empty() {
		return pub, nil
	}
	return &filtered{Publisher: pub, filter: cfg.Filter}, nil
}

// filtered is a Publisher that only receives cards its filter accepts.
type filtered struct {
	Publisher
	filter CardFilter
}

func (f *filtered) Accepts(evt Event) bool { return f.filter.Match(evt) }

func (f *filtered) Close() error {
	if c, ok := f.Publisher.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func closeAll(pubs []Publisher) error {
	var errs []error
	for _, p := range pubs {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s publisher %q: %w", p.Type(), p.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
