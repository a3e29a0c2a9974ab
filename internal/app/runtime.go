package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/scryfall-go/internal/config"
	"github.com/samvad-hq/scryfall-go/internal/logger"
	"github.com/samvad-hq/scryfall-go/internal/storage"
	"github.com/samvad-hq/scryfall-go/pkg/httpclient"
	"github.com/samvad-hq/scryfall-go/pkg/preview"
	"github.com/samvad-hq/scryfall-go/pkg/publishers"
	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
	"github.com/samvad-hq/scryfall-go/pkg/transforms"
)

// Runtime owns the long-lived pieces the CLI commands share: the API client,
// the local store and, once an export is requested, the publishers.
type Runtime struct {
	cfg    *config.Config
	client *scryfall.Client
	store  storage.Store
	fanout *publishers.Fanout
	log    logger.Logger
}

// NewRuntime builds the API client and opens the store from config.
func NewRuntime(cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	styles, err := transforms.Load(cfg.TransformsFile)
	if err != nil {
		return nil, fmt.Errorf("load transforms: %w", err)
	}
	transform, err := styles.Transform(cfg.EmojiStyle)
	if err != nil {
		return nil, err
	}

	client := scryfall.New(
		scryfall.WithBaseURL(cfg.APIBaseURL),
		scryfall.WithTimeout(cfg.HTTPTimeout),
		scryfall.WithUserAgent(cfg.UserAgent),
		scryfall.WithTextTransform(transform),
		scryfall.WithLogger(log),
	)

	storeOpts := storage.Options{
		ExportTTL:       cfg.ExportTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.DebugObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"export_ttl_seconds":       int(cfg.ExportTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Runtime{
		cfg:    cfg,
		client: client,
		store:  store,
		log:    log,
	}, nil
}

// Client returns the configured API client.
func (r *Runtime) Client() *scryfall.Client { return r.client }

// Store returns the local store.
func (r *Runtime) Store() storage.Store { return r.store }

// Scraper returns a preview scraper sharing the runtime's timeout.
func (r *Runtime) Scraper() *preview.Scraper {
	return preview.NewScraper(httpclient.NewRestyClient(r.cfg.HTTPTimeout), 0)
}

// Exporter loads the publishers file and returns an exporter fanning out to
// every enabled publisher.
func (r *Runtime) Exporter(ctx context.Context, maxPages int) (*Exporter, error) {
	if r.fanout == nil {
		fanout, err := r.buildFanout(ctx)
		if err != nil {
			return nil, err
		}
		r.fanout = fanout
	}
	return NewExporter(r.client, r.fanout, r.store, r.log, maxPages), nil
}

func (r *Runtime) buildFanout(ctx context.Context) (*publishers.Fanout, error) {
	pubCfg, err := publishers.LoadConfig(r.cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers file: %w", err)
	}

	enabled := pubCfg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubs, err := publishers.DefaultBuilders().Build(ctx, enabled, r.log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]any, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]any{
			"id":       p.ID,
			"type":     p.Type,
			"filtered": !p.Filter.Empty(),
		})
	}
	r.log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Close releases publishers and the store.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
