package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/scryfall-go/internal/logger"
	"github.com/samvad-hq/scryfall-go/pkg/publishers"
	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
)

// ExportResult summarizes one export run.
type ExportResult struct {
	Pages     int `json:"pages"`
	Cards     int `json:"cards"`
	Published int `json:"published"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Exporter pages through a card search and publishes one event per card not
// exported within the ledger's TTL.
type Exporter struct {
	search    Searcher
	publisher EventPublisher
	ledger    ExportLedger
	log       logger.Logger
	maxPages  int
}

// NewExporter wires an exporter. maxPages <= 0 means every page.
func NewExporter(search Searcher, pub EventPublisher, ledger ExportLedger, log logger.Logger, maxPages int) *Exporter {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Exporter{
		search:    search,
		publisher: pub,
		ledger:    ledger,
		log:       log,
		maxPages:  maxPages,
	}
}

// Run exports every card matching query.
func (e *Exporter) Run(ctx context.Context, query string) (ExportResult, error) {
	var res ExportResult
	if e == nil || e.search == nil || e.publisher == nil {
		return res, fmt.Errorf("exporter is not initialized")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return res, fmt.Errorf("export query is empty")
	}

	start := time.Now()
	e.log.InfoObj("export started", "export_meta", map[string]any{"query": query})

	obj, err := e.search.Get(ctx, "/cards/search", map[string]string{"q": query})
	if err != nil {
		return res, fmt.Errorf("search %q: %w", query, err)
	}
	page, ok := obj.(*scryfall.List)
	if !ok {
		return res, fmt.Errorf("search %q returned %q, not a list", query, obj.Kind())
	}

	var errs []error
	for {
		res.Pages++
		for _, card := range page.Cards() {
			if err := e.exportCard(ctx, query, card, &res); err != nil {
				errs = append(errs, err)
			}
		}

		if !page.HasMore() || (e.maxPages > 0 && res.Pages >= e.maxPages) {
			break
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		next, err := page.Next(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch page %d: %w", res.Pages+1, err))
			break
		}
		page = next
	}

	e.log.InfoObj("export completed", "export_result", map[string]any{
		"query":      query,
		"pages":      res.Pages,
		"cards":      res.Cards,
		"published":  res.Published,
		"skipped":    res.Skipped,
		"failed":     res.Failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return res, errors.Join(errs...)
}

func (e *Exporter) exportCard(ctx context.Context, query string, card *scryfall.Card, res *ExportResult) error {
	res.Cards++
	id := card.ID()

	if e.ledger != nil && id != "" {
		seen, err := e.ledger.SeenCard(id)
		if err != nil {
			e.log.WarnObj("export ledger lookup failed", "ledger_error", map[string]any{
				"card_id": id,
				"error":   err.Error(),
			})
		} else if seen {
			res.Skipped++
			return nil
		}
	}

	delivered, err := e.publisher.Publish(ctx, publishers.NewEvent(query, card.Raw()))
	if delivered == 0 && err != nil {
		res.Failed++
		e.log.ErrorObj("card export failed", "export_error", map[string]any{
			"card_id": id,
			"name":    card.Name(),
			"error":   err.Error(),
		})
		return fmt.Errorf("export card %s: %w", id, err)
	}
	if err != nil {
		e.log.WarnObj("card export partially failed", "export_error", map[string]any{
			"card_id":   id,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
	res.Published++

	if e.ledger != nil && id != "" {
		if err := e.ledger.MarkCard(id); err != nil {
			e.log.WarnObj("export ledger update failed", "ledger_error", map[string]any{
				"card_id": id,
				"error":   err.Error(),
			})
		}
	}
	return nil
}
