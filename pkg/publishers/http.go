package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/scryfall-go/pkg/httpclient"
)

const maxErrorBody = 512

// webhookSink posts card events to an HTTP endpoint.
type webhookSink struct {
	id     string
	cfg    HTTPPublisherConfig
	client *resty.Client
	log    Logger
}

func buildHTTP(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &webhookSink{
		id:     cfg.ID,
		cfg:    *cfg.HTTP,
		client: httpclient.NewRestyHTTPClient(timeout),
		log:    orSilent(log),
	}, nil
}

func (h *webhookSink) ID() string   { return h.id }
func (h *webhookSink) Type() string { return TypeHTTP }

func (h *webhookSink) Publish(ctx context.Context, evt Event) error {
	body, err := evt.encode()
	if err != nil {
		return err
	}
	return deliver(h.log, h, evt, func() (string, error) {
		resp, err := h.client.R().
			SetContext(ctx).
			SetHeaders(h.cfg.Headers).
			SetHeader("Content-Type", "application/json").
			SetHeader("X-Event-ID", evt.ID).
			SetBody(body).
			Execute(h.cfg.Method, h.cfg.URL)
		if err != nil {
			return "", fmt.Errorf("webhook request: %w", err)
		}
		if resp.IsError() {
			msg := resp.Body()
			if len(msg) > maxErrorBody {
				msg = msg[:maxErrorBody]
			}
			return "", fmt.Errorf("webhook responded %d: %s", resp.StatusCode(), strings.TrimSpace(string(msg)))
		}
		return "", nil
	})
}
