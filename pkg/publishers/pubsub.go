package publishers

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// pubsubSink publishes card events to a Pub/Sub topic and waits for the
// server acknowledgement.
type pubsubSink struct {
	id     string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

func buildPubSub(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(cfg.PubSub.Topic)
	// Cards sharing a set keep their relative order.
	topic.EnableMessageOrdering = true
	return &pubsubSink{id: cfg.ID, client: client, topic: topic, log: orSilent(log)}, nil
}

func (p *pubsubSink) ID() string   { return p.id }
func (p *pubsubSink) Type() string { return TypePubSub }

func (p *pubsubSink) Publish(ctx context.Context, evt Event) error {
	body, err := evt.encode()
	if err != nil {
		return err
	}
	return deliver(p.log, p, evt, func() (string, error) {
		id, err := p.topic.Publish(ctx, &pubsub.Message{
			Data:        body,
			Attributes:  evt.attributes(),
			OrderingKey: evt.SetCode,
		}).Get(ctx)
		if err != nil {
			p.topic.ResumePublish(evt.SetCode)
			return "", fmt.Errorf("publish to pubsub: %w", err)
		}
		return id, nil
	})
}

// Close flushes pending messages and releases the client.
func (p *pubsubSink) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
