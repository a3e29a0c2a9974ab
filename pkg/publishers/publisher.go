// Package publishers delivers exported cards to downstream sinks: webhooks,
// AWS queues and topics, and GCP Pub/Sub.
package publishers

import "context"

// Publisher delivers one exported card event to a sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the structured logging surface sinks report through.
// internal/logger satisfies it.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type silent struct{}

func (silent) InfoObj(string, string, interface{})  {}
func (silent) DebugObj(string, string, interface{}) {}
func (silent) WarnObj(string, string, interface{})  {}
func (silent) ErrorObj(string, string, interface{}) {}

func orSilent(log Logger) Logger {
	if log == nil {
		return silent{}
	}
	return log
}

// deliver runs send and logs the outcome for p. send returns the sink's
// message reference when it has one.
func deliver(log Logger, p Publisher, evt Event, send func() (string, error)) error {
	ref, err := send()
	fields := map[string]any{
		"publisher_id": p.ID(),
		"card_id":      evt.CardID,
	}
	if err != nil {
		fields["error"] = err.Error()
		log.ErrorObj(p.Type()+" publisher failed to deliver card", "publisher_error", fields)
		return err
	}
	if ref != "" {
		fields["message_id"] = ref
	}
	log.DebugObj(p.Type()+" publisher delivered card", "publisher_delivery", fields)
	return nil
}
