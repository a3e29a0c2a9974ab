package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func testEvent() Event {
	return NewEvent("t:goblin", map[string]any{
		"object": "card",
		"id":     "card-1",
		"name":   "Goblin Guide",
		"set":    "zen",
	})
}

// recordingLogger keeps the keys of everything logged.
type recordingLogger struct {
	silent
	errors []string
	debug  []string
}

func (r *recordingLogger) ErrorObj(_, key string, _ interface{}) { r.errors = append(r.errors, key) }
func (r *recordingLogger) DebugObj(_, key string, _ interface{}) { r.debug = append(r.debug, key) }

func TestQueueSinkSendsCardEvent(t *testing.T) {
	api := &fakeSQS{}
	log := &recordingLogger{}
	sink := &queueSink{id: "queue", queueURL: "https://example.com/queue", api: api, log: log}

	if err := sink.Publish(context.Background(), testEvent()); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if api.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(api.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := api.input.MessageAttributes["card_id"]
	if !ok || aws.ToString(attr.StringValue) != "card-1" || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("card_id attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(api.input.MessageAttributes["set"].StringValue) != "zen" {
		t.Fatalf("set attribute missing")
	}
	if !strings.Contains(aws.ToString(api.input.MessageBody), `"card_name":"Goblin Guide"`) {
		t.Fatalf("MessageBody missing card name: %s", aws.ToString(api.input.MessageBody))
	}
	if len(log.debug) != 1 || log.debug[0] != "publisher_delivery" {
		t.Fatalf("expected a delivery log, got %v", log.debug)
	}
}

func TestQueueSinkReportsSendError(t *testing.T) {
	log := &recordingLogger{}
	sink := &queueSink{id: "queue", queueURL: "u", api: &fakeSQS{err: errors.New("boom")}, log: log}

	err := sink.Publish(context.Background(), testEvent())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
	if len(log.errors) != 1 {
		t.Fatalf("expected one error log, got %v", log.errors)
	}
}

func TestTopicSinkSendsCardEvent(t *testing.T) {
	api := &fakeSNS{}
	sink := &topicSink{id: "topic", topicARN: "arn:aws:sns:::topic", api: api, log: silent{}}

	evt := testEvent()
	if err := sink.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := aws.ToString(api.input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := api.input.MessageAttributes["event_id"]
	if !ok || aws.ToString(attr.StringValue) != evt.ID {
		t.Fatalf("event_id attribute missing or wrong: %#v", attr)
	}
	if !strings.Contains(aws.ToString(api.input.Message), `"query":"t:goblin"`) {
		t.Fatalf("Message missing query: %s", aws.ToString(api.input.Message))
	}
}

func TestTopicSinkReportsSendError(t *testing.T) {
	sink := &topicSink{id: "topic", topicARN: "arn:aws:sns:::topic", api: &fakeSNS{err: errors.New("boom")}, log: silent{}}
	if err := sink.Publish(context.Background(), testEvent()); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestMessageAttributesSkipEmptyValues(t *testing.T) {
	evt := NewEvent("", map[string]any{"id": "c"})
	attrs := messageAttributes(evt, func(v string) string { return v })
	if _, ok := attrs["query"]; ok {
		t.Fatalf("empty query should not become an attribute")
	}
	if attrs["card_id"] != "c" || attrs["event_id"] != evt.ID {
		t.Fatalf("unexpected attributes %v", attrs)
	}
}
