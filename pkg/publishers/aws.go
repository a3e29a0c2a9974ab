package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// AWSConfig holds the settings shared by the SQS and SNS sinks. Static keys
// are optional; the default credential chain is used otherwise.
type AWSConfig struct {
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

func (c AWSConfig) load(ctx context.Context) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(c.Region)}
	if c.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// messageAttributes converts event attributes into the SDK's per-service
// attribute type.
func messageAttributes[T any](evt Event, str func(v string) T) map[string]T {
	attrs := evt.attributes()
	out := make(map[string]T, len(attrs))
	for k, v := range attrs {
		out[k] = str(v)
	}
	return out
}

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// queueSink sends card events to an SQS queue.
type queueSink struct {
	id       string
	queueURL string
	api      sqsAPI
	log      Logger
}

// topicSink sends card events to an SNS topic.
type topicSink struct {
	id       string
	topicARN string
	api      snsAPI
	log      Logger
}

func buildSQS(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	awsCfg, err := cfg.SQS.AWSConfig.load(ctx)
	if err != nil {
		return nil, err
	}
	return &queueSink{id: cfg.ID, queueURL: cfg.SQS.QueueURL, api: sqs.NewFromConfig(awsCfg), log: orSilent(log)}, nil
}

func buildSNS(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	awsCfg, err := cfg.SNS.AWSConfig.load(ctx)
	if err != nil {
		return nil, err
	}
	return &topicSink{id: cfg.ID, topicARN: cfg.SNS.TopicARN, api: sns.NewFromConfig(awsCfg), log: orSilent(log)}, nil
}

func (q *queueSink) ID() string   { return q.id }
func (q *queueSink) Type() string { return TypeSQS }

func (q *queueSink) Publish(ctx context.Context, evt Event) error {
	body, err := evt.encode()
	if err != nil {
		return err
	}
	return deliver(q.log, q, evt, func() (string, error) {
		out, err := q.api.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(q.queueURL),
			MessageBody: aws.String(string(body)),
			MessageAttributes: messageAttributes(evt, func(v string) sqstypes.MessageAttributeValue {
				return sqstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
			}),
		})
		if err != nil {
			return "", fmt.Errorf("send message to sqs: %w", err)
		}
		return aws.ToString(out.MessageId), nil
	})
}

func (t *topicSink) ID() string   { return t.id }
func (t *topicSink) Type() string { return TypeSNS }

func (t *topicSink) Publish(ctx context.Context, evt Event) error {
	body, err := evt.encode()
	if err != nil {
		return err
	}
	return deliver(t.log, t, evt, func() (string, error) {
		out, err := t.api.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(t.topicARN),
			Message:  aws.String(string(body)),
			MessageAttributes: messageAttributes(evt, func(v string) snstypes.MessageAttributeValue {
				return snstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
			}),
		})
		if err != nil {
			return "", fmt.Errorf("publish to sns: %w", err)
		}
		return aws.ToString(out.MessageId), nil
	})
}
