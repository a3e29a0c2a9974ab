package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
	"gopkg.in/yaml.v3"
)

// Supported sink types.
const (
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
	TypeHTTP   = "http"
)

const (
	defaultHTTPMethod  = "POST"
	defaultHTTPTimeout = 5
)

// PublisherConfig declares one sink. Exactly the block matching Type is read.
type PublisherConfig struct {
	ID      string                 `json:"id" yaml:"id"`
	Type    string                 `json:"type" yaml:"type"`
	Enabled *bool                  `json:"enabled" yaml:"enabled"`
	Filter  CardFilter             `json:"filter" yaml:"filter"`
	SQS     *SQSPublisherConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSPublisherConfig    `json:"sns" yaml:"sns"`
	PubSub  *PubSubPublisherConfig `json:"pubsub" yaml:"pubsub"`
	HTTP    *HTTPPublisherConfig   `json:"http" yaml:"http"`
}

// SQSPublisherConfig targets an SQS queue.
type SQSPublisherConfig struct {
	QueueURL  string `json:"uri" yaml:"uri"`
	AWSConfig `json:",inline" yaml:",inline"`
}

// SNSPublisherConfig targets an SNS topic.
type SNSPublisherConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	AWSConfig `json:",inline" yaml:",inline"`
}

// PubSubPublisherConfig targets a GCP Pub/Sub topic.
type PubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPPublisherConfig targets a webhook.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// CardFilter narrows which exported cards reach a sink. An empty filter
// accepts every card.
type CardFilter struct {
	LegalIn []string `json:"legal_in" yaml:"legal_in"`
	Sets    []string `json:"sets" yaml:"sets"`
}

// section is the type specific block of a PublisherConfig.
type section interface {
	normalize()
	check() error
}

func (c *AWSConfig) normalize() {
	c.Region = strings.TrimSpace(c.Region)
	c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
	c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
	c.SessionToken = strings.TrimSpace(c.SessionToken)
}

func (c *AWSConfig) check() error {
	if c.Region == "" {
		return errors.New("region is required")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.New("access_key_id and secret_access_key must be set together")
	}
	return nil
}

func (c *SQSPublisherConfig) normalize() {
	c.QueueURL = strings.TrimSpace(c.QueueURL)
	c.AWSConfig.normalize()
}

func (c *SQSPublisherConfig) check() error {
	if c.QueueURL == "" {
		return errors.New("uri is required")
	}
	return c.AWSConfig.check()
}

func (c *SNSPublisherConfig) normalize() {
	c.TopicARN = strings.TrimSpace(c.TopicARN)
	c.AWSConfig.normalize()
}

func (c *SNSPublisherConfig) check() error {
	if !strings.HasPrefix(c.TopicARN, "arn:") {
		return fmt.Errorf("topic_arn %q is not an ARN", c.TopicARN)
	}
	return c.AWSConfig.check()
}

func (c *PubSubPublisherConfig) normalize() {
	c.ProjectID = strings.TrimSpace(c.ProjectID)
	c.Topic = strings.TrimSpace(c.Topic)
	c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
}

func (c *PubSubPublisherConfig) check() error {
	if c.ProjectID == "" || c.Topic == "" {
		return errors.New("project_id and topic are required")
	}
	return nil
}

func (c *HTTPPublisherConfig) normalize() {
	c.URL = strings.TrimSpace(c.URL)
	if c.Method = strings.ToUpper(strings.TrimSpace(c.Method)); c.Method == "" {
		c.Method = defaultHTTPMethod
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultHTTPTimeout
	}
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			headers[k] = v
		}
	}
	c.Headers = headers
}

func (c *HTTPPublisherConfig) check() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url %q must be an absolute http(s) URL", c.URL)
	}
	return nil
}

func (f *CardFilter) normalize() {
	f.LegalIn = lowerAll(f.LegalIn)
	f.Sets = lowerAll(f.Sets)
}

func (f *CardFilter) check() error {
	for _, format := range f.LegalIn {
		if !slices.Contains(scryfall.Formats, format) {
			return fmt.Errorf("filter.legal_in: unknown format %q", format)
		}
	}
	return nil
}

// Empty reports whether the filter accepts every card.
func (f CardFilter) Empty() bool { return len(f.LegalIn) == 0 && len(f.Sets) == 0 }

// Match reports whether evt passes the filter: the card must be legal in
// every listed format and, when sets are listed, belong to one of them.
func (f CardFilter) Match(evt Event) bool {
	for _, format := range f.LegalIn {
		if !evt.legalIn(format) {
			return false
		}
	}
	return len(f.Sets) == 0 || slices.Contains(f.Sets, strings.ToLower(evt.SetCode))
}

func lowerAll(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// section returns the block Type selects, or nil when it is missing.
func (cfg *PublisherConfig) section() section {
	switch cfg.Type {
	case TypeSQS:
		if cfg.SQS != nil {
			return cfg.SQS
		}
	case TypeSNS:
		if cfg.SNS != nil {
			return cfg.SNS
		}
	case TypePubSub:
		if cfg.PubSub != nil {
			return cfg.PubSub
		}
	case TypeHTTP:
		if cfg.HTTP != nil {
			return cfg.HTTP
		}
	}
	return nil
}

func (cfg *PublisherConfig) normalize() {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	cfg.Filter.normalize()
	if s := cfg.section(); s != nil {
		s.normalize()
	}
}

func (cfg *PublisherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case TypeSQS, TypeSNS, TypePubSub, TypeHTTP:
	case "":
		return fmt.Errorf("publisher %q: type is required", cfg.ID)
	default:
		return fmt.Errorf("publisher %q: unsupported type %q", cfg.ID, cfg.Type)
	}
	s := cfg.section()
	if s == nil {
		return fmt.Errorf("publisher %q: %s block is required", cfg.ID, cfg.Type)
	}
	if err := s.check(); err != nil {
		return fmt.Errorf("publisher %q: %s.%w", cfg.ID, cfg.Type, err)
	}
	if err := cfg.Filter.check(); err != nil {
		return fmt.Errorf("publisher %q: %w", cfg.ID, err)
	}
	return nil
}

// IsEnabled reports the enabled flag; publishers are enabled unless they
// say otherwise.
func (cfg PublisherConfig) IsEnabled() bool { return cfg.Enabled == nil || *cfg.Enabled }

// Config is the validated content of a publishers file.
type Config struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// LoadConfig reads a publishers file. The extension picks the decoder;
// anything but .json is read as YAML.
func LoadConfig(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}
	return ParseConfig(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// ParseConfig decodes and validates publishers file content.
func ParseConfig(data []byte, isJSON bool) (*Config, error) {
	var cfg Config
	decode := yaml.Unmarshal
	if isJSON {
		decode = json.Unmarshal
	}
	if err := decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode publishers file: %w", err)
	}
	if len(cfg.Publishers) == 0 {
		return nil, errors.New("publishers file declares no publishers")
	}

	seen := make(map[string]bool, len(cfg.Publishers))
	for i := range cfg.Publishers {
		p := &cfg.Publishers[i]
		p.normalize()
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate publisher id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return &cfg, nil
}

// ByID looks a publisher up by id.
func (c *Config) ByID(id string) (PublisherConfig, bool) {
	if c == nil {
		return PublisherConfig{}, false
	}
	i := slices.IndexFunc(c.Publishers, func(p PublisherConfig) bool { return p.ID == id })
	if i < 0 {
		return PublisherConfig{}, false
	}
	return c.Publishers[i], true
}

// Enabled returns the publishers that are switched on, in file order.
func (c *Config) Enabled() []PublisherConfig {
	if c == nil {
		return nil
	}
	var out []PublisherConfig
	for _, p := range c.Publishers {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}
