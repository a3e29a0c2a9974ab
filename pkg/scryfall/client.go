package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/scryfall-go/pkg/httpclient"
)

const (
	// DefaultBaseURL is the public Scryfall API endpoint.
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "scryfall-go/1.0"
)

// Client talks to the Scryfall API and wraps every response.
type Client struct {
	http      httpclient.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
	transform TextTransform
	log       Logger
	wrapper   *Wrapper
}

// Logger receives request traces. internal/logger satisfies it.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type quiet struct{}

func (quiet) DebugObj(string, string, interface{}) {}
func (quiet) WarnObj(string, string, interface{})  {}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (tests, mirrors).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout sets the transport timeout. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient injects the transport.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTextTransform applies fn to every string value of wrapped responses.
func WithTextTransform(fn TextTransform) Option {
	return func(c *Client) { c.transform = fn }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a Client with the given options applied over the defaults.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(c.timeout)
	}
	if c.log == nil {
		c.log = quiet{}
	}
	c.wrapper = NewWrapper(c, c.transform)
	return c
}

// Wrapper returns the wrapper bound to this client.
func (c *Client) Wrapper() *Wrapper { return c.wrapper }

// Get fetches path (or an absolute URL) with an optional query and wraps the result.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (Object, error) {
	raw, err := c.Request(ctx, path, RequestOptions{Query: query})
	if err != nil {
		return nil, err
	}
	return c.wrapper.Wrap(raw)
}

// Post sends body as JSON to path and wraps the result.
func (c *Client) Post(ctx context.Context, path string, body any) (Object, error) {
	raw, err := c.Request(ctx, path, RequestOptions{Method: http.MethodPost, Body: body})
	if err != nil {
		return nil, err
	}
	return c.wrapper.Wrap(raw)
}

// Wrap turns a previously saved payload into a wrapped object bound to this client.
func (c *Client) Wrap(raw RawResponse) (Object, error) {
	return c.wrapper.Wrap(raw)
}

// Request implements Fetcher.
func (c *Client) Request(ctx context.Context, locator string, opts RequestOptions) (RawResponse, error) {
	target := c.resolve(locator)
	method := opts.method()

	c.log.DebugObj("scryfall request", "request", map[string]any{
		"method": method,
		"url":    target,
		"query":  opts.Query,
	})

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: method,
		URL:    target,
		Query:  opts.Query,
		Body:   opts.Body,
		Headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": c.userAgent,
		},
	})
	if err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("%s %s: %v", method, target, err),
			Err:     err,
		}
	}

	body := resp.Body()
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		apiErr := decodeAPIError(resp.StatusCode(), body)
		c.log.WarnObj("scryfall request failed", "request_error", map[string]any{
			"url":    target,
			"status": apiErr.Status,
			"code":   apiErr.Code,
		})
		return nil, apiErr
	}

	var raw RawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("decode response from %s: %v", target, err),
			Status:  resp.StatusCode(),
			Err:     err,
		}
	}
	return raw, nil
}

func (c *Client) resolve(locator string) string {
	locator = strings.TrimSpace(locator)
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return locator
	}
	return c.baseURL + "/" + strings.TrimLeft(locator, "/")
}

// apiErrorBody is the shape of an "error" object returned with non-2xx statuses.
type apiErrorBody struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Type     string   `json:"type"`
	Details  string   `json:"details"`
	Warnings []string `json:"warnings"`
}

func decodeAPIError(status int, body []byte) *Error {
	e := &Error{Kind: KindTransport, Status: status}

	var payload apiErrorBody
	if err := json.Unmarshal(body, &payload); err == nil && payload.Object == "error" {
		e.Code = payload.Code
		e.Message = payload.Details
		e.Warnings = payload.Warnings
		e.Details = map[string]any{"type": payload.Type}
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("status %d: %s", status, responseSnippet(body))
	}
	return e
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
