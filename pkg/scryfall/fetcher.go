package scryfall

import (
	"context"
	"net/http"
	"strings"
)

// RawResponse is a decoded JSON object as returned by the API.
type RawResponse map[string]any

// Kind returns the "object" discriminant, or "" when absent.
func (r RawResponse) Kind() string {
	s, _ := r["object"].(string)
	return s
}

// RequestOptions tunes a single Fetcher call. The zero value is a GET with no
// query string.
type RequestOptions struct {
	Method string
	Query  map[string]string
	Body   any
}

func (o RequestOptions) method() string {
	m := strings.ToUpper(strings.TrimSpace(o.Method))
	if m == "" {
		return http.MethodGet
	}
	return m
}

// Fetcher performs API calls. locator is either an absolute URL (as found in
// next_page, rulings_uri, ...) or a path relative to the API base URL.
// Failures are reported as *Error values of kind KindTransport.
type Fetcher interface {
	Request(ctx context.Context, locator string, opts RequestOptions) (RawResponse, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, locator string, opts RequestOptions) (RawResponse, error)

func (f FetcherFunc) Request(ctx context.Context, locator string, opts RequestOptions) (RawResponse, error) {
	return f(ctx, locator, opts)
}
