// Package preview scrapes link-preview metadata (OpenGraph tags) from card
// pages on scryfall.com.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/scryfall-go/pkg/httpclient"
	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "scryfall-go-preview/1.0"
)

// Meta is the preview information of a page.
type Meta struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// Scraper fetches pages and extracts metadata from OG tags.
type Scraper struct {
	client  httpclient.Client
	headers map[string]string
	delay   time.Duration
}

// NewScraper constructs a scraper with the provided HTTP client (or default).
// delay throttles consecutive requests made by Many.
func NewScraper(client httpclient.Client, delay time.Duration) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout)
	}
	return &Scraper{
		client: client,
		headers: map[string]string{
			"User-Agent": defaultUserAgent,
			"Accept":     "text/html,application/xhtml+xml",
		},
		delay: delay,
	}
}

// Card scrapes the card's scryfall_uri page.
func (s *Scraper) Card(ctx context.Context, c *scryfall.Card) (Meta, error) {
	page := c.String("scryfall_uri")
	if page == "" {
		return Meta{}, errors.New("card has no scryfall_uri")
	}
	return s.Fetch(ctx, page)
}

// Many scrapes pages in order, pausing between requests. Pages that fail
// keep only their URL. It stops early when ctx is cancelled.
func (s *Scraper) Many(ctx context.Context, pages []string) ([]Meta, error) {
	out := make([]Meta, 0, len(pages))
	var errs []error

	for i, page := range pages {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		meta, err := s.Fetch(ctx, page)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", page, err))
			meta = Meta{URL: page}
		}
		out = append(out, meta)

		if s.delay > 0 && i < len(pages)-1 {
			timer := time.NewTimer(s.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return out, errors.Join(errs...)
}

// Fetch downloads page and parses its metadata.
func (s *Scraper) Fetch(ctx context.Context, page string) (Meta, error) {
	resp, err := s.client.Get(ctx, page, s.headers)
	if err != nil {
		return Meta{}, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return Meta{}, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return Meta{}, err
	}
	meta.URL = firstNonEmpty(resolveURL(meta.URL, page), page)
	meta.ImageURL = resolveURL(meta.ImageURL, page)
	return meta, nil
}

func parseMeta(body []byte) (Meta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Meta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return Meta{
		URL: extract(`meta[property="og:url"]`),
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: extract(`meta[property="og:image"]`),
	}, nil
}

// resolveURL makes ref absolute against base.
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
