package scryfall

import (
	"context"
	"encoding/json"
	"strings"
)

// Discriminants with a dedicated wrapper.
const (
	ObjectList = "list"
	ObjectCard = "card"
	ObjectSet  = "set"
)

// Object is a wrapped API response.
type Object interface {
	// Kind returns the "object" discriminant of the payload.
	Kind() string
	// Raw returns the payload the object was built from, after text transforms.
	Raw() RawResponse
	// Field looks up a top-level field.
	Field(key string) (any, bool)
}

// TextTransform rewrites string values while a payload is wrapped.
type TextTransform func(string) string

// Wrapper classifies payloads and binds them to a Fetcher. A Wrapper is
// immutable and may be shared by any number of objects and goroutines.
type Wrapper struct {
	fetcher   Fetcher
	transform TextTransform
}

// NewWrapper returns a Wrapper for f. A nil transform leaves strings untouched.
func NewWrapper(f Fetcher, transform TextTransform) *Wrapper {
	return &Wrapper{fetcher: f, transform: transform}
}

// Fetcher returns the fetcher objects use for follow-up requests.
func (w *Wrapper) Fetcher() Fetcher { return w.fetcher }

// Wrap is shorthand for NewWrapper(f, nil).Wrap(raw).
func Wrap(raw RawResponse, f Fetcher) (Object, error) {
	return NewWrapper(f, nil).Wrap(raw)
}

type constructor func(raw RawResponse, w *Wrapper) (Object, error)

// constructors holds the discriminants with a dedicated wrapper. Anything
// else becomes a *Resource.
var constructors map[string]constructor

func init() {
	constructors = map[string]constructor{
		ObjectList: func(raw RawResponse, w *Wrapper) (Object, error) { return buildList(raw, w) },
		ObjectCard: func(raw RawResponse, w *Wrapper) (Object, error) { return buildCard(raw, w) },
		ObjectSet:  func(raw RawResponse, w *Wrapper) (Object, error) { return buildSet(raw, w) },
	}
}

// Wrap copies raw, applies the text transform and returns the matching wrapper.
func (w *Wrapper) Wrap(raw RawResponse) (Object, error) {
	if raw == nil {
		return nil, invalidPayload("cannot wrap an empty response")
	}
	return w.classify(w.prepare(raw))
}

// classify dispatches an already prepared payload.
func (w *Wrapper) classify(raw RawResponse) (Object, error) {
	if build, ok := constructors[raw.Kind()]; ok {
		return build(raw, w)
	}
	return buildResource(raw, w)
}

// prepare deep-copies raw into plain maps and slices, transforming strings on
// the way. Locator fields (uri, next_page, *_uri, *_uris) and structural
// fields (see structuralKeys) are copied verbatim so dispatch, helpers and
// follow-up requests keep working under any transform.
func (w *Wrapper) prepare(raw RawResponse) RawResponse {
	fn := w.transform
	if fn == nil {
		fn = identity
	}
	return RawResponse(copyMap(raw, fn))
}

func identity(s string) string { return s }

func copyMap(m map[string]any, fn TextTransform) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isLocatorKey(k) || isStructuralKey(k) {
			out[k] = copyValue(v, identity)
			continue
		}
		out[k] = copyValue(v, fn)
	}
	return out
}

func isLocatorKey(key string) bool {
	return key == "uri" || key == "next_page" ||
		strings.HasSuffix(key, "_uri") || strings.HasSuffix(key, "_uris")
}

// structuralKeys hold identifiers and enumerations the helpers compare
// against fixed values. Whole subtrees are kept for legalities and prices.
var structuralKeys = map[string]struct{}{
	"object":     {},
	"id":         {},
	"oracle_id":  {},
	"lang":       {},
	"layout":     {},
	"component":  {},
	"code":       {},
	"set":        {},
	"legalities": {},
	"prices":     {},
}

func isStructuralKey(key string) bool {
	_, ok := structuralKeys[key]
	return ok
}

func copyValue(v any, fn TextTransform) any {
	switch val := v.(type) {
	case string:
		return fn(val)
	case RawResponse:
		return copyMap(val, fn)
	case map[string]any:
		return copyMap(val, fn)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item, fn)
		}
		return out
	case []RawResponse:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyMap(item, fn)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyMap(item, fn)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fn(item)
		}
		return out
	default:
		return v
	}
}

// Resource is the pass-through wrapper for any payload without a dedicated
// type (rulings, catalogs, card faces, related cards, ...).
type Resource struct {
	raw      RawResponse
	children map[string]any
	w        *Wrapper
}

func buildResource(raw RawResponse, w *Wrapper) (*Resource, error) {
	r := &Resource{raw: raw, w: w}
	for key, val := range raw {
		child, ok, err := w.wrapNested(val)
		if err != nil {
			return nil, err
		}
		if ok {
			if r.children == nil {
				r.children = make(map[string]any)
			}
			r.children[key] = child
		}
	}
	return r, nil
}

// wrapNested wraps a field value when it is a payload (an object with an
// "object" field) or an array made only of payloads.
func (w *Wrapper) wrapNested(val any) (any, bool, error) {
	switch v := val.(type) {
	case map[string]any:
		if _, tagged := v["object"].(string); !tagged {
			return nil, false, nil
		}
		obj, err := w.classify(RawResponse(v))
		if err != nil {
			return nil, false, err
		}
		return obj, true, nil
	case []any:
		if len(v) == 0 {
			return nil, false, nil
		}
		objs := make([]Object, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false, nil
			}
			if _, tagged := m["object"].(string); !tagged {
				return nil, false, nil
			}
			obj, err := w.classify(RawResponse(m))
			if err != nil {
				return nil, false, err
			}
			objs = append(objs, obj)
		}
		return objs, true, nil
	default:
		return nil, false, nil
	}
}

// NewResource wraps raw without validating its discriminant.
func NewResource(raw RawResponse, w *Wrapper) (*Resource, error) {
	if raw == nil {
		return nil, invalidPayload("cannot wrap an empty response")
	}
	return buildResource(w.prepare(raw), w)
}

func (r *Resource) Kind() string { return r.raw.Kind() }

// Raw returns the underlying payload. It is shared with the resource, so
// callers that mutate it change what the accessors report.
func (r *Resource) Raw() RawResponse { return r.raw }

// Wrapper returns the wrapper the resource is bound to.
func (r *Resource) Wrapper() *Wrapper { return r.w }

func (r *Resource) Field(key string) (any, bool) {
	v, ok := r.raw[key]
	return v, ok
}

// String returns a string field or "".
func (r *Resource) String(key string) string {
	s, _ := r.raw[key].(string)
	return s
}

// Bool returns a boolean field or false.
func (r *Resource) Bool(key string) bool {
	b, _ := r.raw[key].(bool)
	return b
}

// Int returns a numeric field truncated to int.
func (r *Resource) Int(key string) (int, bool) {
	return toInt(r.raw[key])
}

// Float returns a numeric field.
func (r *Resource) Float(key string) (float64, bool) {
	switch v := r.raw[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Strings returns an array field of strings, skipping other values.
func (r *Resource) Strings(key string) []string {
	return stringSlice(r.raw[key])
}

// Map returns an object field that carries no discriminant (image_uris,
// legalities, prices, ...).
func (r *Resource) Map(key string) map[string]any {
	m, _ := r.raw[key].(map[string]any)
	return m
}

// Object returns a nested wrapped payload.
func (r *Resource) Object(key string) (Object, bool) {
	obj, ok := r.children[key].(Object)
	return obj, ok
}

// Objects returns a nested array of wrapped payloads.
func (r *Resource) Objects(key string) []Object {
	objs, _ := r.children[key].([]Object)
	return objs
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

// follow requests the URL stored in field and wraps the response.
func (r *Resource) follow(ctx context.Context, field string) (Object, error) {
	uri := r.String(field)
	if uri == "" {
		return nil, invalidPayload("%s object has no %s", r.Kind(), field)
	}
	return r.fetch(ctx, uri)
}

func (r *Resource) fetch(ctx context.Context, uri string) (Object, error) {
	if uri == "" {
		return nil, invalidPayload("empty locator")
	}
	if r.w == nil || r.w.fetcher == nil {
		return nil, invalidPayload("%s object is not bound to a fetcher", r.Kind())
	}
	raw, err := r.w.fetcher.Request(ctx, uri, RequestOptions{})
	if err != nil {
		return nil, err
	}
	return r.w.Wrap(raw)
}
