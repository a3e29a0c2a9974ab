package scryfall

import (
	"context"
	"iter"
)

// reservedListFields never become list metadata: "data" is consumed into the
// sequence and the others would shadow the sequence itself.
var reservedListFields = map[string]struct{}{
	"data":   {},
	"length": {},
	"items":  {},
}

// List is a page of results. It behaves like an ordered, mutable slice of
// objects and carries the page metadata (has_more, next_page, total_cards,
// warnings, ...). A List is not safe for concurrent mutation.
type List struct {
	items []Object
	meta  RawResponse
	w     *Wrapper
}

// NewList wraps a list payload. It fails when raw is not a "list" object.
func NewList(raw RawResponse, w *Wrapper) (*List, error) {
	if raw == nil {
		return nil, invalidPayload("cannot wrap an empty response")
	}
	if kind := raw.Kind(); kind != ObjectList {
		return nil, typeMismatch(ObjectList, kind)
	}
	return buildList(w.prepare(raw), w)
}

func buildList(raw RawResponse, w *Wrapper) (*List, error) {
	l := &List{meta: make(RawResponse, len(raw)), w: w}

	if data, present := raw["data"]; present && data != nil {
		entries, ok := data.([]any)
		if !ok {
			return nil, invalidPayload("list data must be an array, got %T", data)
		}
		l.items = make([]Object, 0, len(entries))
		for i, entry := range entries {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, invalidPayload("list data[%d] must be an object, got %T", i, entry)
			}
			obj, err := w.classify(RawResponse(m))
			if err != nil {
				return nil, err
			}
			l.items = append(l.items, obj)
		}
	}

	for key, val := range raw {
		if _, reserved := reservedListFields[key]; reserved {
			continue
		}
		l.meta[key] = val
	}
	return l, nil
}

func (l *List) Kind() string { return ObjectList }

// Raw returns the list metadata. The consumed "data" field is not part of it.
func (l *List) Raw() RawResponse { return l.meta }

func (l *List) Field(key string) (any, bool) {
	v, ok := l.meta[key]
	return v, ok
}

// HasMore reports whether another page can be fetched with Next.
func (l *List) HasMore() bool {
	b, _ := l.meta["has_more"].(bool)
	return b
}

// NextPage returns the locator of the following page, or "".
func (l *List) NextPage() string {
	s, _ := l.meta["next_page"].(string)
	return s
}

// TotalCards returns total_cards when the endpoint reports it.
func (l *List) TotalCards() (int, bool) {
	return toInt(l.meta["total_cards"])
}

// Warnings returns the non-fatal warnings attached to the page.
func (l *List) Warnings() []string {
	return stringSlice(l.meta["warnings"])
}

// NotFound returns the identifiers the collection endpoint could not resolve.
func (l *List) NotFound() []map[string]any {
	arr, _ := l.meta["not_found"].([]any)
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Next fetches the following page. The receiver is left untouched; a new
// List is returned. It fails with ErrNoMorePages when has_more is false.
func (l *List) Next(ctx context.Context) (*List, error) {
	if !l.HasMore() {
		return nil, noMorePages()
	}
	next := l.NextPage()
	if next == "" {
		return nil, invalidPayload("list has more pages but no next_page")
	}
	if l.w == nil || l.w.fetcher == nil {
		return nil, invalidPayload("list is not bound to a fetcher")
	}

	raw, err := l.w.fetcher.Request(ctx, next, RequestOptions{})
	if err != nil {
		return nil, err
	}
	obj, err := l.w.Wrap(raw)
	if err != nil {
		return nil, err
	}
	page, ok := obj.(*List)
	if !ok {
		return nil, typeMismatch(ObjectList, obj.Kind())
	}
	return page, nil
}

// Collect follows Next until the last page and returns every object in
// order, starting with the receiver's own items.
func (l *List) Collect(ctx context.Context) ([]Object, error) {
	out := l.Items()
	page := l
	for page.HasMore() {
		next, err := page.Next(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, next.items...)
		page = next
	}
	return out, nil
}

// Len returns the number of items on this page.
func (l *List) Len() int { return len(l.items) }

// At returns the item at index i. It panics when i is out of range, like a
// slice index.
func (l *List) At(i int) Object { return l.items[i] }

// Set replaces the item at index i.
func (l *List) Set(i int, obj Object) { l.items[i] = obj }

// Append adds objects to the end of the list.
func (l *List) Append(objs ...Object) { l.items = append(l.items, objs...) }

// Pop removes and returns the last item.
func (l *List) Pop() (Object, bool) {
	if len(l.items) == 0 {
		return nil, false
	}
	last := l.items[len(l.items)-1]
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	return last, true
}

// All iterates over index/item pairs in order.
func (l *List) All() iter.Seq2[int, Object] {
	return func(yield func(int, Object) bool) {
		for i, obj := range l.items {
			if !yield(i, obj) {
				return
			}
		}
	}
}

// Items returns a copy of the items as a plain slice.
func (l *List) Items() []Object {
	out := make([]Object, len(l.items))
	copy(out, l.items)
	return out
}

// Filter returns the items matching keep as a plain slice.
func (l *List) Filter(keep func(Object) bool) []Object {
	out := make([]Object, 0, len(l.items))
	for _, obj := range l.items {
		if keep(obj) {
			out = append(out, obj)
		}
	}
	return out
}

// Cards returns the card items of the page.
func (l *List) Cards() []*Card {
	out := make([]*Card, 0, len(l.items))
	for _, obj := range l.items {
		if c, ok := obj.(*Card); ok {
			out = append(out, c)
		}
	}
	return out
}

// MapList applies fn to every item of l and returns the results as a plain
// slice; the result carries no pagination metadata.
func MapList[T any](l *List, fn func(Object) T) []T {
	out := make([]T, len(l.items))
	for i, obj := range l.items {
		out[i] = fn(obj)
	}
	return out
}

func stringSlice(v any) []string {
	arr, _ := v.([]any)
	if len(arr) == 0 {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
