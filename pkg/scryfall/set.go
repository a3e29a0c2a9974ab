package scryfall

import "context"

// Set wraps a "set" object.
type Set struct {
	*Resource
}

// NewSet wraps raw as a set. It fails unless raw's object field is "set".
func NewSet(raw RawResponse, w *Wrapper) (*Set, error) {
	if raw == nil {
		return nil, invalidPayload("cannot wrap an empty response")
	}
	if kind := raw.Kind(); kind != ObjectSet {
		return nil, typeMismatch(ObjectSet, kind)
	}
	return buildSet(w.prepare(raw), w)
}

func buildSet(raw RawResponse, w *Wrapper) (*Set, error) {
	r, err := buildResource(raw, w)
	if err != nil {
		return nil, err
	}
	return &Set{Resource: r}, nil
}

func (s *Set) Code() string { return s.String("code") }
func (s *Set) Name() string { return s.String("name") }

func (s *Set) CardCount() int {
	n, _ := s.Int("card_count")
	return n
}

// Cards fetches the first page of cards in the set.
func (s *Set) Cards(ctx context.Context) (*List, error) {
	obj, err := s.follow(ctx, "search_uri")
	if err != nil {
		return nil, err
	}
	return expectList(obj)
}
