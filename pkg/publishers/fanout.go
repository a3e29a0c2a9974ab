package publishers

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Fanout delivers each card event to every publisher concurrently.
// Publishers with an Accepts(Event) bool method only see the events they
// accept.
type Fanout struct {
	pubs []Publisher
}

// NewFanout drops nil entries from pubs.
func NewFanout(pubs []Publisher) *Fanout {
	f := &Fanout{}
	for _, p := range pubs {
		if p != nil {
			f.pubs = append(f.pubs, p)
		}
	}
	return f
}

type acceptor interface {
	Accepts(evt Event) bool
}

// Publish returns how many publishers delivered the event, and every
// delivery error joined. Publishers that filtered the event out count as
// neither.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil {
		return 0, nil
	}
	errs := make([]error, len(f.pubs))
	sent := make([]bool, len(f.pubs))

	var wg sync.WaitGroup
	for i, p := range f.pubs {
		if a, ok := p.(acceptor); ok && !a.Accepts(evt) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Publish(ctx, evt); err != nil {
				errs[i] = fmt.Errorf("%s publisher %q: %w", p.Type(), p.ID(), err)
				return
			}
			sent[i] = true
		}()
	}
	wg.Wait()

	delivered := 0
	for _, ok := range sent {
		if ok {
			delivered++
		}
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.pubs)
}

// Close closes every publisher holding a connection.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeAll(f.pubs)
}
