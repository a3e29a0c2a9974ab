package storage

import (
	"errors"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(t.TempDir()+"/scryfall.db", normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBoltStoreMarksAndExpiresCards(t *testing.T) {
	store := openTestStore(t, Options{
		ExportTTL:       time.Hour,
		CleanupInterval: 10 * time.Minute,
	})
	clock := &fakeClock{t: time.Now()}
	store.now = clock.now

	seen, err := store.SeenCard("card-1")
	if err != nil || seen {
		t.Fatalf("expected unseen card, seen=%v err=%v", seen, err)
	}
	if err := store.MarkCard("card-1"); err != nil {
		t.Fatalf("MarkCard: %v", err)
	}
	seen, err = store.SeenCard("card-1")
	if err != nil || !seen {
		t.Fatalf("expected card marked as exported, got seen=%v err=%v", seen, err)
	}

	clock.advance(2 * time.Hour)
	seen, err = store.SeenCard("card-1")
	if err != nil {
		t.Fatalf("SeenCard after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected entry to expire")
	}
	if n := ledgerLen(t, store); n != 0 {
		t.Fatalf("expected sweep to remove expired entry, %d left", n)
	}
}

func TestBoltStoreSweepsOnCadence(t *testing.T) {
	store := openTestStore(t, Options{
		ExportTTL:       time.Minute,
		CleanupInterval: time.Hour,
	})
	clock := &fakeClock{t: time.Now()}
	store.now = clock.now
	store.nextSweep = clock.t.Add(time.Hour)

	if err := store.MarkCard("card-1"); err != nil {
		t.Fatalf("MarkCard: %v", err)
	}
	clock.advance(2 * time.Minute)
	if seen, _ := store.SeenCard("card-1"); seen {
		t.Fatalf("expired entry must read as unseen")
	}
	if n := ledgerLen(t, store); n != 1 {
		t.Fatalf("sweep ran before its interval, %d entries left", n)
	}

	clock.advance(time.Hour)
	if _, err := store.SeenCard("card-2"); err != nil {
		t.Fatalf("SeenCard: %v", err)
	}
	if n := ledgerLen(t, store); n != 0 {
		t.Fatalf("expected sweep after interval, %d entries left", n)
	}
}

func ledgerLen(t *testing.T, store *boltStore) int {
	t.Helper()
	var n int
	if err := store.view(ledgerBucket, func(bk *bolt.Bucket) error {
		n = bk.Stats().KeyN
		return nil
	}); err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	return n
}

func TestBoltStorePayloadArchive(t *testing.T) {
	store := openTestStore(t, Options{})

	if _, err := store.LoadPayload("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.SavePayload("card:windfall", []byte(`{"object":"card"}`)); err != nil {
		t.Fatalf("SavePayload: %v", err)
	}
	if err := store.SavePayload("list:page1", []byte(`{"object":"list"}`)); err != nil {
		t.Fatalf("SavePayload: %v", err)
	}
	if err := store.SavePayload(" ", []byte(`{}`)); err == nil {
		t.Fatalf("expected error for blank key")
	}

	got, err := store.LoadPayload("card:windfall")
	if err != nil {
		t.Fatalf("LoadPayload: %v", err)
	}
	if string(got) != `{"object":"card"}` {
		t.Fatalf("unexpected payload %s", got)
	}

	keys, err := store.PayloadKeys()
	if err != nil {
		t.Fatalf("PayloadKeys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "card:windfall" || keys[1] != "list:page1" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkCard("x"); err != nil {
		t.Fatalf("noop store MarkCard: %v", err)
	}
	if seen, _ := store.SeenCard("x"); seen {
		t.Fatalf("noop store should never report seen cards")
	}
	if _, err := store.LoadPayload("x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from noop store, got %v", err)
	}
	if err := store.SavePayload("x", nil); err == nil {
		t.Fatalf("expected noop store to refuse payloads")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}
