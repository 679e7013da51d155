package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSessionStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, *redis.Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "gs")
	return store, mr, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func testSession() *Session {
	return &Session{
		SessionID:    "sid-1",
		LastActivity: 1000,
		IsActive:     true,
	}
}

func TestStoreSaveGetRoundTrip(t *testing.T) {
	store, _, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSession(), 0); err != nil {
		t.Fatalf("save session: %v", err)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if *got != *testSession() {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestStoreGetMissingReturnsNil(t *testing.T) {
	store, _, _, done := newSessionStoreTest(t)
	defer done()

	got, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil session, got %+v", got)
	}
}

func TestStoreGetCorruptBlob(t *testing.T) {
	store, _, rdb, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := rdb.Set(ctx, store.key("sid-bad"), []byte{9, 9, 9}, 0).Err(); err != nil {
		t.Fatalf("seed corrupt blob: %v", err)
	}

	_, err := store.Get(ctx, "sid-bad")
	if !errors.Is(err, ErrSessionCorrupt) {
		t.Fatalf("expected ErrSessionCorrupt, got %v", err)
	}
}

func TestStoreGetUnavailable(t *testing.T) {
	store, mr, _, done := newSessionStoreTest(t)
	defer done()

	mr.Close()

	_, err := store.Get(context.Background(), "sid-1")
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}

func TestStoreDeleteIdempotent(t *testing.T) {
	store, _, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSession(), time.Hour); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil || got != nil {
		t.Fatalf("expected session gone, got %+v, %v", got, err)
	}
}

func TestStoreUpdateKeepsTTL(t *testing.T) {
	store, mr, _, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSession(), time.Hour); err != nil {
		t.Fatalf("save session: %v", err)
	}

	next := testSession()
	next.LastActivity = 2000
	updated, err := store.Update(ctx, next)
	if err != nil {
		t.Fatalf("update session: %v", err)
	}
	if updated.LastActivity != 2000 {
		t.Fatalf("expected returned last activity 2000, got %d", updated.LastActivity)
	}

	if ttl := mr.TTL(store.key("sid-1")); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected ttl to be preserved, got %v", ttl)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.LastActivity != 2000 {
		t.Fatalf("expected stored last activity 2000, got %d", got.LastActivity)
	}
}

func TestStoreUpdateMissingKey(t *testing.T) {
	store, _, _, done := newSessionStoreTest(t)
	defer done()

	_, err := store.Update(context.Background(), testSession())
	if !errors.Is(err, ErrSessionMissing) {
		t.Fatalf("expected ErrSessionMissing, got %v", err)
	}
}

func TestStoreKeyNamespace(t *testing.T) {
	store, mr, _, done := newSessionStoreTest(t)
	defer done()

	if err := store.Save(context.Background(), testSession(), 0); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if !mr.Exists("gs:sid-1") {
		t.Fatalf("expected key gs:sid-1, have %v", mr.Keys())
	}
}

func TestDecodeRejectsUnsupportedSchemaVersion(t *testing.T) {
	_, err := Decode([]byte{99})
	if err == nil || !strings.Contains(err.Error(), "unsupported session schema version") {
		t.Fatalf("expected unsupported schema version error, got %v", err)
	}
}

func TestEncodeRejectsOversizedID(t *testing.T) {
	_, err := Encode(&Session{SessionID: strings.Repeat("x", 256)})
	if err == nil {
		t.Fatal("expected error for oversized session id")
	}
}

func TestDecodeRejectsUnknownFlags(t *testing.T) {
	data, err := Encode(testSession())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data[len(data)-1] = 0x80
	if _, err := Decode(data); err == nil {
		t.Fatal("expected error for unknown flag bits")
	}
}

func TestStorePing(t *testing.T) {
	store, mr, _, done := newSessionStoreTest(t)
	defer done()

	if _, err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	mr.Close()
	if _, err := store.Ping(context.Background()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
