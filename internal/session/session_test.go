package session

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewRedisStore(client), mr
}

func TestManagerLifecycle(t *testing.T) {
	stores := map[string]Store{"memory": NewMemoryStore()}
	redisStore, _ := setupRedisStore(t)
	stores["redis"] = redisStore

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mgr := NewManager(store, time.Hour)

			sess, err := mgr.Start(ctx, "a@x.com")
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			if sess.Token == "" || sess.Identifier != "a@x.com" {
				t.Fatalf("unexpected session %+v", sess)
			}

			got, err := mgr.Resolve(ctx, sess.Token)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got.Identifier != "a@x.com" {
				t.Fatalf("expected identifier a@x.com, got %s", got.Identifier)
			}

			if err := mgr.End(ctx, sess.Token); err != nil {
				t.Fatalf("end: %v", err)
			}
			if _, err := mgr.Resolve(ctx, sess.Token); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after end, got %v", err)
			}
		})
	}
}

func TestManagerRejectsEmptyIdentifier(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), time.Hour)
	if _, err := mgr.Start(context.Background(), ""); !errors.Is(err, ErrNoIdentifier) {
		t.Fatalf("expected ErrNoIdentifier, got %v", err)
	}
}

func TestManagerExpiresSessions(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(NewMemoryStore(), time.Minute)
	sess, err := mgr.Start(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	mgr.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := mgr.Resolve(ctx, sess.Token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()
	mgr := NewManager(store, 30*time.Second)

	sess, err := mgr.Start(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if ttl := mr.TTL(redisKeyPrefix + sess.Token); ttl <= 0 || ttl > 30*time.Second {
		t.Fatalf("unexpected ttl %s", ttl)
	}

	mr.FastForward(31 * time.Second)
	if _, err := store.Get(ctx, sess.Token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected key to expire, got %v", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), time.Hour)
	if _, err := mgr.Resolve(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := mgr.Resolve(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty token, got %v", err)
	}
}
