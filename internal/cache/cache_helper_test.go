package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) *CacheHelper {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheHelper(client, "test:")
}

func TestSetGetRoundTrip(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	type payload struct {
		Code string `json:"code"`
	}

	if err := helper.Set(ctx, "class:CS101", payload{Code: "CS101"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "class:CS101", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Code != "CS101" {
		t.Errorf("got %+v", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	helper := newTestHelper(t)

	var dest string
	err := helper.Get(context.Background(), "absent", &dest)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheOrExecuteCachesFetchResult(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return "value", nil
	}

	var got string
	for i := 0; i < 2; i++ {
		if err := helper.CacheOrExecute(ctx, "k", &got, time.Minute, fetch); err != nil {
			t.Fatalf("CacheOrExecute: %v", err)
		}
		if got != "value" {
			t.Errorf("got %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestNilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}

	var got string
	err := helper.CacheOrExecute(ctx, "k", &got, time.Minute, func() (interface{}, error) {
		return "direct", nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute: %v", err)
	}
	if got != "direct" {
		t.Errorf("got %q, want direct fetch result", got)
	}
}
