package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestMemory_SetAndGet(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key1", []byte("value1"), time.Second)

	val, found := c.Get(ctx, "key1")
	if !found {
		t.Fatal("Expected to find key1")
	}
	if string(val) != "value1" {
		t.Errorf("Expected value1, got %s", val)
	}
}

func TestMemory_Expiration(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key1", []byte("value1"), 100*time.Millisecond)

	if _, found := c.Get(ctx, "key1"); !found {
		t.Error("Expected to find key1 immediately")
	}

	time.Sleep(150 * time.Millisecond)

	if _, found := c.Get(ctx, "key1"); found {
		t.Error("Expected key1 to be expired")
	}
}

func TestMemory_ZeroTTLIsNotStored(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key1", []byte("value1"), 0)
	if _, found := c.Get(ctx, "key1"); found {
		t.Error("Expected zero TTL to disable caching")
	}
}

func TestMemory_Delete(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key1", []byte("a"), time.Second)
	c.Set(ctx, "key2", []byte("b"), time.Second)
	c.Delete(ctx, "key1", "key2")

	if _, found := c.Get(ctx, "key1"); found {
		t.Error("Expected key1 to be deleted")
	}
	if _, found := c.Get(ctx, "key2"); found {
		t.Error("Expected key2 to be deleted")
	}
}

func TestMemory_CleanupSweepsExpired(t *testing.T) {
	c := NewMemory(20 * time.Millisecond)
	defer c.Close()

	c.Set(context.Background(), "key1", []byte("a"), 10*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	if _, ok := c.store.Load("key1"); ok {
		t.Error("Expected cleanup to remove expired entry")
	}
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemory(time.Minute)
	defer c.Close()
	ctx := context.Background()

	type course struct{ Title string }
	SetJSON(ctx, c, "courses", []course{{Title: "Go"}}, time.Second)

	got, ok := GetJSON[[]course](ctx, c, "courses")
	if !ok || len(got) != 1 || got[0].Title != "Go" {
		t.Errorf("GetJSON = %v, %v", got, ok)
	}

	c.Set(ctx, "broken", []byte("{"), time.Second)
	if _, ok := GetJSON[[]course](ctx, c, "broken"); ok {
		t.Error("Expected undecodable entry to be a miss")
	}
	if _, ok := c.Get(ctx, "broken"); ok {
		t.Error("Expected undecodable entry to be dropped")
	}
}

func TestNewRedis_InvalidURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), "://not-a-url"); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestRedis_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := NewRedis(ctx, url)
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	defer r.Close()

	r.Set(ctx, "test:key", []byte("v"), time.Second)
	if v, ok := r.Get(ctx, "test:key"); !ok || string(v) != "v" {
		t.Errorf("Get = %q, %v", v, ok)
	}
	r.Delete(ctx, "test:key")
	if _, ok := r.Get(ctx, "test:key"); ok {
		t.Error("Expected key deleted")
	}
}
