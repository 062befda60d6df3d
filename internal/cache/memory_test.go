package cache

import (
	"context"
	"testing"
	"time"

	"yieldmarket/internal/config"
)

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, found, err := s.Get(ctx, "k")
	if err != nil || !found || string(b) != "v" {
		t.Fatalf("get=%q found=%v err=%v", b, found, err)
	}

	now = now.Add(time.Minute)
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Fatalf("expected k to expire")
	}
	if _, found, _ := s.Get(ctx, "forever"); !found {
		t.Fatalf("expected forever to survive")
	}
	if s.Len() != 1 {
		t.Fatalf("len=%d want=1", s.Len())
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	in := []byte("abc")
	_ = s.Set(ctx, "k", in, 0)
	in[0] = 'z'
	out, _, _ := s.Get(ctx, "k")
	if string(out) != "abc" {
		t.Fatalf("got=%q want=abc", out)
	}
	out[0] = 'q'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("got=%q want=abc", again)
	}
	_ = s.Delete(ctx, "k")
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Fatalf("expected delete")
	}
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	type view struct {
		N int `json:"n"`
	}
	if err := SetJSON(ctx, s, "v", view{N: 7}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got view
	found, err := GetJSON(ctx, s, "v", &got)
	if err != nil || !found || got.N != 7 {
		t.Fatalf("got=%+v found=%v err=%v", got, found, err)
	}

	_ = s.Set(ctx, "bad", []byte("{"), 0)
	found, err = GetJSON(ctx, s, "bad", &got)
	if err != nil || found {
		t.Fatalf("found=%v err=%v want miss", found, err)
	}
	if _, ok, _ := s.Get(ctx, "bad"); ok {
		t.Fatalf("expected undecodable entry to be dropped")
	}

	found, err = GetJSON(ctx, nil, "v", &got)
	if err != nil || found {
		t.Fatalf("nil store found=%v err=%v", found, err)
	}
}

func TestNewBackend(t *testing.T) {
	s, err := New(config.CacheConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("type=%T want *MemoryStore", s)
	}
	if _, err := New(config.CacheConfig{Backend: "redis"}); err == nil {
		t.Fatalf("expected error without addr")
	}
	r, err := New(config.CacheConfig{Backend: "redis", Addr: "127.0.0.1:6379"})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	if rs, ok := r.(*RedisStore); !ok {
		t.Fatalf("type=%T want *RedisStore", r)
	} else {
		_ = rs.Close()
	}
	if _, err := New(config.CacheConfig{Backend: "memcached"}); err == nil {
		t.Fatalf("expected unsupported backend error")
	}
}
