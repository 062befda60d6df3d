package cronrunner

import (
	"context"
	"errors"
	"testing"
)

func TestRunnerRejectsBadSpec(t *testing.T) {
	r := New(nil, nil)
	if _, err := r.Add(Job{Name: "bad", Spec: "not a spec", Run: func(context.Context) error { return nil }}); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	if _, err := r.Add(Job{Name: "ok", Spec: "@every 1m", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("add err=%v", err)
	}
}

func TestRunnerRunPassesBaseContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "base")
	r := New(nil, ctx)
	var got any
	r.run(Job{Name: "probe", Run: func(ctx context.Context) error {
		got = ctx.Value(key{})
		return errors.New("logged, not returned")
	}})
	if got != "base" {
		t.Fatalf("ctx value=%v want=base", got)
	}
}

func TestRunnerSkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(nil, ctx)
	ran := false
	r.run(Job{Name: "late", Run: func(context.Context) error { ran = true; return nil }})
	if ran {
		t.Fatalf("job ran after base context was cancelled")
	}
}
