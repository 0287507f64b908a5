package runlock

import (
	"context"
	"testing"
	"time"
)

func TestLocal_AcquireAndContend(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	ctx := context.Background()

	lease, ok, err := l.Acquire(ctx, "run", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	if _, ok, err := l.Acquire(ctx, "run", time.Minute); err != nil || ok {
		t.Fatalf("contended acquire: ok=%v err=%v", ok, err)
	}

	// A different key is an independent lease.
	other, ok, err := l.Acquire(ctx, "other", time.Minute)
	if err != nil || !ok {
		t.Fatalf("other key: ok=%v err=%v", ok, err)
	}
	if err := other.Release(ctx); err != nil {
		t.Fatal(err)
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := l.Acquire(ctx, "run", time.Minute); err != nil || !ok {
		t.Fatalf("reacquire after release: ok=%v err=%v", ok, err)
	}
}

func TestLocal_DoubleReleaseIsSafe(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	ctx := context.Background()

	lease, ok, err := l.Acquire(ctx, "run", time.Minute)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatal(err)
	}

	// The key is now held by nobody; a stale second release must not free a
	// lease it no longer owns.
	reacquired, ok, err := l.Acquire(ctx, "run", time.Minute)
	if err != nil || !ok {
		t.Fatalf("reacquire: ok=%v err=%v", ok, err)
	}
	if err := lease.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := l.Acquire(ctx, "run", time.Minute); ok {
		t.Error("stale release freed a lease held by another owner")
	}
	if err := reacquired.Release(ctx); err != nil {
		t.Fatal(err)
	}
}
