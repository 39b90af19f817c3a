package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStoreGetOrLoad_LoadsOnce(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int64

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "payload", nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		value, err := store.GetOrLoad(ctx, "key", loader)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "payload" {
			t.Fatalf("unexpected value: %v", value)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
}

func TestStoreGetOrLoad_ConcurrentCallersShareOneLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int64
	start := make(chan struct{})

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return 42, nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]any, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			results[idx], errs[idx] = store.GetOrLoad(context.Background(), "shared", loader)
		}(i)
	}

	close(start)
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d error: %v", i, errs[i])
		}
		if results[i] != 42 {
			t.Fatalf("worker %d value: %v", i, results[i])
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
}

func TestStoreGetOrLoad_ErrorNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int64

	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errLoaderUnavailable
		}
		return "recovered", nil
	}

	ctx := context.Background()
	if _, err := store.GetOrLoad(ctx, "key", loader); !errors.Is(err, errLoaderUnavailable) {
		t.Fatalf("first call error = %v, want %v", err, errLoaderUnavailable)
	}

	value, err := store.GetOrLoad(ctx, "key", loader)
	if err != nil {
		t.Fatalf("second call error: %v", err)
	}
	if value != "recovered" {
		t.Fatalf("second call value: %v", value)
	}
}

func TestStoreGet_ExpiredEntryMisses(t *testing.T) {
	t.Parallel()

	store := NewStore(10 * time.Millisecond)
	ctx := context.Background()

	store.Set(ctx, "key", "short-lived")
	if _, ok := store.Get(ctx, "key"); !ok {
		t.Fatal("fresh entry should hit")
	}

	time.Sleep(25 * time.Millisecond)
	if value, ok := store.Get(ctx, "key"); ok {
		t.Fatalf("expired entry should miss, got %v", value)
	}
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "key", 1)
	store.Delete(ctx, "key")
	if _, ok := store.Get(ctx, "key"); ok {
		t.Fatal("deleted entry should miss")
	}
}

func TestStoreGetOrLoad_EmptyKeyBypassesCache(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int64

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "value", nil
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := store.GetOrLoad(ctx, "", loader); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("loader ran %d times, want 2", got)
	}
}

var errLoaderUnavailable = errors.New("loader unavailable")
