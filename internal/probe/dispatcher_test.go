package probe

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestDispatcher_HandlesEveryJobOnce(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]int)

	d := newDispatcher(3, func(_ context.Context, j job) {
		mu.Lock()
		seen[j.identity.name+"/"+string(rune('0'+j.orderID))]++
		mu.Unlock()
	}, zerolog.Nop())

	ctx := context.Background()
	d.Start(ctx)
	for _, name := range []string{"alice", "bob", "charlie", "anonymous"} {
		for order := 1; order <= 4; order++ {
			if !d.Enqueue(ctx, job{identity: identity{name: name}, orderID: order}) {
				t.Fatalf("enqueue refused")
			}
		}
	}
	d.Wait()

	if len(seen) != 16 {
		t.Fatalf("expected 16 distinct jobs, got %d", len(seen))
	}
	for k, n := range seen {
		if n != 1 {
			t.Fatalf("job %s handled %d times", k, n)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := newDispatcher(0, func(context.Context, job) {}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}

	for _, key := range []string{"alice", "bob", "user-1", ""} {
		i := d.shardIndex(key)
		if i < 0 || i >= len(d.workers) {
			t.Fatalf("shard %d out of range for %q", i, key)
		}
		if d.shardIndex(key) != i {
			t.Fatalf("shard for %q is not stable", key)
		}
	}
}

func TestDispatcher_EnqueueAfterCancel(t *testing.T) {
	d := newDispatcher(1, func(context.Context, job) {}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Workers are not started, so the queue fills and Enqueue must give up.
	for i := 0; i < channelBuffer; i++ {
		d.workers[0] <- job{}
	}
	if d.Enqueue(ctx, job{identity: identity{name: "x"}}) {
		t.Fatalf("expected Enqueue to fail on a cancelled context")
	}
}
