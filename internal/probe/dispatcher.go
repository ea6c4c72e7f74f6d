package probe

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

type job struct {
	identity identity
	orderID  int
}

// dispatcher routes probe jobs to a fixed set of workers using consistent
// hashing on the identity name, so the requests of one identity are sent in
// order by a single worker.
type dispatcher struct {
	workers []chan job
	handle  func(ctx context.Context, j job)
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// newDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func newDispatcher(numWorkers int, handle func(context.Context, job), log zerolog.Logger) *dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &dispatcher{
		workers: make([]chan job, numWorkers),
		handle:  handle,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Wait closes their queues.
func (d *dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends j to the worker responsible for its identity. It returns
// false if ctx ends first.
func (d *dispatcher) Enqueue(ctx context.Context, j job) bool {
	select {
	case d.workers[d.shardIndex(j.identity.name)] <- j:
		return true
	case <-ctx.Done():
		return false
	}
}

// Wait closes every queue and blocks until the workers drain them.
func (d *dispatcher) Wait() {
	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()
}

// shardIndex maps an identity name deterministically to a worker index.
func (d *dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			d.log.Debug().
				Int("worker_id", id).
				Str("identity", j.identity.name).
				Int("order_id", j.orderID).
				Msg("probing order")
			d.handle(ctx, j)
		}
	}
}
