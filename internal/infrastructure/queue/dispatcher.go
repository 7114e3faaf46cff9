package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes product events to a fixed set of workers using consistent
// hashing on the product id, so events for one product are published in order.
type Dispatcher struct {
	workers   []chan domain.ProductEvent
	publisher ports.ProductEventPublisher
	log       zerolog.Logger
	wg        sync.WaitGroup
	dropped   func(domain.ProductEvent)
}

var _ ports.ProductEventDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.ProductEventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.ProductEvent, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ProductEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// OnDrop registers fn to be called for every event rejected by Enqueue.
// It must be set before Start.
func (d *Dispatcher) OnDrop(fn func(domain.ProductEvent)) {
	d.dropped = fn
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands an event to the worker responsible for its product. It never
// blocks the request path: when the shard's buffer is full the event is
// dropped and logged.
func (d *Dispatcher) Enqueue(event domain.ProductEvent) {
	select {
	case d.workers[d.shardIndex(event.ProductID)] <- event:
	default:
		d.log.Warn().
			Str("product_id", event.ProductID).
			Str("type", string(event.Type)).
			Msg("event buffer full, dropping product event")
		if d.dropped != nil {
			d.dropped(event)
		}
	}
}

// shardIndex maps a product id deterministically to a worker index.
func (d *Dispatcher) shardIndex(productID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(productID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ProductEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			if err := d.publisher.Publish(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("product_id", event.ProductID).
					Str("type", string(event.Type)).
					Int("worker_id", id).
					Msg("product event publishing failed")
			}
		}
	}
}
