package events

import (
	"context"
	"sync"
	"time"

	"github.com/drblury/ordergate/internal/logging"
	"github.com/drblury/ordergate/internal/order"
)

// RetryConfig tunes publish retries. Zero values fall back to defaults.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (cfg RetryConfig) withDefaults() RetryConfig {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = time.Second
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 16 * time.Second
	}
	return cfg
}

// Relay decouples event publishing from the synchronous request path. The
// gateway enqueues without blocking and responds to the client immediately;
// a worker goroutine publishes with bounded exponential backoff. Publish
// failures are logged, never surfaced to the HTTP caller.
type Relay struct {
	publisher *Publisher
	logger    logging.ServiceLogger
	retry     RetryConfig

	queue chan order.PaymentEvent

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRelay builds a relay with a bounded queue. Call Start to launch the
// worker and Close to drain and stop it.
func NewRelay(publisher *Publisher, queueSize int, retry RetryConfig, logger logging.ServiceLogger) *Relay {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Relay{
		publisher: publisher,
		logger:    logger,
		retry:     retry.withDefaults(),
		queue:     make(chan order.PaymentEvent, queueSize),
	}
}

// Start launches the worker goroutine.
func (r *Relay) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for ev := range r.queue {
			r.deliver(ev)
		}
	}()
}

// Enqueue hands an event to the relay without blocking. When the queue is
// saturated or the relay is closed the event is dropped and logged; the
// order itself has already been accepted, so the request must not fail.
func (r *Relay) Enqueue(ev order.PaymentEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.logger.Error("payment event dropped, relay closed", nil, logging.LogFields{"order_id": ev.OrderID})
		return false
	}

	select {
	case r.queue <- ev:
		return true
	default:
		r.logger.Error("payment event dropped, relay queue full", nil, logging.LogFields{"order_id": ev.OrderID})
		return false
	}
}

// Close stops accepting events, drains the queue, and waits for the worker.
func (r *Relay) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Relay) deliver(ev order.PaymentEvent) {
	interval := r.retry.InitialInterval

	var err error
	for attempt := 0; attempt <= r.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(interval)
			interval *= 2
			if interval > r.retry.MaxInterval {
				interval = r.retry.MaxInterval
			}
		}

		if err = r.publisher.PublishPaymentEvent(context.Background(), ev); err == nil {
			r.logger.Debug("published payment event", logging.LogFields{"order_id": ev.OrderID, "status": ev.Status})
			return
		}
	}

	r.logger.Error("giving up on payment event", err, logging.LogFields{
		"order_id": ev.OrderID,
		"attempts": r.retry.MaxRetries + 1,
	})
}
