// Package payments applies payment events delivered by the event log. The
// transport guarantees at-least-once delivery, so processing deduplicates on
// order id before applying any effect.
package payments

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/drblury/ordergate/internal/logging"
	"github.com/drblury/ordergate/internal/order"
)

const defaultSeenCapacity = 65536

// Payment is one recorded payment, kept per order.
type Payment struct {
	OrderID int64
	UserID  int64
	Status  string
}

// Processor records payments idempotently. Duplicate deliveries of the same
// order id are acknowledged without re-applying the effect.
type Processor struct {
	logger logging.ServiceLogger

	mu     sync.Mutex
	seen   *lru.Cache[int64, struct{}]
	ledger map[int64]Payment
}

// NewProcessor builds a processor. seenCapacity bounds the dedupe window;
// zero or negative selects the default.
func NewProcessor(seenCapacity int, logger logging.ServiceLogger) (*Processor, error) {
	if seenCapacity <= 0 {
		seenCapacity = defaultSeenCapacity
	}
	seen, err := lru.New[int64, struct{}](seenCapacity)
	if err != nil {
		return nil, err
	}
	return &Processor{
		logger: logger,
		seen:   seen,
		ledger: make(map[int64]Payment),
	}, nil
}

// ProcessPayment applies a single payment event. It never fails on
// duplicates; redelivery is a normal broker behaviour, not an error.
func (p *Processor) ProcessPayment(_ context.Context, ev order.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, duplicate := p.seen.Get(ev.OrderID); duplicate {
		p.logger.Debug("duplicate payment event ignored", logging.LogFields{"order_id": ev.OrderID})
		return nil
	}

	p.ledger[ev.OrderID] = Payment{OrderID: ev.OrderID, UserID: ev.UserID, Status: ev.Status}
	p.seen.Add(ev.OrderID, struct{}{})

	p.logger.Info("payment recorded", logging.LogFields{
		"order_id": ev.OrderID,
		"user_id":  ev.UserID,
		"status":   ev.Status,
	})
	return nil
}

// Payment returns the recorded payment for an order, if any.
func (p *Processor) Payment(orderID int64) (Payment, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	payment, ok := p.ledger[orderID]
	return payment, ok
}

// Count reports how many distinct payments have been recorded.
func (p *Processor) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ledger)
}
