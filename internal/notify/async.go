package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/readingcenter/internal/reservations"
)

// deliveryTimeout bounds a single background delivery.
const deliveryTimeout = time.Minute

// AsyncNotifier delivers each notification on its own goroutine, once.
// Failures are logged and dropped.
type AsyncNotifier struct {
	dispatcher *Dispatcher
	wg         sync.WaitGroup
}

func NewAsyncNotifier(d *Dispatcher) *AsyncNotifier {
	return &AsyncNotifier{dispatcher: d}
}

func (a *AsyncNotifier) Notify(ctx context.Context, n reservations.Notification) {
	a.run(ctx, string(n.Kind), func(ctx context.Context) error {
		return a.dispatcher.Deliver(ctx, n)
	})
}

func (a *AsyncNotifier) NotifyContact(ctx context.Context, contactID uint) {
	a.run(ctx, "contact_ack", func(ctx context.Context) error {
		return a.dispatcher.DeliverContactAck(ctx, contactID)
	})
}

func (a *AsyncNotifier) run(parent context.Context, what string, fn func(context.Context) error) {
	// The request that triggered the notification may finish first.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), deliveryTimeout)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("[NOTIFY] %s delivery failed: %v", what, err)
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (a *AsyncNotifier) Wait() {
	a.wg.Wait()
}
