package delivery

import (
	"context"
	"errors"
	"sync"
	"time"

	applog "mykitchen/internal/log"
	"mykitchen/internal/shopping"
)

const defaultSendTimeout = 30 * time.Second

// ErrDispatcherClosed is returned for sends attempted after Close.
var ErrDispatcherClosed = errors.New("delivery: dispatcher closed")

// Dispatcher renders and mails shopping lists. Background sends never
// report failure to the caller; they are logged instead.
type Dispatcher struct {
	mailer  Mailer
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(mailer Mailer) *Dispatcher {
	return &Dispatcher{mailer: mailer, timeout: defaultSendTimeout}
}

// Deliver renders and sends list synchronously.
func (d *Dispatcher) Deliver(ctx context.Context, to string, list shopping.ListResponse) error {
	msg, err := ShoppingListMessage(ctx, to, list)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.mailer.Send(ctx, msg)
}

// SendShoppingList queues list for delivery and returns immediately. The
// send outlives the request but keeps its logging attributes.
func (d *Dispatcher) SendShoppingList(ctx context.Context, to string, list shopping.ListResponse) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	d.wg.Add(1)
	go func(ctx context.Context) {
		defer d.wg.Done()
		if err := d.Deliver(ctx, to, list); err != nil {
			applog.Warn(ctx, "shopping list email failed", "list_id", list.ID, "to", to, "error", err)
			return
		}
		applog.Info(ctx, "shopping list emailed", "list_id", list.ID, "to", to)
	}(context.WithoutCancel(ctx))

	return nil
}

// Close rejects new sends and waits for in-flight ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
