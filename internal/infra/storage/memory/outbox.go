package memory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"propertyhub/internal/app/outbox"
)

// Publisher delivers one record, e.g. to Kafka.
type Publisher interface {
	PublishRecord(ctx context.Context, rec outbox.EventRecord) error
}

// Outbox buffers records added during a command and hands them to the
// publisher on Flush. Without a publisher the records are logged and dropped.
// Delivered records are not retained.
type Outbox struct {
	Publisher Publisher
	Logger    *slog.Logger

	mu      sync.Mutex
	pending []outbox.EventRecord
}

func (o *Outbox) Add(_ context.Context, rec outbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, rec)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	batch := o.pending
	o.pending = nil
	o.mu.Unlock()

	var errs []error
	for _, rec := range batch {
		if o.Publisher == nil {
			if o.Logger != nil {
				o.Logger.InfoContext(ctx, "event", "name", rec.Name, "aggregate", rec.Aggregate, "id", rec.ID)
			}
			continue
		}
		if err := o.Publisher.PublishRecord(ctx, rec); err != nil {
			errs = append(errs, err)
			o.requeue(rec)
		}
	}
	return errors.Join(errs...)
}

// Pending reports how many records wait for the next Flush.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

func (o *Outbox) requeue(rec outbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, rec)
}
