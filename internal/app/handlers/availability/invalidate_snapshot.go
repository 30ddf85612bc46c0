package availability

import (
	"context"
	"log/slog"

	"propertyhub/internal/app/commands"
	"propertyhub/internal/app/policies"
	domainavailability "propertyhub/internal/domain/availability"
)

const invalidateSnapshotKey = "availability.invalidate_snapshot"

// InvalidateSnapshotCommand is dispatched when the booking service announces a
// change to a property's reservations.
type InvalidateSnapshotCommand struct {
	PropertyID string
	Reason     string
}

func (c InvalidateSnapshotCommand) Key() string { return invalidateSnapshotKey }

func (c InvalidateSnapshotCommand) Validate() error {
	if c.PropertyID == "" {
		return domainavailability.ErrPropertyRequired
	}
	return nil
}

type InvalidationHandler struct {
	Invalidator policies.SnapshotInvalidator
	Logger      *slog.Logger
}

func (h *InvalidationHandler) Handle(ctx context.Context, cmd InvalidateSnapshotCommand) (struct{}, error) {
	if h.Invalidator == nil {
		return struct{}{}, nil
	}
	if err := h.Invalidator.Invalidate(ctx, domainavailability.PropertyID(cmd.PropertyID)); err != nil {
		return struct{}{}, err
	}
	if h.Logger != nil {
		h.Logger.DebugContext(ctx, "booked-dates snapshot invalidated", "property_id", cmd.PropertyID, "reason", cmd.Reason)
	}
	return struct{}{}, nil
}

var _ commands.Handler[InvalidateSnapshotCommand, struct{}] = (*InvalidationHandler)(nil)
