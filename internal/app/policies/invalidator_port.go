package policies

import (
	"context"

	domainavailability "propertyhub/internal/domain/availability"
)

// SnapshotInvalidator drops any cached booked-dates snapshot of a property.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, property domainavailability.PropertyID) error
}
