package policies

import (
	"context"

	domainbooking "propertyhub/internal/domain/booking"
)

// QuoteArchive keeps a receipt of the price shown to the guest when a
// booking was requested.
type QuoteArchive interface {
	Archive(ctx context.Context, req domainbooking.Request, conf domainbooking.Confirmation) (string, error)
}
