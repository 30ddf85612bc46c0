package availability

import (
	"context"

	"propertyhub/internal/app/dto"
	"propertyhub/internal/app/queries"
	domainavailability "propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/shared/daterange"
)

const checkAvailabilityKey = "availability.check"

type CheckAvailabilityQuery struct {
	PropertyID string
	Range      daterange.DateRange
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

// CheckAvailabilityHandler answers with the decision itself; a conflict is a
// successful answer here, not an error.
type CheckAvailabilityHandler struct {
	Checker *Checker
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.AvailabilityDecision, error) {
	decision, err := h.Checker.Check(ctx, domainavailability.PropertyID(q.PropertyID), q.Range)
	if err != nil {
		return dto.AvailabilityDecision{}, err
	}
	return dto.MapDecision(decision), nil
}

var _ queries.Handler[CheckAvailabilityQuery, dto.AvailabilityDecision] = (*CheckAvailabilityHandler)(nil)
