package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"propertyhub/internal/app/commands"
	availabilityapp "propertyhub/internal/app/handlers/availability"
	"propertyhub/internal/app/middleware"
	"propertyhub/internal/app/policies"
	"propertyhub/internal/app/queries"
	domainavailability "propertyhub/internal/domain/availability"
	domainbooking "propertyhub/internal/domain/booking"
	domainpricing "propertyhub/internal/domain/pricing"
	"propertyhub/internal/domain/shared/daterange"
)

// respondError maps application errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	var rejected *availabilityapp.RejectedError
	var remote *policies.ConflictError
	switch {
	case errors.As(err, &rejected):
		body["decision"] = decisionBody(rejected.Decision)
		status = http.StatusUnprocessableEntity
		if rejected.Decision.IsConflict() {
			status = http.StatusConflict
		}
	case errors.As(err, &remote):
		status = http.StatusConflict
		if len(remote.ConflictsOn) > 0 {
			body["conflicts_on"] = remote.ConflictsOn
		}
	case errors.Is(err, policies.ErrRemoteConflict),
		errors.Is(err, middleware.ErrIdempotencyKeyReused):
		status = http.StatusConflict
	case errors.Is(err, daterange.ErrMalformedDate),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, availabilityapp.ErrHorizonTooLong),
		errors.Is(err, domainavailability.ErrPropertyRequired):
		status = http.StatusBadRequest
	case errors.Is(err, domainpricing.ErrComputation),
		errors.Is(err, domainbooking.ErrGuestRequired),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrNameRequired),
		errors.Is(err, domainbooking.ErrInvalidEmail),
		errors.Is(err, domainbooking.ErrInvalidPhone),
		errors.Is(err, domainbooking.ErrRequestTooLarge):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, middleware.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, policies.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, commands.ErrHandlerNotFound),
		errors.Is(err, queries.ErrHandlerNotFound):
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		body["error"] = "internal error"
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func decisionBody(d domainavailability.Decision) gin.H {
	out := gin.H{"kind": string(d.Kind)}
	if d.IsConflict() {
		out["conflict_date"] = daterange.Key(d.ConflictDate)
		if d.Interval.ID != "" {
			out["blocking_booking_id"] = d.Interval.ID
		}
	}
	if d.IsInvalid() {
		out["reason"] = string(d.Reason)
	}
	return out
}
