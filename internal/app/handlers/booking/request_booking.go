package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"propertyhub/internal/app/commands"
	"propertyhub/internal/app/dto"
	"propertyhub/internal/app/handlers/availability"
	"propertyhub/internal/app/handlers/pricing"
	"propertyhub/internal/app/middleware"
	"propertyhub/internal/app/outbox"
	"propertyhub/internal/app/policies"
	domainavailability "propertyhub/internal/domain/availability"
	domainbooking "propertyhub/internal/domain/booking"
	"propertyhub/internal/domain/shared/daterange"
	"propertyhub/internal/domain/shared/events"
)

const requestBookingKey = "booking.request"

var ErrCreatorRequired = errors.New("booking: booking creator required")

type RequestBookingCommand struct {
	CommandID       string
	PropertyID      string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Terms           pricing.Terms
	Guests          int
	Contact         domainbooking.Contact
	SpecialRequests string
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &dto.BookingConfirmation{} }

func (c RequestBookingCommand) ActingGuest() string { return c.GuestID }

// RequestBookingHandler runs the advisory check, prices the stay and hands the
// request to the booking service, which has the final say on conflicts.
type RequestBookingHandler struct {
	Checker   *availability.Checker
	Pricer    pricing.Pricer
	Creator   policies.BookingCreator
	Snapshots policies.SnapshotInvalidator
	Receipts  policies.QuoteArchive
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Now       func() time.Time
	Logger    *slog.Logger
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.BookingConfirmation, error) {
	if h.Creator == nil {
		return nil, ErrCreatorRequired
	}
	now := h.now()
	property := domainavailability.PropertyID(strings.TrimSpace(cmd.PropertyID))
	dr := daterange.FromDates(cmd.CheckIn, cmd.CheckOut)

	units := cmd.Terms.Units
	if units == 0 {
		units = 1
	}
	req := domainbooking.Request{
		ID:              cmd.CommandID,
		PropertyID:      property,
		GuestID:         cmd.GuestID,
		Range:           dr,
		Guests:          cmd.Guests,
		Units:           units,
		Contact:         cmd.Contact,
		SpecialRequests: strings.TrimSpace(cmd.SpecialRequests),
		RequestedAt:     now.UTC(),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var rec events.Recorder
	defer func() {
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), rec.Drain()); err != nil && h.Logger != nil {
			h.Logger.ErrorContext(ctx, "record booking events", "error", err, "property_id", property)
		}
	}()

	decision, err := h.Checker.Check(ctx, property, dr)
	if err != nil {
		return nil, err
	}
	if !decision.IsAvailable() {
		if decision.IsConflict() {
			rec.Record(domainavailability.ConflictDetectedEvent(property, dr, decision, false, now))
		}
		return nil, &availability.RejectedError{Decision: decision}
	}

	quote, err := h.Pricer.Price(dr, cmd.Terms)
	if err != nil {
		return nil, err
	}
	req.Quote = quote

	conf, err := h.Creator.CreateBooking(ctx, req)
	if err != nil {
		if errors.Is(err, policies.ErrRemoteConflict) {
			rec.Record(domainavailability.ConflictDetectedEvent(property, dr, remoteDecision(err), true, now))
			if h.Logger != nil {
				h.Logger.InfoContext(ctx, "booking service rejected range", "property_id", property, "range", dr.String())
			}
			h.invalidate(ctx, property)
		}
		return nil, err
	}
	h.invalidate(ctx, property)
	if conf.Status == "" {
		conf.Status = domainbooking.StatusPending
	}
	rec.Record(domainbooking.RequestedEvent(req, conf, now))

	result := &dto.BookingConfirmation{
		BookingID:  conf.BookingID,
		Status:     string(conf.Status),
		PropertyID: string(property),
		CheckIn:    daterange.Key(dr.CheckIn),
		CheckOut:   daterange.Key(dr.CheckOut),
		Quote:      dto.MapQuote(dr, quote),
	}
	if h.Receipts != nil {
		key, err := h.Receipts.Archive(ctx, req, conf)
		if err != nil {
			// Receipt failures do not fail the booking.
			if h.Logger != nil {
				h.Logger.WarnContext(ctx, "archive quote receipt", "error", err, "booking_id", conf.BookingID)
			}
		} else {
			result.ReceiptKey = key
		}
	}

	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "booking requested",
			"booking_id", conf.BookingID, "property_id", property, "guest_id", cmd.GuestID,
			"range", dr.String(), "total", quote.Total.String())
	}
	return result, nil
}

// remoteDecision recovers the first conflicting date the booking service
// reported, if any.
func remoteDecision(err error) domainavailability.Decision {
	var conflict *policies.ConflictError
	if !errors.As(err, &conflict) || len(conflict.ConflictsOn) == 0 {
		return domainavailability.Decision{}
	}
	date, perr := daterange.ParseDay(conflict.ConflictsOn[0])
	if perr != nil {
		return domainavailability.Decision{}
	}
	return domainavailability.Conflict(date, domainavailability.BookedInterval{})
}

// invalidate drops the cached snapshot so the next check sees the new state.
func (h *RequestBookingHandler) invalidate(ctx context.Context, property domainavailability.PropertyID) {
	if h.Snapshots == nil {
		return
	}
	if err := h.Snapshots.Invalidate(ctx, property); err != nil && h.Logger != nil {
		h.Logger.WarnContext(ctx, "invalidate availability snapshot", "error", err, "property_id", property)
	}
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[RequestBookingCommand, *dto.BookingConfirmation] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
var _ middleware.GuestScoped = RequestBookingCommand{}
