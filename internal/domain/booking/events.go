package booking

import (
	"time"

	"propertyhub/internal/domain/shared/daterange"
	"propertyhub/internal/domain/shared/money"
)

type Requested struct {
	BookingID  string              `json:"booking_id"`
	RequestID  string              `json:"request_id"`
	PropertyID string              `json:"property_id"`
	GuestID    string              `json:"guest_id"`
	Range      daterange.DateRange `json:"range"`
	Guests     int                 `json:"guests"`
	Units      int                 `json:"units"`
	Total      money.Money         `json:"total"`
	Status     Status              `json:"status"`
	At         time.Time           `json:"at"`
}

func (e Requested) EventName() string     { return "booking.requested" }
func (e Requested) AggregateID() string   { return e.PropertyID }
func (e Requested) OccurredAt() time.Time { return e.At }

func RequestedEvent(req Request, conf Confirmation, at time.Time) Requested {
	return Requested{
		BookingID:  conf.BookingID,
		RequestID:  req.ID,
		PropertyID: string(req.PropertyID),
		GuestID:    req.GuestID,
		Range:      req.Range,
		Guests:     req.Guests,
		Units:      req.Units,
		Total:      req.Quote.Total,
		Status:     conf.Status,
		At:         at.UTC(),
	}
}
