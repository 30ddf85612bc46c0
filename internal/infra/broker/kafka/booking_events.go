package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"propertyhub/internal/app/commands"
	availabilityhandlers "propertyhub/internal/app/handlers/availability"
)

var errMissingProperty = errors.New("kafka: booking event without property id")

type cloudEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

type bookingEventData struct {
	PropertyID    string `json:"property_id"`
	ListingID     string `json:"listing_id"`
	PropertyCamel string `json:"propertyId"`
}

// Inbox deduplicates redelivered events by CloudEvents id.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// BookingEventsHandler turns booking lifecycle events into snapshot
// invalidations so the next availability read refetches booked dates.
type BookingEventsHandler struct {
	Bus    commands.Bus
	Inbox  Inbox
	Logger *slog.Logger
}

func (h *BookingEventsHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	evt, property, err := parseBookingEvent(msg.Value)
	if err != nil {
		// Undecodable messages are acknowledged and dropped.
		h.logger().Warn("booking event dropped", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if property == "" {
		return nil
	}
	if h.Inbox != nil && evt.ID != "" {
		seen, err := h.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	_, err = commands.Dispatch[availabilityhandlers.InvalidateSnapshotCommand, struct{}](ctx, h.Bus, availabilityhandlers.InvalidateSnapshotCommand{
		PropertyID: property,
		Reason:     evt.Type,
	})
	if err != nil && h.Inbox != nil && evt.ID != "" {
		if ferr := h.Inbox.Forget(ctx, evt.ID); ferr != nil {
			h.logger().Warn("inbox forget failed", "event_id", evt.ID, "error", ferr)
		}
	}
	return err
}

func (h *BookingEventsHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// parseBookingEvent returns the envelope and affected property. A non-booking
// event yields an empty property and no error.
func parseBookingEvent(value []byte) (cloudEvent, string, error) {
	var evt cloudEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		return cloudEvent{}, "", err
	}
	if !strings.HasPrefix(evt.Type, "booking.") {
		return evt, "", nil
	}
	var data bookingEventData
	if len(evt.Data) > 0 {
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			return evt, "", err
		}
	}
	for _, candidate := range []string{data.PropertyID, data.ListingID, data.PropertyCamel} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return evt, candidate, nil
		}
	}
	return evt, "", errMissingProperty
}
