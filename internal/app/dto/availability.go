package dto

import (
	domainavailability "propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/shared/daterange"
)

// BookedDates is the flattened calendar used to grey out dates.
type BookedDates struct {
	PropertyID string   `json:"property_id"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Dates      []string `json:"dates"`
}

func MapBookedDates(property domainavailability.PropertyID, horizon daterange.DateRange, idx *domainavailability.Index) BookedDates {
	dates := idx.Dates()
	if dates == nil {
		dates = []string{}
	}
	return BookedDates{
		PropertyID: string(property),
		From:       daterange.Key(horizon.CheckIn),
		To:         daterange.Key(horizon.CheckOut),
		Dates:      dates,
	}
}

type AvailabilityDecision struct {
	Available    bool   `json:"available"`
	Kind         string `json:"kind"`
	ConflictDate string `json:"conflict_date,omitempty"`
	BlockingID   string `json:"blocking_booking_id,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func MapDecision(d domainavailability.Decision) AvailabilityDecision {
	out := AvailabilityDecision{
		Available: d.IsAvailable(),
		Kind:      string(d.Kind),
		Reason:    string(d.Reason),
	}
	if d.IsConflict() {
		out.ConflictDate = daterange.Key(d.ConflictDate)
		out.BlockingID = d.Interval.ID
	}
	return out
}
