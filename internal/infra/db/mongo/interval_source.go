package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	domainavailability "propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/shared/daterange"
)

// BookingsCollection is where the booking service keeps its aggregates.
const BookingsCollection = "agg_booking"

// inactiveStates never block dates.
var inactiveStates = []string{"CANCELLED", "DECLINED", "EXPIRED"}

// IntervalSource reads booked intervals straight from the booking service's
// collection. Ranges are stored as unix milliseconds.
type IntervalSource struct {
	col *mongo.Collection
}

// NewIntervalSource prefers secondaries. Other collections keep the client's
// primary default.
func NewIntervalSource(db *mongo.Database) *IntervalSource {
	opts := options.Collection().SetReadPreference(readpref.SecondaryPreferred())
	return &IntervalSource{col: db.Collection(BookingsCollection, opts)}
}

type bookingRangeDocument struct {
	ID    string `bson:"_id"`
	Range struct {
		CheckIn  int64 `bson:"check_in"`
		CheckOut int64 `bson:"check_out"`
	} `bson:"range"`
}

func (s *IntervalSource) BookedIntervals(ctx context.Context, q domainavailability.Query) ([]domainavailability.BookedInterval, error) {
	filter := intervalFilter(q)
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "range": 1}).
		SetSort(bson.D{{Key: "range.check_in", Value: 1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find booked intervals: %w", err)
	}
	defer cur.Close(ctx)

	var out []domainavailability.BookedInterval
	for cur.Next(ctx) {
		var doc bookingRangeDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode booking: %w", err)
		}
		out = append(out, doc.interval())
	}
	return out, cur.Err()
}

func intervalFilter(q domainavailability.Query) bson.M {
	return bson.M{
		"listing_id":      string(q.PropertyID),
		"state":           bson.M{"$nin": inactiveStates},
		"range.check_in":  bson.M{"$lt": q.Horizon.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": q.Horizon.CheckIn.UnixMilli()},
	}
}

func (d bookingRangeDocument) interval() domainavailability.BookedInterval {
	return domainavailability.BookedInterval{
		ID: d.ID,
		Range: daterange.FromDates(
			time.UnixMilli(d.Range.CheckIn).UTC(),
			time.UnixMilli(d.Range.CheckOut).UTC(),
		),
	}
}

// EnsureIndexes creates the lookup index used by BookedIntervals.
func (s *IntervalSource) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "range.check_in", Value: 1}},
	})
	return err
}
