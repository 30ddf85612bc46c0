package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	domainavailability "propertyhub/internal/domain/availability"
	"propertyhub/internal/domain/shared/daterange"
)

// activeStatuses are the booking rows that hold their dates.
var activeStatuses = []string{"pending", "confirmed"}

// IntervalSource reads the booking service's bookings table. check_in and
// check_out are DATE columns with checkout exclusive.
type IntervalSource struct {
	pool  *pgxpool.Pool
	table string
}

func NewIntervalSource(pool *pgxpool.Pool) *IntervalSource {
	return &IntervalSource{pool: pool, table: "public.bookings"}
}

func (s *IntervalSource) BookedIntervals(ctx context.Context, q domainavailability.Query) ([]domainavailability.BookedInterval, error) {
	query, args, err := buildIntervalQuery(s.table, q)
	if err != nil {
		return nil, fmt.Errorf("build booked intervals query failed: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query booked intervals failed: %w", err)
	}
	defer rows.Close()

	var out []domainavailability.BookedInterval
	for rows.Next() {
		var (
			id            string
			checkIn, done time.Time
		)
		if err := rows.Scan(&id, &checkIn, &done); err != nil {
			return nil, fmt.Errorf("scan booked interval failed: %w", err)
		}
		out = append(out, domainavailability.BookedInterval{ID: id, Range: daterange.FromDates(checkIn, done)})
	}
	return out, rows.Err()
}

// buildIntervalQuery selects bookings overlapping the half-open horizon.
func buildIntervalQuery(table string, q domainavailability.Query) (string, []any, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select("id::text", "check_in", "check_out").
		From(table).
		Where(squirrel.Eq{"property_id": string(q.PropertyID)}).
		Where(squirrel.Eq{"status": activeStatuses}).
		Where(squirrel.Lt{"check_in": q.Horizon.CheckOut}).
		Where(squirrel.Gt{"check_out": q.Horizon.CheckIn}).
		OrderBy("check_in ASC").
		ToSql()
}
