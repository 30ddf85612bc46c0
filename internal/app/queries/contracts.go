package queries

import (
	"context"
	"errors"
	"fmt"
)

// Query is a read-only request such as a booked-dates lookup or a quote.
// Key names the handler registered for it.
type Query interface {
	Key() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// HandlerFunc lets a plain function answer a query.
type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

// Bus answers availability and pricing queries. Implementations never mutate
// booking state.
type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("queries: no handler registered for query")
	ErrInvalidQuery    = errors.New("queries: query type does not match registered handler")
	ErrResultType      = errors.New("queries: unexpected result type")
	ErrNilBus          = errors.New("queries: query bus not configured")
)

// Ask sends query through bus and asserts the result to R. A nil result
// yields the zero R.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s answered with %T", ErrResultType, query.Key(), res)
	}
	return value, nil
}
