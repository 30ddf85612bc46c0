package middleware

import (
	"context"
	"errors"

	"propertyhub/internal/app/commands"
	"propertyhub/internal/app/queries"
)

var ErrUnauthenticated = errors.New("middleware: authenticated guest required")

// GuestScoped messages act on behalf of a signed-in guest.
type GuestScoped interface {
	ActingGuest() string
}

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// GuestAuthorizer rejects guest-scoped messages that carry no guest id.
// Availability and quote queries are anonymous and pass through.
type GuestAuthorizer struct{}

func (GuestAuthorizer) Authorize(_ context.Context, message any) error {
	scoped, ok := message.(GuestScoped)
	if !ok {
		return nil
	}
	if scoped.ActingGuest() == "" {
		return ErrUnauthenticated
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}
