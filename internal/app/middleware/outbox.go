package middleware

import (
	"context"
	"log/slog"

	"propertyhub/internal/app/commands"
	"propertyhub/internal/app/outbox"
)

// OutboxFlush flushes buffered events after every command, failed ones
// included, since rejections record events too. A flush failure is logged and
// does not change the command result: the booking service has already acted.
func OutboxFlush(box outbox.Outbox, logger *slog.Logger) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if ferr := box.Flush(ctx); ferr != nil && logger != nil {
				logger.ErrorContext(ctx, "outbox flush failed", "command", cmd.Key(), "error", ferr)
			}
			return res, err
		})
	}
}
