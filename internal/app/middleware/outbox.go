package middleware

import (
	"context"

	"stayhub/internal/app/commands"
)

// OutboxFlusher is implemented by outbox stores that buffer records until the
// command completes. Stores that write durably on Add use a no-op Flush.
type OutboxFlusher interface {
	Flush(ctx context.Context) error
}

func OutboxFlush(box OutboxFlusher) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
