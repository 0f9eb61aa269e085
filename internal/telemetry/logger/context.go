package logger

import "context"

type ctxKey int

const (
	loggerKey ctxKey = iota
	commandKey
	callIDKey
)

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithCommand records the CLI command being executed.
func WithCommand(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, commandKey, name)
}

// CommandFromContext returns the command recorded by WithCommand.
func CommandFromContext(ctx context.Context) string {
	name, _ := ctx.Value(commandKey).(string)
	return name
}

// WithCallID records the ID of the API call in flight. The same ID is
// sent to the server as X-Request-ID.
func WithCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callIDKey, id)
}

// CallIDFromContext returns the ID recorded by WithCallID.
func CallIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey).(string)
	return id
}

// L returns the context logger tagged with the command and call ID.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if name := CommandFromContext(ctx); name != "" {
		l = l.With("cmd", name)
	}
	if id := CallIDFromContext(ctx); id != "" {
		l = l.With("call_id", id)
	}
	return l
}
