package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext is cancelled on the first SIGINT or SIGTERM. A second
// signal falls through to the default handler and kills the process.
func SignalContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// Fatal logs message with err and any extra attributes, then exits 1.
func Fatal(message string, err error, args ...any) {
	if err != nil {
		args = append(args, "err", err)
	}
	slog.Error(message, args...)
	os.Exit(1)
}
