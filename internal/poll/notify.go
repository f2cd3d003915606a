package poll

import (
	"context"
	"fmt"
	"io"
)

// Notifier displays notifications produced by a poll.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// WriterNotifier prints each notification as a line.
type WriterNotifier struct {
	W io.Writer
}

// Notify implements Notifier.
func (w WriterNotifier) Notify(_ context.Context, n Notification) {
	if n.Body == "" {
		_, _ = fmt.Fprintf(w.W, "[%s] %s\n", n.Stream, n.Title)
		return
	}
	_, _ = fmt.Fprintf(w.W, "[%s] %s: %s\n", n.Stream, n.Title, n.Body)
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Notification) {}
