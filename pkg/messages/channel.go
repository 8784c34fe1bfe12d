package messages

import (
	"context"
	"log/slog"

	"github.com/audionodes/native/pkg/metrics"
)

// DefaultQueueSize is the capacity of the real-time queue.
const DefaultQueueSize = 1024

// Sink is the host side of the channel.
type Sink interface {
	Deliver(ctx context.Context, msg ReturnMessage, execThread bool) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg ReturnMessage, execThread bool) error

func (f SinkFunc) Deliver(ctx context.Context, msg ReturnMessage, execThread bool) error {
	return f(ctx, msg, execThread)
}

// Channel routes return messages to a Sink.
//
// Messages sent from the execution thread go through a bounded queue and are
// never delivered synchronously; Run drains the queue. Messages from the
// control context are delivered directly.
type Channel struct {
	sink    Sink
	queue   chan ReturnMessage
	logger  *slog.Logger
	metrics *metrics.Messages
}

// Option configures a Channel.
type Option func(*Channel)

// WithQueueSize sets the real-time queue capacity.
func WithQueueSize(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.queue = make(chan ReturnMessage, n)
		}
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// WithMetrics sets the collectors updated by the channel.
func WithMetrics(m *metrics.Messages) Option {
	return func(c *Channel) {
		c.metrics = m
	}
}

// NewChannel creates a channel delivering to sink.
func NewChannel(sink Sink, opts ...Option) *Channel {
	c := &Channel{
		sink:  sink,
		queue: make(chan ReturnMessage, DefaultQueueSize),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.metrics == nil {
		c.metrics = metrics.NewMessages(nil)
	}

	return c
}

// Send forwards msg toward the host and reports whether it was accepted.
// With execThread set the call never blocks: the message is queued, or
// dropped and counted when the queue is full. Without it, a failed delivery
// is reported as not accepted.
func (c *Channel) Send(msg ReturnMessage, execThread bool) bool {
	if execThread {
		select {
		case c.queue <- msg:
			return true
		default:
			c.metrics.Dropped.Inc()

			return false
		}
	}

	return c.deliver(context.Background(), msg, false)
}

// Run delivers queued messages until ctx is done, then delivers whatever is
// still queued.
func (c *Channel) Run(ctx context.Context) error {
	for {
		select {
		case msg := <-c.queue:
			c.deliver(ctx, msg, true)
		case <-ctx.Done():
			c.Flush(context.WithoutCancel(ctx))

			return nil
		}
	}
}

// Flush delivers every message queued at the time of the call.
func (c *Channel) Flush(ctx context.Context) {
	for {
		select {
		case msg := <-c.queue:
			c.deliver(ctx, msg, true)
		default:
			return
		}
	}
}

// Pending returns the number of queued real-time messages.
func (c *Channel) Pending() int {
	return len(c.queue)
}

func (c *Channel) deliver(ctx context.Context, msg ReturnMessage, execThread bool) bool {
	if err := c.sink.Deliver(ctx, msg, execThread); err != nil {
		c.metrics.Failed.Inc()
		c.logger.WarnContext(ctx, "Failed to deliver return message",
			"uid", msg.UID, "kind", msg.Kind, "error", err)

		return false
	}

	if execThread {
		c.metrics.DeliveredExec.Inc()
	} else {
		c.metrics.DeliveredControl.Inc()
	}

	return true
}
