// Package nats bridges NATS subjects to flowrt pipelines.
//
// A Subscriber feeds broker deliveries into the head of a pipeline; a
// Publisher drains a pipeline's tail back into a subject. Payloads cross
// the bridge as raw []byte with no format opinion.
//
// NATS subjects support hierarchical wildcards ("orders.*", "orders.>"),
// which is why the subscriber takes a subject string rather than a
// broker-neutral topic abstraction.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mvandenburg/flowrt"
)

// SubscriberConfig configures the NATS subscriber.
type SubscriberConfig struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222").
	URL string

	// Subject is the NATS subject to subscribe to.
	// Supports wildcards: "*" (single token), ">" (multiple tokens).
	Subject string

	// Queue is the optional queue group name for load balancing.
	// When set, only one subscriber in the queue group receives each message.
	Queue string

	// BufferSize is the channel buffer size for received messages.
	// Default is 256.
	BufferSize int

	// ConnectTimeout is the timeout for initial connection.
	// Default is 5 seconds.
	ConnectTimeout time.Duration

	// Logger for operational logging. If nil, uses slog.Default().
	Logger *slog.Logger
}

func (c SubscriberConfig) applyDefaults() SubscriberConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = 256
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Subscriber feeds NATS deliveries into a flowrt pipeline head.
type Subscriber struct {
	config SubscriberConfig
	conn   *nats.Conn
	mu     sync.Mutex
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(config SubscriberConfig) *Subscriber {
	return &Subscriber{
		config: config.applyDefaults(),
	}
}

// Subscribe connects to the broker and returns a receiver observing the
// payload of every delivery on the configured subject. The pipeline head
// closes (and drains downstream) when ctx is canceled or the connection
// is lost.
func (s *Subscriber) Subscribe(ctx context.Context) (flowrt.Receiver[[]byte], error) {
	conn, err := nats.Connect(
		s.config.URL,
		nats.Timeout(s.config.ConnectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				s.config.Logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			s.config.Logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return flowrt.Receiver[[]byte]{}, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	msgCh := make(chan *nats.Msg, s.config.BufferSize)

	var sub *nats.Subscription
	if s.config.Queue != "" {
		sub, err = conn.QueueSubscribeSyncWithChan(s.config.Subject, s.config.Queue, msgCh)
	} else {
		sub, err = conn.ChanSubscribe(s.config.Subject, msgCh)
	}
	if err != nil {
		conn.Close()
		return flowrt.Receiver[[]byte]{}, fmt.Errorf("failed to subscribe to %s: %w", s.config.Subject, err)
	}

	s.config.Logger.Info("NATS subscription started",
		"subject", s.config.Subject,
		"queue", s.config.Queue,
	)

	send, recv := flowrt.Channel[[]byte]()

	go func() {
		defer send.Close()
		defer sub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				s.config.Logger.Debug("Context canceled, closing subscription")
				return

			case natsMsg, ok := <-msgCh:
				if !ok {
					s.config.Logger.Debug("NATS message channel closed")
					return
				}
				send.Send(natsMsg.Data)
			}
		}
	}()

	return recv, nil
}

// Close closes the NATS connection.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	return nil
}

// PublisherConfig configures the NATS publisher.
type PublisherConfig struct {
	// URL is the NATS server URL.
	URL string

	// Subject is the subject every drained payload is published to.
	Subject string

	// ConnectTimeout is the timeout for initial connection.
	// Default is 5 seconds.
	ConnectTimeout time.Duration

	// FlushTimeout is the timeout for flushing pending messages.
	// Default is 1 second.
	FlushTimeout time.Duration

	// Logger for operational logging. If nil, uses slog.Default().
	Logger *slog.Logger
}

func (c PublisherConfig) applyDefaults() PublisherConfig {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Publisher republishes values drained from a pipeline tail to a NATS
// subject.
type Publisher struct {
	config PublisherConfig
	conn   *nats.Conn
	mu     sync.Mutex
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(config PublisherConfig) *Publisher {
	return &Publisher{
		config: config.applyDefaults(),
	}
}

// Connect establishes the NATS connection.
func (p *Publisher) Connect(ctx context.Context) error {
	conn, err := nats.Connect(
		p.config.URL,
		nats.Timeout(p.config.ConnectTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	return nil
}

// Publish publishes a single payload to the configured subject.
func (p *Publisher) Publish(data []byte) error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("not connected to NATS")
	}

	if err := conn.Publish(p.config.Subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.config.Subject, err)
	}

	return nil
}

// Drain attaches a terminal stage to r that republishes every payload to
// the configured subject. Publish failures are logged and the payload is
// dropped; the pipeline keeps flowing.
func (p *Publisher) Drain(r flowrt.Receiver[[]byte]) error {
	return flowrt.Sink(r, func(data []byte) {
		if err := p.Publish(data); err != nil {
			p.config.Logger.Error("Failed to publish",
				"subject", p.config.Subject,
				"error", err,
			)
			return
		}
		p.config.Logger.Debug("Published", "subject", p.config.Subject, "bytes", len(data))
	})
}

// Flush blocks until pending published messages have been processed by
// the server or the configured flush timeout elapses.
func (p *Publisher) Flush() error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("not connected to NATS")
	}
	if err := conn.FlushTimeout(p.config.FlushTimeout); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	return nil
}
