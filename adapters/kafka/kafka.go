// Package kafka bridges Kafka topics to flowrt pipelines.
//
// A Subscriber feeds consumed records into the head of a pipeline; a
// Publisher drains a pipeline's tail back into a topic. Payloads cross
// the bridge as raw []byte with no format opinion.
//
// Unlike NATS subjects, Kafka topics carry no wildcard semantics and
// message ordering is guaranteed only within a partition.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mvandenburg/flowrt"
)

// SubscriberConfig configures the Kafka subscriber.
type SubscriberConfig struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string

	// Topics is the list of topics to subscribe to.
	// Kafka doesn't support wildcards; exact topics must be given.
	Topics []string

	// ConsumerGroup is the consumer group ID.
	// All consumers in the same group share the partitions of subscribed topics.
	ConsumerGroup string

	// StartOffset controls where to start reading when no committed offset exists.
	// Use kafka.FirstOffset (-2) or kafka.LastOffset (-1).
	// Default is kafka.LastOffset (only new messages).
	StartOffset int64

	// CommitInterval is how often to auto-commit offsets.
	// Default is 1 second.
	CommitInterval time.Duration

	// MaxWait is the maximum time to wait for new messages.
	// Default is 1 second.
	MaxWait time.Duration

	// Logger for operational logging. If nil, uses slog.Default().
	Logger *slog.Logger
}

func (c SubscriberConfig) applyDefaults() SubscriberConfig {
	if c.StartOffset == 0 {
		c.StartOffset = kafka.LastOffset
	}
	if c.CommitInterval <= 0 {
		c.CommitInterval = time.Second
	}
	if c.MaxWait <= 0 {
		c.MaxWait = time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Subscriber feeds Kafka records into a flowrt pipeline head. It manages
// consumer group membership, partition assignment, and offset commits.
type Subscriber struct {
	config SubscriberConfig
	reader *kafka.Reader
	mu     sync.Mutex
}

// NewSubscriber creates a new Kafka subscriber.
func NewSubscriber(config SubscriberConfig) *Subscriber {
	return &Subscriber{
		config: config.applyDefaults(),
	}
}

// Subscribe starts consuming and returns a receiver observing the value
// of every record fetched from the configured topics. Offsets commit
// automatically after a record has been accepted into the pipeline. The
// pipeline head closes (and drains downstream) when ctx is canceled.
func (s *Subscriber) Subscribe(ctx context.Context) (flowrt.Receiver[[]byte], error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        s.config.Brokers,
		GroupID:        s.config.ConsumerGroup,
		GroupTopics:    s.config.Topics,
		StartOffset:    s.config.StartOffset,
		CommitInterval: s.config.CommitInterval,
		MaxWait:        s.config.MaxWait,
	})

	s.mu.Lock()
	s.reader = reader
	s.mu.Unlock()

	s.config.Logger.Info("Kafka subscription started",
		"topics", s.config.Topics,
		"group", s.config.ConsumerGroup,
		"brokers", s.config.Brokers,
	)

	send, recv := flowrt.Channel[[]byte]()

	go func() {
		defer send.Close()
		defer func() {
			s.mu.Lock()
			if s.reader != nil {
				s.reader.Close()
				s.reader = nil
			}
			s.mu.Unlock()
		}()

		for {
			kafkaMsg, err := reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					s.config.Logger.Debug("Context canceled, closing subscription")
					return
				}
				s.config.Logger.Error("Failed to fetch message", "error", err)
				continue
			}

			send.Send(kafkaMsg.Value)

			if err := reader.CommitMessages(ctx, kafkaMsg); err != nil {
				s.config.Logger.Error("Failed to commit offset",
					"topic", kafkaMsg.Topic,
					"partition", kafkaMsg.Partition,
					"offset", kafkaMsg.Offset,
					"error", err,
				)
			}
		}
	}()

	return recv, nil
}

// Close closes the Kafka consumer.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reader != nil {
		err := s.reader.Close()
		s.reader = nil
		return err
	}
	return nil
}

// PublisherConfig configures the Kafka publisher.
type PublisherConfig struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string

	// Topic is the topic every drained payload is written to.
	Topic string

	// BatchSize is the number of messages to batch before sending.
	// Default is 100.
	BatchSize int

	// BatchTimeout is the maximum time to wait for a full batch.
	// Default is 1 second.
	BatchTimeout time.Duration

	// RequiredAcks controls producer acknowledgment.
	// Use kafka.RequireOne (1) or kafka.RequireAll (-1).
	// Default is kafka.RequireAll for durability. kafka.RequireNone (0) is
	// the zero value and is replaced by the default, so it cannot be
	// selected here.
	RequiredAcks kafka.RequiredAcks

	// Logger for operational logging. If nil, uses slog.Default().
	Logger *slog.Logger
}

func (c PublisherConfig) applyDefaults() PublisherConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = time.Second
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = kafka.RequireAll
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Publisher republishes values drained from a pipeline tail to a Kafka
// topic.
type Publisher struct {
	config PublisherConfig
	writer *kafka.Writer
	mu     sync.Mutex
}

// NewPublisher creates a new Kafka publisher.
func NewPublisher(config PublisherConfig) *Publisher {
	config = config.applyDefaults()
	return &Publisher{
		config: config,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(config.Brokers...),
			Topic:        config.Topic,
			BatchSize:    config.BatchSize,
			BatchTimeout: config.BatchTimeout,
			RequiredAcks: config.RequiredAcks,
		},
	}
}

// Publish writes a single payload to the configured topic.
func (p *Publisher) Publish(ctx context.Context, data []byte) error {
	p.mu.Lock()
	writer := p.writer
	p.mu.Unlock()

	if writer == nil {
		return fmt.Errorf("kafka publisher closed")
	}

	if err := writer.WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
		return fmt.Errorf("failed to write to %s: %w", p.config.Topic, err)
	}
	return nil
}

// Drain attaches a terminal stage to r that writes every payload to the
// configured topic. Write failures are logged and the payload is
// dropped; the pipeline keeps flowing.
func (p *Publisher) Drain(ctx context.Context, r flowrt.Receiver[[]byte]) error {
	return flowrt.Sink(r, func(data []byte) {
		if err := p.Publish(ctx, data); err != nil {
			p.config.Logger.Error("Failed to publish",
				"topic", p.config.Topic,
				"error", err,
			)
			return
		}
		p.config.Logger.Debug("Published", "topic", p.config.Topic, "bytes", len(data))
	})
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer != nil {
		err := p.writer.Close()
		p.writer = nil
		return err
	}
	return nil
}
