package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/telhawk-systems/eventpipe/common/messaging"
)

// JetStreamClient extends Client with JetStream persistence. It implements
// messaging.Queue: publishes survive broker restart, and the consumer pulls
// with explicit acknowledgment.
type JetStreamClient struct {
	*Client
	js jetstream.JetStream
}

// StreamConfig defines the durable stream backing the event queue.
type StreamConfig struct {
	// Name is the stream name.
	Name string

	// Subjects are the subjects this stream captures.
	Subjects []string

	// MaxAge is the maximum age of messages in the stream.
	MaxAge time.Duration

	// MaxBytes is the maximum total size of the stream.
	MaxBytes int64

	// MaxMsgs is the maximum number of messages in the stream.
	MaxMsgs int64
}

// ConsumerConfig defines the durable consumer shared by processor instances.
type ConsumerConfig struct {
	// Name is the durable consumer name.
	Name string

	// FilterSubject filters which messages this consumer receives.
	FilterSubject string

	// AckWait is the time to wait for acknowledgment before redelivery.
	AckWait time.Duration

	// MaxAckPending bounds unacknowledged in-flight messages. The pipeline
	// runs with 1: a slow processor must not be handed more work.
	MaxAckPending int
}

// EventQueueStream returns the stream configuration for the event queue.
// WorkQueuePolicy removes each message once its consumer acknowledges it;
// FileStorage survives broker restart.
func EventQueueStream() StreamConfig {
	return StreamConfig{
		Name:     messaging.StreamEventQueue,
		Subjects: []string{messaging.SubjectEventQueue},
		MaxAge:   24 * time.Hour,
		MaxBytes: 1024 * 1024 * 1024, // 1GB
		MaxMsgs:  1000000,
	}
}

// EventQueueConsumer returns the durable consumer configuration for the
// processor. There is deliberately no delivery cap: an unprocessable message
// is redelivered indefinitely, which is the documented default in the
// absence of a dead-letter policy.
func EventQueueConsumer() ConsumerConfig {
	return ConsumerConfig{
		Name:          messaging.ConsumerEventProcessor,
		FilterSubject: messaging.SubjectEventQueue,
		AckWait:       30 * time.Second,
		MaxAckPending: 1,
	}
}

// NewJetStreamClient creates a JetStream-enabled client.
func NewJetStreamClient(cfg Config) (*JetStreamClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(client.conn)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &JetStreamClient{
		Client: client,
		js:     js,
	}, nil
}

// EnsureEventQueue declares the durable stream and consumer idempotently.
// It must be called before the first publish or consume.
func (c *JetStreamClient) EnsureEventQueue(ctx context.Context) error {
	streamCfg := EventQueueStream()
	stream, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamCfg.Name,
		Subjects:  streamCfg.Subjects,
		MaxAge:    streamCfg.MaxAge,
		MaxBytes:  streamCfg.MaxBytes,
		MaxMsgs:   streamCfg.MaxMsgs,
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update stream %s: %w", streamCfg.Name, err)
	}

	consCfg := EventQueueConsumer()
	_, err = stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          consCfg.Name,
		Durable:       consCfg.Name,
		FilterSubject: consCfg.FilterSubject,
		AckWait:       consCfg.AckWait,
		MaxAckPending: consCfg.MaxAckPending,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update consumer %s: %w", consCfg.Name, err)
	}

	return nil
}

// Publish sends a message to the stream and waits for the broker's storage
// acknowledgment. A returned error means the message was not accepted for
// async processing and the caller must surface the failure.
func (c *JetStreamClient) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := c.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("jetstream publish to %s: %w", subject, err)
	}
	return nil
}

// Consume starts the pull loop on the durable consumer. Each message is
// handed to handler; a nil return acknowledges it, an error return NAKs it
// so the broker redelivers after a delay. Returns a stop function.
func (c *JetStreamClient) Consume(ctx context.Context, handler messaging.MessageHandler) (func(), error) {
	stream, err := c.js.Stream(ctx, messaging.StreamEventQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream %s: %w", messaging.StreamEventQueue, err)
	}

	consumer, err := stream.Consumer(ctx, messaging.ConsumerEventProcessor)
	if err != nil {
		return nil, fmt.Errorf("failed to get consumer %s: %w", messaging.ConsumerEventProcessor, err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		m := &messaging.Message{
			Subject:   msg.Subject(),
			Data:      msg.Data(),
			Timestamp: time.Now(),
		}

		if meta, err := msg.Metadata(); err == nil {
			m.Deliveries = meta.NumDelivered
		}
		if headers := msg.Headers(); headers != nil {
			m.Metadata = make(map[string]string)
			for k := range headers {
				m.Metadata[k] = headers.Get(k)
			}
		}

		if err := handler(consumeCtx, m); err != nil {
			// Leave unacknowledged; the broker redelivers after the delay.
			_ = msg.NakWithDelay(5 * time.Second)
			return
		}

		_ = msg.Ack()
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	return func() {
		cancel()
		cons.Stop()
	}, nil
}
