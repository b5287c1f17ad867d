// Package messaging defines the durable queue contract between the ingestor
// and the processor. Services depend on these interfaces rather than a
// specific broker implementation.
package messaging

import (
	"context"
	"time"
)

// Message is a single queue delivery.
type Message struct {
	// Subject is the queue subject the message was published to.
	Subject string

	// Data is the raw message payload (a JSON-serialized envelope).
	Data []byte

	// Metadata contains optional key-value pairs from message headers.
	Metadata map[string]string

	// Deliveries is how many times the broker has delivered this message,
	// starting at 1. Redeliveries indicate a prior unacknowledged attempt.
	Deliveries uint64

	// Timestamp is when the message was received by the consumer.
	Timestamp time.Time
}

// MessageHandler processes one delivery. Returning nil acknowledges the
// message; returning an error leaves it unacknowledged so the broker
// redelivers it. Logical processing failures must be recorded on the
// envelope and reported as nil here.
type MessageHandler func(ctx context.Context, msg *Message) error

// Publisher publishes payloads to the durable queue.
type Publisher interface {
	// Publish sends data to the subject and does not return until the
	// broker has accepted the message into durable storage.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close releases any resources held by the publisher.
	Close() error
}

// Consumer pulls messages from the durable queue under bounded concurrency.
type Consumer interface {
	// Consume starts the pull loop, invoking handler for each delivery.
	// It returns a stop function that halts consumption.
	Consume(ctx context.Context, handler MessageHandler) (stop func(), err error)
}

// Queue combines the capabilities a pipeline service needs from the broker.
type Queue interface {
	Publisher
	Consumer

	// IsConnected reports whether the broker connection is up.
	IsConnected() bool
}
