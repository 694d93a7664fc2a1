package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrDestinationRequired is returned when the topic/subject is empty.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrHandlerRequired is returned when Consume gets a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrClosed is returned by a client after Close.
	ErrClosed = errors.New("messaging: client closed")
)

// Messaging is a broker-agnostic client.
type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

// Publisher sends messages to a destination (topic or subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) error
}

// Consumer blocks delivering messages from source to handler until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one message. A non-nil error requests redelivery where
// the broker supports it.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to publish.
type OutgoingMessage struct {
	Body []byte
	// Key drives partitioning on Kafka and ordering on Pub/Sub.
	Key []byte
	// Headers are dropped by brokers without header support (NSQ).
	Headers map[string]string
}

// Message is a received message.
type Message struct {
	ID        string
	Topic     string
	Body      []byte
	Key       []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Header returns the header value for key, or "".
func (m Message) Header(key string) string {
	return m.Headers[key]
}

func checkPublish(ctx context.Context, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}
	return nil
}

func checkConsume(ctx context.Context, source string, handler Handler) error {
	if err := checkPublish(ctx, source); err != nil {
		return err
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	return nil
}
