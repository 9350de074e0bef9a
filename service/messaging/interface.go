package messaging

import (
	"context"
)

// Queue is an abstract message queue for any payload type. The dispatcher
// uses it to move execution requests off the request path.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue, blocking until one
	// is available or the context is cancelled
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message; depending on queue
	// configuration the message is retried or dead-lettered
	Nack(err error) error
}
