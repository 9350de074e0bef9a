package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type task struct {
	ExecutionID string
}

func TestQueue_PublishConsume(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue[task](DefaultConfig())

	assert.NoError(t, queue.Publish(ctx, &task{ExecutionID: "exec-1"}))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "exec-1", message.T().ExecutionID)
	assert.NoError(t, message.Ack())

	// double ack is rejected
	assert.Error(t, message.Ack())
}

func TestQueue_ConsumeHonoursContext(t *testing.T) {
	queue := NewQueue[task](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_NackRetriesThenDeadLetters(t *testing.T) {
	ctx := context.Background()
	config := Config{MaxRetries: 2, RetryDelay: time.Millisecond, DeadLetter: true, QueueBuffer: 10}
	queue := NewQueue[task](config)

	assert.NoError(t, queue.Publish(ctx, &task{ExecutionID: "exec-1"}))

	failure := errors.New("boom")
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		consumeCtx, cancel := context.WithTimeout(ctx, time.Second)
		message, err := queue.Consume(consumeCtx)
		cancel()
		assert.NoError(t, err, "attempt %d", attempt)
		assert.NoError(t, message.Nack(failure))
	}

	assert.Equal(t, 1, queue.DLQSize())
	assert.Equal(t, 0, queue.Size())
}
