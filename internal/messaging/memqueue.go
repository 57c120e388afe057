package messaging

import "context"

const defaultMemQueueCapacity = 1024

// MemQueue is a channel-backed FIFO for single-process deployments and
// tests. Channel semantics give competing-consumer delivery: each enqueued
// id reaches exactly one poller.
type MemQueue struct {
	ch chan string
}

func NewMemQueue() *MemQueue {
	return NewMemQueueWithCapacity(defaultMemQueueCapacity)
}

func NewMemQueueWithCapacity(capacity int) *MemQueue {
	return &MemQueue{
		ch: make(chan string, capacity),
	}
}

// SendNewShipping appends the id to the queue, blocking only when the queue
// is at capacity.
func (q *MemQueue) SendNewShipping(ctx context.Context, shippingID string) error {
	select {
	case q.ch <- shippingID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PollShippings drains up to batchSize ids without waiting for more work to
// arrive; an empty queue yields an empty slice.
func (q *MemQueue) PollShippings(_ context.Context, batchSize int) ([]string, error) {
	ids := make([]string, 0, batchSize)

	for len(ids) < batchSize {
		select {
		case id := <-q.ch:
			ids = append(ids, id)
		default:
			return ids, nil
		}
	}

	return ids, nil
}
