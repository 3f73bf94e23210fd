package event

import "context"

// Queue carries messages from every producer goroutine to the single
// dispatcher.
type Queue struct {
	ch chan Message
}

// NewQueue creates a queue buffering up to size messages.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Message, size)}
}

// Post enqueues m, blocking while the queue is full.
func (q *Queue) Post(m Message) {
	q.ch <- m
}

// PostContext enqueues m unless ctx ends first.
func (q *Queue) PostContext(ctx context.Context, m Message) error {
	select {
	case q.ch <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// C returns the receive side of the queue.
func (q *Queue) C() <-chan Message { return q.ch }

// TryPost enqueues m only if there is room, and reports whether it did.
func (q *Queue) TryPost(m Message) bool {
	select {
	case q.ch <- m:
		return true
	default:
		return false
	}
}
