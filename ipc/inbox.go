package ipc

import (
	"sync"

	"gopkg.in/eapache/queue.v1"
)

// Inbox is the FIFO between the receive goroutine and the simulation thread.
// Push never blocks on the consumer and Drain never blocks when empty. With a
// positive capacity the oldest message is discarded to make room.
type Inbox struct {
	mu       sync.Mutex
	q        *queue.Queue
	capacity int
	dropped  uint64
}

// NewInbox returns an inbox; capacity <= 0 means unbounded.
func NewInbox(capacity int) *Inbox {
	return &Inbox{q: queue.New(), capacity: capacity}
}

func (b *Inbox) Push(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.capacity > 0 && b.q.Length() >= b.capacity {
		b.q.Remove()
		b.dropped++
	}
	b.q.Add(msg)
}

// TryPop returns the oldest message, if any.
func (b *Inbox) TryPop() (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.q.Length() == 0 {
		return Message{}, false
	}
	return b.q.Remove().(Message), true
}

// Drain removes up to max messages in arrival order; max <= 0 drains all.
func (b *Inbox) Drain(max int) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.q.Length()
	if max > 0 && n > max {
		n = max
	}
	if n == 0 {
		return nil
	}
	out := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, b.q.Remove().(Message))
	}
	return out
}

func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.q.Length()
}

// Dropped returns how many messages were discarded because the inbox was full.
func (b *Inbox) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
