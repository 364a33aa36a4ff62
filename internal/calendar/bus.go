package calendar

import (
	"context"
	"sync"
)

// MessageType enumerates the completion messages the auth flow recognizes.
type MessageType int

const (
	// MessageUnknown is any inbound message the subsystem does not
	// recognize. The auth flow ignores these without resolving.
	MessageUnknown MessageType = iota
	// MessageAuthSuccess signals the provider accepted the authorization.
	MessageAuthSuccess
	// MessageAuthError signals the authorization failed; Error carries the
	// provider's description.
	MessageAuthError
)

// Message is a completion signal delivered over the message channel from the
// OAuth callback context to the auth flow.
type Message struct {
	Type  MessageType `json:"type"`
	Error string      `json:"error,omitempty"`
}

// Bus carries completion messages between the callback handler and the auth
// flow coordinator. Subscribe returns a receive channel and an idempotent
// unsubscribe func; the channel is closed once unsubscribed.
type Bus interface {
	Publish(ctx context.Context, msg Message) error
	Subscribe(ctx context.Context) (<-chan Message, func(), error)
}

// MemoryBus is an in-process Bus for single-replica deployments and tests.
type MemoryBus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Message
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]chan Message)}
}

// Publish delivers msg to every live subscriber. Subscribers that are not
// draining fast enough have the message dropped rather than blocking the
// publisher.
func (b *MemoryBus) Publish(ctx context.Context, msg Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber.
func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan Message, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Message, 4)
	b.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, unsubscribe, nil
}

var _ Bus = (*MemoryBus)(nil)
