package messaging

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process broker. Every consumer of a topic receives every
// message published after it subscribed; handler errors are dropped.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string][]chan Message
	seq    uint64
	closed bool
}

// NewMemory returns an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{subs: map[string][]chan Message{}}
}

// Close stops accepting messages.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if err := checkPublish(ctx, destination); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.seq++
	out := Message{
		ID:        strconv.FormatUint(m.seq, 10),
		Topic:     destination,
		Body:      append([]byte(nil), msg.Body...),
		Key:       msg.Key,
		Headers:   msg.Headers,
		Timestamp: time.Now(),
	}
	subs := append([]chan Message(nil), m.subs[destination]...)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- out:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Consume delivers messages for source until ctx is done.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := checkConsume(ctx, source, handler); err != nil {
		return err
	}
	co := newConsumeOptions(opts...)

	ch := make(chan Message, 64)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.subs[source] = append(m.subs[source], ch)
	m.mu.Unlock()

	defer m.unsubscribe(source, ch)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case msg := <-ch:
					_ = safeHandle(ctx, DriverMemory, handler, msg)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()

	return ctx.Err()
}

func (m *Memory) unsubscribe(source string, ch chan Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subs[source]
	for i, c := range subs {
		if c == ch {
			m.subs[source] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Subscribers reports how many consumers are attached to topic.
func (m *Memory) Subscribers(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[topic])
}
