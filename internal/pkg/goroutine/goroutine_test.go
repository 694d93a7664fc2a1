package goroutine

import (
	"context"
	"errors"
	"testing"
)

func TestManager_WaitJoinsErrors(t *testing.T) {
	m := NewManager(4)
	errBoom := errors.New("boom")

	m.Go(context.Background(), func(context.Context) error { return errBoom })
	m.Go(context.Background(), func(context.Context) error { return nil })

	err := m.Wait()
	if !errors.Is(err, errBoom) {
		t.Fatalf("Wait() error = %v, want %v", err, errBoom)
	}
}

func TestManager_RecoversPanic(t *testing.T) {
	m := NewManager(1)

	m.Go(context.Background(), func(context.Context) error { panic("kaboom") })

	if err := m.Wait(); !errors.Is(err, ErrPanicked) {
		t.Fatalf("Wait() error = %v, want ErrPanicked", err)
	}
}

func TestManager_LimitAndClosed(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})

	if !m.Go(context.Background(), func(context.Context) error {
		close(started)
		<-release
		return nil
	}) {
		t.Fatalf("first task should be scheduled")
	}
	<-started

	if m.Go(context.Background(), func(context.Context) error { return nil }) {
		t.Fatalf("second task should be rejected while the slot is taken")
	}

	close(release)
	if err := m.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if m.Go(context.Background(), func(context.Context) error { return nil }) {
		t.Fatalf("closed manager should reject work")
	}
	if got := m.Rejected(); got != 2 {
		t.Fatalf("Rejected() = %d, want 2", got)
	}
}

func TestManager_Nil(t *testing.T) {
	var m *Manager
	if m.Go(context.Background(), func(context.Context) error { return nil }) {
		t.Fatalf("nil manager should not schedule")
	}
	if err := m.Wait(); err != nil {
		t.Fatalf("nil Wait() = %v", err)
	}
}
