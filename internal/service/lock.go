package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SessionLocker serializes turns on one session. The returned func releases
// the lock.
type SessionLocker interface {
	Acquire(ctx context.Context, sessionID uuid.UUID) (func(), error)
}

// LocalLocker is an in-process SessionLocker for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sessionSlot
}

type sessionSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates an empty keyed lock.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[uuid.UUID]*sessionSlot)}
}

// Acquire blocks until the session is free or ctx is done.
func (l *LocalLocker) Acquire(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	l.mu.Lock()
	slot, ok := l.locks[sessionID]
	if !ok {
		slot = &sessionSlot{ch: make(chan struct{}, 1)}
		l.locks[sessionID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.forget(sessionID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.forget(sessionID, slot)
		})
	}, nil
}

// Len reports how many sessions currently have holders or waiters.
func (l *LocalLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *LocalLocker) forget(sessionID uuid.UUID, slot *sessionSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.locks, sessionID)
	}
}
