// Package memory guarda los intentos fallidos de login en el proceso.
// Sirve para una sola instancia; con varias réplicas usar el store de Redis.
package memory

import (
	"context"
	"sync"
	"time"

	"animal-rescue/internal/ports/lockout"
)

type entry struct {
	failed      int
	firstFailAt time.Time
	lockedUntil *time.Time
	window      time.Duration
}

// expired: la ventana pasó y no hay bloqueo vigente.
func (e entry) expired(now time.Time) bool {
	if e.lockedUntil != nil && now.Before(*e.lockedUntil) {
		return false
	}
	return now.Sub(e.firstFailAt) > e.window
}

type Store struct {
	mu        sync.Mutex
	byID      map[string]entry
	lastSweep time.Time
}

func NewStore() *Store {
	return &Store{byID: map[string]entry{}}
}

func (s *Store) Get(_ context.Context, key string) (lockout.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[key]
	if !ok {
		return lockout.State{}, nil
	}
	return toState(e), nil
}

// RecordFailure cuenta fallos dentro de window; al llegar a threshold
// bloquea por window desde now.
func (s *Store) RecordFailure(_ context.Context, key string, now time.Time, threshold int, window time.Duration) (lockout.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(now, window)

	e := s.byID[key]
	if e.failed == 0 || now.Sub(e.firstFailAt) > window {
		e = entry{firstFailAt: now, window: window}
	}
	e.failed++

	if e.failed >= threshold {
		until := now.Add(window)
		e.lockedUntil = &until
	}
	s.byID[key] = e
	return toState(e), nil
}

// sweep borra las entradas vencidas, como mucho una vez por window.
func (s *Store) sweep(now time.Time, window time.Duration) {
	if now.Sub(s.lastSweep) < window {
		return
	}
	s.lastSweep = now
	for k, e := range s.byID {
		if e.expired(now) {
			delete(s.byID, k)
		}
	}
}

// Len es la cantidad de claves que el store tiene en memoria.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Store) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, key)
	return nil
}

func toState(e entry) lockout.State {
	st := lockout.State{FailedCount: e.failed}
	if e.lockedUntil != nil {
		t := *e.lockedUntil
		st.LockedUntil = &t
	}
	return st
}
