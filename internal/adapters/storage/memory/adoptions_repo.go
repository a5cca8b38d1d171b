package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"animal-rescue/internal/domain/adoptions"
	"animal-rescue/internal/domain/lifecycle"
)

type adoptionRepo struct {
	mu   sync.RWMutex
	byID map[string]adoptions.Request
}

func NewAdoptionRepo() adoptions.Repository {
	return &adoptionRepo{byID: make(map[string]adoptions.Request)}
}

func (r *adoptionRepo) Create(ctx context.Context, a adoptions.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("adoption id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("adoption already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return adoptions.Request{}, ErrNotFound
	}
	return a, nil
}

func (r *adoptionRepo) List(ctx context.Context) ([]adoptions.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.Request, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *adoptionRepo) UpdateStatus(ctx context.Context, id string, from, to adoptions.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != from {
		return lifecycle.ErrStaleStatus
	}
	a.Status = to
	a.UpdatedAt = at
	r.byID[id] = a
	return nil
}
