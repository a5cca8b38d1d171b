package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"animal-rescue/internal/domain/hospitals"
	"animal-rescue/internal/domain/lifecycle"
)

type hospitalRepo struct {
	mu   sync.RWMutex
	byID map[string]hospitals.Registration
}

func NewHospitalRepo() hospitals.Repository {
	return &hospitalRepo{byID: make(map[string]hospitals.Registration)}
}

func (r *hospitalRepo) Create(ctx context.Context, h hospitals.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(h.ID) == "" {
		return errors.New("hospital id required")
	}
	if _, exists := r.byID[h.ID]; exists {
		return errors.New("hospital already exists")
	}
	r.byID[h.ID] = h
	return nil
}

func (r *hospitalRepo) GetByID(ctx context.Context, id string) (hospitals.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.byID[id]
	if !ok {
		return hospitals.Registration{}, ErrNotFound
	}
	return h, nil
}

func (r *hospitalRepo) List(ctx context.Context, f hospitals.ListFilter) ([]hospitals.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]hospitals.Registration, 0, len(r.byID))
	for _, h := range r.byID {
		if f.Matches(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *hospitalRepo) UpdateStatus(ctx context.Context, id string, from, to hospitals.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if h.Status != from {
		return lifecycle.ErrStaleStatus
	}
	h.Status = to
	h.UpdatedAt = at
	r.byID[id] = h
	return nil
}
