package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"animal-rescue/internal/domain/donations"
	"animal-rescue/internal/domain/lifecycle"
)

type donationRepo struct {
	mu   sync.RWMutex
	byID map[string]donations.Request
}

func NewDonationRepo() donations.Repository {
	return &donationRepo{byID: make(map[string]donations.Request)}
}

func (r *donationRepo) Create(ctx context.Context, d donations.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("donation id required")
	}
	if _, exists := r.byID[d.ID]; exists {
		return errors.New("donation already exists")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *donationRepo) GetByID(ctx context.Context, id string) (donations.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return donations.Request{}, ErrNotFound
	}
	return d, nil
}

func (r *donationRepo) List(ctx context.Context) ([]donations.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]donations.Request, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *donationRepo) UpdateStatus(ctx context.Context, id string, from, to donations.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if d.Status != from {
		return lifecycle.ErrStaleStatus
	}
	d.Status = to
	d.UpdatedAt = at
	r.byID[id] = d
	return nil
}
