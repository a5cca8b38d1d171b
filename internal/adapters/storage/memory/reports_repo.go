package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"animal-rescue/internal/domain/lifecycle"
	"animal-rescue/internal/domain/reports"
)

type reportRepo struct {
	mu   sync.RWMutex
	byID map[string]reports.Report
}

func NewReportRepo() reports.Repository {
	return &reportRepo{
		byID: make(map[string]reports.Report),
	}
}

func (r *reportRepo) Create(ctx context.Context, rep reports.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rep.ID) == "" {
		return errors.New("report id required")
	}
	if _, exists := r.byID[rep.ID]; exists {
		return errors.New("report already exists")
	}
	r.byID[rep.ID] = cloneReport(rep)
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.byID[id]
	if !ok {
		return reports.Report{}, ErrNotFound
	}
	return cloneReport(rep), nil
}

func (r *reportRepo) List(ctx context.Context, f reports.ListFilter) ([]reports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reports.Report, 0, len(r.byID))
	for _, rep := range r.byID {
		if f.Matches(rep) {
			out = append(out, cloneReport(rep))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *reportRepo) UpdateStatus(ctx context.Context, id string, from, to reports.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if rep.Status != from {
		return lifecycle.ErrStaleStatus
	}
	rep.Status = to
	rep.UpdatedAt = at
	r.byID[id] = rep
	return nil
}

// el puntero a la URL no se comparte con el caller
func cloneReport(rep reports.Report) reports.Report {
	if rep.PhotoURL != nil {
		u := *rep.PhotoURL
		rep.PhotoURL = &u
	}
	return rep
}

// newerFirst: created_at DESC, desempate por id DESC.
func newerFirst(a, b time.Time, aID, bID string) bool {
	if a.Equal(b) {
		return aID > bID
	}
	return a.After(b)
}
