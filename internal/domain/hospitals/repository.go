package hospitals

import (
	"context"
	"time"
)

// ListFilter: Statuses vacío = todos.
type ListFilter struct {
	Statuses []Status
}

func (f ListFilter) Matches(h Registration) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if h.Status == s {
			return true
		}
	}
	return false
}

type Repository interface {
	Create(ctx context.Context, h Registration) error
	GetByID(ctx context.Context, id string) (Registration, error)
	List(ctx context.Context, filter ListFilter) ([]Registration, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
}
