package reports

import (
	"context"
	"time"
)

// ListFilter: campos vacíos = sin filtro.
type ListFilter struct {
	Statuses          []Status
	ExcludeConditions []Condition
}

// Matches aplica el filtro en memoria (lo usan los repos que no tienen SQL).
func (f ListFilter) Matches(r Report) bool {
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if r.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, c := range f.ExcludeConditions {
		if r.Condition == c {
			return false
		}
	}
	return true
}

// Repository es la tabla reported_animals.
// List devuelve siempre created_at DESC (desempate por id DESC).
// UpdateStatus solo escribe si el estado actual sigue siendo from.
type Repository interface {
	Create(ctx context.Context, r Report) error
	GetByID(ctx context.Context, id string) (Report, error)
	List(ctx context.Context, filter ListFilter) ([]Report, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
}
