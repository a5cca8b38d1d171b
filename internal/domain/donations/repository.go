package donations

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r Request) error
	GetByID(ctx context.Context, id string) (Request, error)
	List(ctx context.Context) ([]Request, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
}
