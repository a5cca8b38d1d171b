package adoptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"animal-rescue/internal/domain/lifecycle"
)

type testRepo struct {
	byID  map[string]Request
	order []string
}

func newTestRepo() *testRepo { return &testRepo{byID: map[string]Request{}} }

func (r *testRepo) Create(ctx context.Context, a Request) error {
	r.byID[a.ID] = a
	r.order = append(r.order, a.ID)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Request, error) {
	a, ok := r.byID[id]
	if !ok {
		return Request{}, lifecycle.ErrRecordNotFound
	}
	return a, nil
}

func (r *testRepo) List(ctx context.Context) ([]Request, error) {
	out := make([]Request, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.byID[r.order[i]])
	}
	return out, nil
}

func (r *testRepo) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error {
	a, ok := r.byID[id]
	if !ok {
		return lifecycle.ErrRecordNotFound
	}
	if a.Status != from {
		return lifecycle.ErrStaleStatus
	}
	a.Status = to
	a.UpdatedAt = at
	r.byID[id] = a
	return nil
}

func TestCreate_RequiredFields(t *testing.T) {
	svc := NewService(newTestRepo(), nil, nil)

	cases := []CreateInput{
		{ContactName: "Asha", ContactPhone: "98400"},
		{AnimalName: "Bruno", ContactPhone: "98400"},
		{AnimalName: "Bruno", ContactName: "Asha", ContactPhone: " "},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %#v, got %v", in, err)
		}
	}
}

func TestCreate_Pending(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	a, err := svc.Create(context.Background(), CreateInput{
		AnimalName: "Mia", ContactName: "Ravi", ContactPhone: "9876543210", ContactEmail: "ravi@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusPending {
		t.Fatalf("expected pending, got %s", a.Status)
	}
	if _, ok := repo.byID[a.ID]; !ok {
		t.Fatalf("expected request stored")
	}
}

func TestTransition_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRepo(), nil, nil)

	a, _ := svc.Create(ctx, CreateInput{AnimalName: "Rocky", ContactName: "Ravi", ContactPhone: "1"})

	if got := AllowedTransitions(a); len(got) != 2 || got[0] != StatusApproved || got[1] != StatusRejected {
		t.Fatalf("unexpected transitions: %v", got)
	}

	if _, err := svc.Transition(ctx, a.ID, StatusCompleted); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}

	a, err := svc.Transition(ctx, a.ID, StatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	a, err = svc.Transition(ctx, a.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(AllowedTransitions(a)) != 0 {
		t.Fatalf("completed must be terminal")
	}

	if _, err := svc.Transition(ctx, "nope", StatusApproved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
