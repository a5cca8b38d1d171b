package adoptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"animal-rescue/internal/domain/lifecycle"
	"animal-rescue/internal/platform/logger"
	"animal-rescue/internal/ports/events"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

const (
	EventSubmitted     = "adoption.submitted"
	EventStatusChanged = "adoption.status_changed"
)

type Service struct {
	repo   Repository
	events events.Publisher
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, pub events.Publisher, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:   repo,
		events: pub,
		log:    log.With(map[string]any{"module": "adoptions"}),
		now:    time.Now,
	}
}

type CreateInput struct {
	AnimalName   string
	ContactName  string
	ContactPhone string
	ContactEmail string
	Message      string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Request, error) {
	in.AnimalName = strings.TrimSpace(in.AnimalName)
	in.ContactName = strings.TrimSpace(in.ContactName)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)

	if in.AnimalName == "" || in.ContactName == "" || in.ContactPhone == "" {
		return Request{}, fmt.Errorf("%w: animal_name, contact_name and contact_phone are required", ErrInvalidInput)
	}

	now := s.now()
	req := Request{
		ID:           uuid.NewString(),
		AnimalName:   in.AnimalName,
		ContactName:  in.ContactName,
		ContactPhone: in.ContactPhone,
		ContactEmail: strings.TrimSpace(in.ContactEmail),
		Message:      strings.TrimSpace(in.Message),
		Status:       Lifecycle.Initial(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return Request{}, err
	}

	s.publish(ctx, EventSubmitted, req.ID, map[string]any{
		"id":          req.ID,
		"animal_name": req.AnimalName,
	})
	return req, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, ErrInvalidInput
	}
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, repoErr(err)
	}
	return req, nil
}

func (s *Service) List(ctx context.Context) ([]Request, error) {
	return s.repo.List(ctx)
}

func (s *Service) Transition(ctx context.Context, id string, to Status) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" || !Lifecycle.Known(to) {
		return Request{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, repoErr(err)
	}

	from := req.Status
	if err := Lifecycle.Check(from, to); err != nil {
		return Request{}, fmt.Errorf("%w: %s -> %s", ErrBadState, from, to)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, id, from, to, now); err != nil {
		if errors.Is(err, lifecycle.ErrStaleStatus) {
			return Request{}, fmt.Errorf("%w: status changed concurrently", ErrBadState)
		}
		return Request{}, repoErr(err)
	}

	req.Status = to
	req.UpdatedAt = now
	s.publish(ctx, EventStatusChanged, req.ID, map[string]any{"id": req.ID, "from": from, "to": to})
	return req, nil
}

func AllowedTransitions(r Request) []Status {
	return Lifecycle.Next(r.Status)
}

func (s *Service) publish(ctx context.Context, typ, key string, payload any) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, events.Event{Type: typ, Key: key, OccurredAt: s.now(), Payload: payload})
	if err != nil {
		s.log.Warn("publish event failed", map[string]any{"event": typ, "key": key, "err": err})
	}
}

// repoErr traduce el "no existe" del repo al ErrNotFound del dominio;
// el resto son fallas del store y terminan en 500.
func repoErr(err error) error {
	if errors.Is(err, lifecycle.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
