package hospitals

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
	EventSubmitted     = "hospital.submitted"
	EventStatusChanged = "hospital.status_changed"
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
		log:    log.With(map[string]any{"module": "hospitals"}),
		now:    time.Now,
	}
}

type RegisterInput struct {
	HospitalName string
	Address      string
	ContactPhone string
	Email        string
	Services     string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	in.HospitalName = strings.TrimSpace(in.HospitalName)
	in.Address = strings.TrimSpace(in.Address)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)

	if in.HospitalName == "" || in.Address == "" || in.ContactPhone == "" {
		return Registration{}, fmt.Errorf("%w: hospital_name, address and contact_phone are required", ErrInvalidInput)
	}

	now := s.now()
	h := Registration{
		ID:           uuid.NewString(),
		HospitalName: in.HospitalName,
		Address:      in.Address,
		ContactPhone: in.ContactPhone,
		Email:        strings.TrimSpace(in.Email),
		Services:     strings.TrimSpace(in.Services),
		Status:       Lifecycle.Initial(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, h); err != nil {
		return Registration{}, err
	}

	s.publish(ctx, EventSubmitted, h.ID, map[string]any{"id": h.ID, "hospital_name": h.HospitalName})
	return h, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Registration, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Registration{}, ErrInvalidInput
	}
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Registration{}, repoErr(err)
	}
	return h, nil
}

// List: todas las registraciones (vista admin).
func (s *Service) List(ctx context.Context) ([]Registration, error) {
	return s.repo.List(ctx, ListFilter{})
}

// ListApproved es el directorio público.
func (s *Service) ListApproved(ctx context.Context) ([]Registration, error) {
	return s.repo.List(ctx, ListFilter{Statuses: []Status{StatusApproved}})
}

func (s *Service) Transition(ctx context.Context, id string, to Status) (Registration, error) {
	id = strings.TrimSpace(id)
	if id == "" || !Lifecycle.Known(to) {
		return Registration{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}

	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Registration{}, repoErr(err)
	}

	from := h.Status
	if err := Lifecycle.Check(from, to); err != nil {
		return Registration{}, fmt.Errorf("%w: %s -> %s", ErrBadState, from, to)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, id, from, to, now); err != nil {
		if errors.Is(err, lifecycle.ErrStaleStatus) {
			return Registration{}, fmt.Errorf("%w: status changed concurrently", ErrBadState)
		}
		return Registration{}, repoErr(err)
	}

	h.Status = to
	h.UpdatedAt = now
	s.publish(ctx, EventStatusChanged, h.ID, map[string]any{"id": h.ID, "from": from, "to": to})
	return h, nil
}

func AllowedTransitions(h Registration) []Status {
	return Lifecycle.Next(h.Status)
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
