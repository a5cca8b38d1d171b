package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"animal-rescue/internal/domain/lifecycle"
	"animal-rescue/internal/platform/logger"
	"animal-rescue/internal/ports/events"
	"animal-rescue/internal/ports/objectstore"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrBadState      = errors.New("invalid state")
	ErrPhotoTooLarge = errors.New("photo must be less than 5MB")
	ErrPhotoType     = errors.New("photo must be a JPG, PNG or WEBP image")
	ErrUpload        = errors.New("photo upload failed")
)

const (
	EventSubmitted     = "report.submitted"
	EventStatusChanged = "report.status_changed"
)

type Service struct {
	repo   Repository
	photos objectstore.Store
	events events.Publisher
	log    logger.Logger

	now   func() time.Time
	token func() string
}

// NewService: photos y pub pueden ser nil (sin fotos / sin eventos).
func NewService(repo Repository, photos objectstore.Store, pub events.Publisher, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:   repo,
		photos: photos,
		events: pub,
		log:    log.With(map[string]any{"module": "reports"}),
		now:    time.Now,
		token:  randomToken,
	}
}

type SubmitInput struct {
	AnimalType   string
	Condition    string
	Location     string
	GmapsLink    string
	Description  string
	ContactName  string
	ContactPhone string

	Photo *Photo // opcional
}

func (in SubmitInput) validate() error {
	if in.AnimalType == "" || in.Condition == "" || in.Location == "" {
		return fmt.Errorf("%w: animal_type, condition and location are required", ErrInvalidInput)
	}
	if !validAnimalType(AnimalType(in.AnimalType)) {
		return fmt.Errorf("%w: unknown animal_type %q", ErrInvalidInput, in.AnimalType)
	}
	if !validCondition(Condition(in.Condition)) {
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidInput, in.Condition)
	}
	if in.Photo != nil {
		return in.Photo.Validate()
	}
	return nil
}

// Submit valida, sube la foto (si hay) y recién después inserta.
// Si la subida falla el reporte no se crea.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Report, error) {
	in.AnimalType = strings.ToLower(strings.TrimSpace(in.AnimalType))
	in.Condition = strings.ToLower(strings.TrimSpace(in.Condition))
	in.Location = strings.TrimSpace(in.Location)

	if err := in.validate(); err != nil {
		return Report{}, err
	}

	now := s.now()

	var photoURL *string
	if in.Photo != nil {
		u, err := s.uploadPhoto(ctx, now, *in.Photo)
		if err != nil {
			return Report{}, err
		}
		photoURL = &u
	}

	r := Report{
		ID:           uuid.NewString(),
		AnimalType:   AnimalType(in.AnimalType),
		Condition:    Condition(in.Condition),
		Location:     in.Location,
		GmapsLink:    strings.TrimSpace(in.GmapsLink),
		Description:  strings.TrimSpace(in.Description),
		ContactName:  strings.TrimSpace(in.ContactName),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		PhotoURL:     photoURL,
		Status:       Lifecycle.Initial(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return Report{}, err
	}

	s.publish(ctx, EventSubmitted, r.ID, map[string]any{
		"id":          r.ID,
		"animal_type": r.AnimalType,
		"condition":   r.Condition,
		"location":    r.Location,
		"has_photo":   r.PhotoURL != nil,
	})
	return r, nil
}

func (s *Service) uploadPhoto(ctx context.Context, now time.Time, p Photo) (string, error) {
	if s.photos == nil {
		return "", fmt.Errorf("%w: object store not configured", ErrUpload)
	}

	name := objectName(now, s.token(), p)
	if err := s.photos.Upload(ctx, name, p.MediaType(), p.Body, p.Size); err != nil {
		s.log.Warn("photo upload failed", map[string]any{"object": name, "err": err})
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return s.photos.PublicURL(name), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Report{}, ErrInvalidInput
	}
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Report{}, repoErr(err)
	}
	return r, nil
}

// List: todos los reportes, más nuevos primero.
func (s *Service) List(ctx context.Context) ([]Report, error) {
	return s.repo.List(ctx, ListFilter{})
}

// ListAdoptable es el catálogo de adopción: resueltos y no agresivos.
// No se cruza con adoption_requests.
func (s *Service) ListAdoptable(ctx context.Context) ([]Report, error) {
	return s.repo.List(ctx, ListFilter{
		Statuses:          []Status{StatusResolved},
		ExcludeConditions: []Condition{ConditionAggressive},
	})
}

// Transition mueve el reporte a `to` si el lifecycle lo permite desde el estado actual.
func (s *Service) Transition(ctx context.Context, id string, to Status) (Report, error) {
	id = strings.TrimSpace(id)
	to = Status(strings.TrimSpace(string(to)))
	if id == "" || to == "" {
		return Report{}, ErrInvalidInput
	}
	if !Lifecycle.Known(to) {
		return Report{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Report{}, repoErr(err)
	}

	from := r.Status
	if err := Lifecycle.Check(from, to); err != nil {
		return Report{}, fmt.Errorf("%w: %s -> %s", ErrBadState, from, to)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, id, from, to, now); err != nil {
		if errors.Is(err, lifecycle.ErrStaleStatus) {
			return Report{}, fmt.Errorf("%w: status changed concurrently", ErrBadState)
		}
		return Report{}, repoErr(err)
	}

	r.Status = to
	r.UpdatedAt = now

	s.publish(ctx, EventStatusChanged, r.ID, map[string]any{
		"id":   r.ID,
		"from": from,
		"to":   to,
	})
	return r, nil
}

// AllowedTransitions es lo que el dashboard ofrece como botones.
func AllowedTransitions(r Report) []Status {
	return Lifecycle.Next(r.Status)
}

// publish es best-effort: un broker caído no rompe el alta.
func (s *Service) publish(ctx context.Context, typ, key string, payload any) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, events.Event{
		Type:       typ,
		Key:        key,
		OccurredAt: s.now(),
		Payload:    payload,
	})
	if err != nil {
		s.log.Warn("publish event failed", map[string]any{"event": typ, "key": key, "err": err})
	}
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// repoErr traduce el "no existe" del repo al ErrNotFound del dominio;
// el resto son fallas del store y terminan en 500.
func repoErr(err error) error {
	if errors.Is(err, lifecycle.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
