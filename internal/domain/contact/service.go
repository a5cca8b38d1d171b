// Package contact recibe mensajes del formulario de contacto.
// No se guardan: se anuncian como evento para que otro proceso los atienda.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"animal-rescue/internal/platform/logger"
	"animal-rescue/internal/ports/events"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

const EventMessageReceived = "contact.message_received"

type Message struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Body       string
	ReceivedAt time.Time
}

type Service struct {
	events events.Publisher
	log    logger.Logger
	now    func() time.Time
}

func NewService(pub events.Publisher, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{events: pub, log: log.With(map[string]any{"module": "contact"}), now: time.Now}
}

type SendInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Send valida y publica. Si el publish falla se loguea y el mensaje
// se da igual por recibido.
func (s *Service) Send(ctx context.Context, in SendInput) (Message, error) {
	m := Message{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
		Body:  strings.TrimSpace(in.Message),
	}
	if m.Name == "" || m.Email == "" || m.Body == "" {
		return Message{}, fmt.Errorf("%w: name, email and message are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return Message{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	m.ID = uuid.NewString()
	m.ReceivedAt = s.now()

	s.log.Info("contact message received", map[string]any{"id": m.ID})

	if s.events != nil {
		err := s.events.Publish(ctx, events.Event{
			Type:       EventMessageReceived,
			Key:        m.ID,
			OccurredAt: m.ReceivedAt,
			Payload: map[string]any{
				"id":      m.ID,
				"name":    m.Name,
				"email":   m.Email,
				"phone":   m.Phone,
				"message": m.Body,
			},
		})
		if err != nil {
			s.log.Warn("publish event failed", map[string]any{"event": EventMessageReceived, "err": err})
		}
	}
	return m, nil
}
