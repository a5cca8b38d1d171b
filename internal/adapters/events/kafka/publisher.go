// Package kafka publica los eventos de dominio en Kafka, un topic por tipo
// de registro: <prefix>.report, <prefix>.adoption, etc.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"animal-rescue/internal/ports/events"

	kafkago "github.com/segmentio/kafka-go"
)

// envelope es lo que viaja como value del mensaje.
type envelope struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Publisher struct {
	writer messageWriter
	prefix string
}

func NewPublisher(brokers []string, topicPrefix string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			RequiredAcks:           kafkago.RequireAll,
			Balancer:               &kafkago.Hash{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
		prefix: strings.TrimSuffix(strings.TrimSpace(topicPrefix), "."),
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	value, err := json.Marshal(envelope{
		Type:       e.Type,
		Key:        e.Key,
		OccurredAt: e.OccurredAt.UTC(),
		Payload:    e.Payload,
	})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.Type, err)
	}

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: p.topicFor(e.Type),
		Key:   []byte(e.Key),
		Value: value,
		Time:  e.OccurredAt.UTC(),
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	})
}

// topicFor: "report.status_changed" -> "<prefix>.report".
func (p *Publisher) topicFor(eventType string) string {
	kind, _, _ := strings.Cut(eventType, ".")
	if p.prefix == "" {
		return kind
	}
	return p.prefix + "." + kind
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
