// Package noop descarta los eventos; opcionalmente los loguea en debug.
package noop

import (
	"context"

	"animal-rescue/internal/platform/logger"
	"animal-rescue/internal/ports/events"
)

type Publisher struct {
	log logger.Logger
}

func NewPublisher(log logger.Logger) *Publisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{log: log}
}

func (p *Publisher) Publish(_ context.Context, e events.Event) error {
	p.log.Debug("event dropped (no broker configured)", map[string]any{"event": e.Type, "key": e.Key})
	return nil
}
