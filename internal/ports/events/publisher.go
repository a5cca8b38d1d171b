package events

import (
	"context"
	"time"
)

// Event es lo que los domains anuncian hacia afuera (alta de reporte,
// cambio de estado, etc). Payload se serializa como JSON en el adapter.
type Event struct {
	Type       string
	Key        string // partition key; normalmente el id del registro
	OccurredAt time.Time
	Payload    any
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
