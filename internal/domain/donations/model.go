package donations

import (
	"time"

	"animal-rescue/internal/domain/lifecycle"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// Lifecycle: pending -> processing -> completed. No hay rechazo.
var Lifecycle = lifecycle.NewMachine(StatusPending, map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted},
})

// Request es un compromiso de donación (tabla donation_requests).
// No se procesa ningún pago.
type Request struct {
	ID string

	Amount       float64
	ContactName  string
	ContactPhone string
	ContactEmail string
	Message      string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
