package adoptions

import (
	"time"

	"animal-rescue/internal/domain/lifecycle"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Lifecycle: pending -> approved -> completed, pending -> rejected.
var Lifecycle = lifecycle.NewMachine(StatusPending, map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
})

// Request es una solicitud de adopción (tabla adoption_requests).
// AnimalName es texto libre; no referencia a un reporte.
type Request struct {
	ID string

	AnimalName   string
	ContactName  string
	ContactPhone string
	ContactEmail string
	Message      string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
