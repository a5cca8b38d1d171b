package hospitals

import (
	"time"

	"animal-rescue/internal/domain/lifecycle"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Lifecycle: pending -> approved | rejected. Ambos terminales.
var Lifecycle = lifecycle.NewMachine(StatusPending, map[Status][]Status{
	StatusPending: {StatusApproved, StatusRejected},
})

// Registration es el alta de un hospital veterinario (tabla hospital_registrations).
// Solo los aprobados aparecen en el directorio público.
type Registration struct {
	ID string

	HospitalName string
	Address      string
	ContactPhone string
	Email        string
	Services     string // texto libre, ej: "Emergency, Surgery"

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
