package reports

import (
	"time"

	"animal-rescue/internal/domain/lifecycle"
)

// AnimalType define los tipos de animal que se pueden reportar.
// @Enum dog, cat, bird, other
type AnimalType string

const (
	AnimalDog   AnimalType = "dog"
	AnimalCat   AnimalType = "cat"
	AnimalBird  AnimalType = "bird"
	AnimalOther AnimalType = "other"
)

// Condition describe en qué estado se encontró al animal.
// @Enum injured, aggressive, stray, accident
type Condition string

const (
	ConditionInjured    Condition = "injured"
	ConditionAggressive Condition = "aggressive"
	ConditionStray      Condition = "stray"
	ConditionAccident   Condition = "accident"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

// Lifecycle: pending -> in_progress -> resolved, pending -> rejected.
var Lifecycle = lifecycle.NewMachine(StatusPending, map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusResolved},
})

// Report es un animal reportado por un ciudadano (tabla reported_animals).
type Report struct {
	ID string

	AnimalType AnimalType
	Condition  Condition
	Location   string
	GmapsLink  string

	Description  string
	ContactName  string
	ContactPhone string

	// nil si no se subió foto
	PhotoURL *string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AdoptionEligible: resuelto y no agresivo.
func (r Report) AdoptionEligible() bool {
	return r.Status == StatusResolved && r.Condition != ConditionAggressive
}

func validAnimalType(t AnimalType) bool {
	switch t {
	case AnimalDog, AnimalCat, AnimalBird, AnimalOther:
		return true
	}
	return false
}

func validCondition(c Condition) bool {
	switch c {
	case ConditionInjured, ConditionAggressive, ConditionStray, ConditionAccident:
		return true
	}
	return false
}
