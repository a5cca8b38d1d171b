// Package tracking simula collares GPS de animales callejeros.
// No hay dispositivos reales: cada tick mueve las posiciones con ruido aleatorio.
package tracking

import "time"

type PathPoint struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Time string  `json:"time"`
}

type Animal struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Species      string      `json:"species"`
	TagID        string      `json:"tag_id"`
	Lat          float64     `json:"lat"`
	Lng          float64     `json:"lng"`
	Speed        float64     `json:"speed"` // km/h
	LastUpdate   time.Time   `json:"last_update"`
	BatteryLevel int         `json:"battery_level"`
	Path         []PathPoint `json:"path"`
}

type HealthTier string

const (
	HealthCritical   HealthTier = "critical"
	HealthConcerning HealthTier = "concerning"
	HealthHealthy    HealthTier = "healthy"
	HealthExcellent  HealthTier = "excellent"
)

type Health struct {
	Tier  HealthTier `json:"tier"`
	Label string     `json:"label"`
}

// HealthFor clasifica por velocidad: <1 crítico, <2 preocupante, <4 sano.
func HealthFor(speed float64) Health {
	switch {
	case speed < 1:
		return Health{HealthCritical, "Critical - Minimal Movement"}
	case speed < 2:
		return Health{HealthConcerning, "Concerning - Low Activity"}
	case speed < 4:
		return Health{HealthHealthy, "Healthy - Normal Activity"}
	default:
		return Health{HealthExcellent, "Excellent - High Activity"}
	}
}

// SeedAnimals: los cuatro collares de demo (Chennai, Coimbatore, Madurai, Trichy).
func SeedAnimals(now time.Time) []Animal {
	return []Animal{
		{
			ID: "1", Name: "Bruno", Species: "Street Dog", TagID: "GPS-001",
			Lat: 13.0827, Lng: 80.2707, Speed: 2.5, BatteryLevel: 85, LastUpdate: now,
			Path: []PathPoint{
				{13.0827, 80.2707, "10:00 AM"},
				{13.0830, 80.2710, "10:15 AM"},
				{13.0828, 80.2708, "10:30 AM"},
			},
		},
		{
			ID: "2", Name: "Mia", Species: "Street Dog", TagID: "GPS-002",
			Lat: 11.0168, Lng: 76.9558, Speed: 0.5, BatteryLevel: 45, LastUpdate: now,
			Path: []PathPoint{
				{11.0168, 76.9558, "10:00 AM"},
				{11.0169, 76.9559, "10:15 AM"},
				{11.0168, 76.9558, "10:30 AM"},
			},
		},
		{
			ID: "3", Name: "Rocky", Species: "Street Dog", TagID: "GPS-003",
			Lat: 9.9252, Lng: 78.1198, Speed: 5.8, BatteryLevel: 92, LastUpdate: now,
			Path: []PathPoint{
				{9.9252, 78.1198, "10:00 AM"},
				{9.9260, 78.1210, "10:15 AM"},
				{9.9268, 78.1220, "10:30 AM"},
			},
		},
		{
			ID: "4", Name: "Luna", Species: "Street Dog", TagID: "GPS-004",
			Lat: 10.7905, Lng: 78.7047, Speed: 3.2, BatteryLevel: 67, LastUpdate: now,
			Path: []PathPoint{
				{10.7905, 78.7047, "10:00 AM"},
				{10.7910, 78.7050, "10:15 AM"},
				{10.7912, 78.7052, "10:30 AM"},
			},
		},
	}
}
