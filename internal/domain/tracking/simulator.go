package tracking

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	maxCoordDelta = 0.001
	maxSpeedDelta = 0.5
)

// Simulator mantiene un set de animales y los mueve en cada Step.
// Es seguro para uso concurrente.
type Simulator struct {
	mu      sync.Mutex
	animals []Animal
	rnd     *rand.Rand
	now     func() time.Time
}

// NewSimulator copia los animales recibidos. src nil = fuente aleatoria.
func NewSimulator(animals []Animal, src rand.Source) *Simulator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Simulator{
		animals: cloneAnimals(animals),
		rnd:     rand.New(src),
		now:     time.Now,
	}
}

// Step aplica un tick: lat/lng ± 0.0005, speed ± 0.25 sin bajar de 0.
func (s *Simulator) Step() []Animal {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for i := range s.animals {
		a := &s.animals[i]
		a.Lat += (s.rnd.Float64() - 0.5) * maxCoordDelta
		a.Lng += (s.rnd.Float64() - 0.5) * maxCoordDelta
		a.Speed = max(0, a.Speed+(s.rnd.Float64()-0.5)*maxSpeedDelta)
		a.LastUpdate = now
	}
	return cloneAnimals(s.animals)
}

func (s *Simulator) Snapshot() []Animal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAnimals(s.animals)
}

// Run llama Step cada interval y pasa el resultado a fn, hasta que ctx
// se cancele. No deja goroutines propias: el loop corre en la del caller.
func (s *Simulator) Run(ctx context.Context, interval time.Duration, fn func([]Animal) error) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := fn(s.Step()); err != nil {
				return err
			}
		}
	}
}

func cloneAnimals(in []Animal) []Animal {
	out := make([]Animal, len(in))
	for i, a := range in {
		a.Path = append([]PathPoint(nil), a.Path...)
		out[i] = a
	}
	return out
}
