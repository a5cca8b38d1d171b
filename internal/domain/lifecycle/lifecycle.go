// Package lifecycle modela los estados de cada tipo de registro
// (reportes, adopciones, donaciones, hospitales) como una máquina lineal:
// cada estado conoce sus siguientes permitidos y los terminales no tienen ninguno.
package lifecycle

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStaleStatus lo devuelven los repos cuando el update condicional
	// no encontró la fila en el estado esperado (otro admin se adelantó).
	ErrStaleStatus = errors.New("status changed concurrently")

	// ErrRecordNotFound es el único error de repo que significa "no existe".
	// Cualquier otro (conexión, timeout) se propaga tal cual.
	ErrRecordNotFound = errors.New("record not found")
)

type Machine[S ~string] struct {
	initial S
	next    map[S][]S
	known   map[S]struct{}
}

// NewMachine arma la máquina. Los estados que solo aparecen como destino
// quedan registrados como terminales.
func NewMachine[S ~string](initial S, edges map[S][]S) Machine[S] {
	m := Machine[S]{
		initial: initial,
		next:    make(map[S][]S, len(edges)),
		known:   map[S]struct{}{initial: {}},
	}
	for from, tos := range edges {
		m.known[from] = struct{}{}
		cp := make([]S, len(tos))
		copy(cp, tos)
		m.next[from] = cp
		for _, to := range tos {
			m.known[to] = struct{}{}
		}
	}
	return m
}

func (m Machine[S]) Initial() S { return m.initial }

// Next devuelve los destinos permitidos desde from, en el orden declarado.
func (m Machine[S]) Next(from S) []S {
	tos := m.next[from]
	out := make([]S, len(tos))
	copy(out, tos)
	return out
}

func (m Machine[S]) Can(from, to S) bool {
	for _, s := range m.next[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (m Machine[S]) Known(s S) bool {
	_, ok := m.known[s]
	return ok
}

func (m Machine[S]) IsTerminal(s S) bool {
	return m.Known(s) && len(m.next[s]) == 0
}

// Check valida from -> to y devuelve ErrInvalidTransition si no corresponde.
func (m Machine[S]) Check(from, to S) error {
	if !m.Can(from, to) {
		return ErrInvalidTransition
	}
	return nil
}
