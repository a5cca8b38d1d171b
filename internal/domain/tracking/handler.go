package tracking

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"animal-rescue/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type animalView struct {
	Animal
	Health Health `json:"health"`
}

// Handler sirve la vista de tracking. Cada conexión al stream tiene su
// propio simulador, que muere con el request.
type Handler struct {
	interval time.Duration
	log      logger.Logger
	now      func() time.Time
}

func NewHandler(interval time.Duration, log logger.Logger) *Handler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{interval: interval, log: log.With(map[string]any{"module": "tracking"}), now: time.Now}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/tracking", func(tr chi.Router) {
		tr.Get("/", h.snapshot)
		tr.Get("/stream", h.stream)
	})
}

// snapshot godoc
// @Summary Posiciones GPS actuales
// @Tags tracking
// @Produce json
// @Success 200 {array} animalView
// @Router /tracking [get]
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	sim := NewSimulator(SeedAnimals(h.now()), nil)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toViews(sim.Snapshot()))
}

// stream godoc
// @Summary Stream de posiciones (Server-Sent Events)
// @Description Emite un evento `positions` al conectar y luego uno por intervalo.
// @Tags tracking
// @Produce text/event-stream
// @Router /tracking/stream [get]
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	sim := NewSimulator(SeedAnimals(h.now()), nil)

	send := func(animals []Animal) error {
		b, err := json.Marshal(toViews(animals))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: positions\ndata: %s\n\n", b); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := send(sim.Snapshot()); err != nil {
		return
	}

	err := sim.Run(r.Context(), h.interval, send)
	if err != nil && !errors.Is(err, r.Context().Err()) {
		h.log.Warn("tracking stream aborted", map[string]any{"err": err})
	}
}

func toViews(animals []Animal) []animalView {
	out := make([]animalView, 0, len(animals))
	for _, a := range animals {
		out = append(out, animalView{Animal: a, Health: HealthFor(a.Speed)})
	}
	return out
}
