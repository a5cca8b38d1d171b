package adoptions

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, admin func(http.Handler) http.Handler) {
	r.Post("/adoptions", createAdoptionHandler(svc))

	r.Route("/admin/adoptions", func(ar chi.Router) {
		ar.Use(admin)
		ar.Get("/", listAdoptionsHandler(svc))
		ar.Get("/{adoptionID}", getAdoptionHandler(svc))
		ar.Post("/{adoptionID}/status", updateStatusHandler(svc))
	})
}

type createAdoptionRequest struct {
	AnimalName   string `json:"animal_name"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
	Message      string `json:"message"`
}

type adoptionResponse struct {
	ID           string    `json:"id"`
	AnimalName   string    `json:"animal_name"`
	ContactName  string    `json:"contact_name"`
	ContactPhone string    `json:"contact_phone"`
	ContactEmail string    `json:"contact_email"`
	Message      string    `json:"message"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AdminAdoptionResponse struct {
	adoptionResponse
	AllowedTransitions []Status `json:"allowed_transitions"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// createAdoptionHandler godoc
// @Summary Solicitar una adopción
// @Tags adoptions
// @Accept json
// @Produce json
// @Param payload body createAdoptionRequest true "animal_name, contact_name y contact_phone son obligatorios"
// @Success 201 {object} adoptionResponse
// @Failure 400 {string} string "validación"
// @Router /adoptions [post]
func createAdoptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAdoptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), CreateInput{
			AnimalName:   req.AnimalName,
			ContactName:  req.ContactName,
			ContactPhone: req.ContactPhone,
			ContactEmail: req.ContactEmail,
			Message:      req.Message,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAdoptionResponse(a))
	}
}

func listAdoptionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "failed to load adoption requests", http.StatusInternalServerError)
			return
		}

		out := make([]AdminAdoptionResponse, 0, len(items))
		for _, a := range items {
			out = append(out, ToAdminResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getAdoptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "adoptionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToAdminResponse(a))
	}
}

func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Transition(r.Context(), chi.URLParam(r, "adoptionID"), Status(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToAdminResponse(a))
	}
}

func toAdoptionResponse(a Request) adoptionResponse {
	return adoptionResponse{
		ID:           a.ID,
		AnimalName:   a.AnimalName,
		ContactName:  a.ContactName,
		ContactPhone: a.ContactPhone,
		ContactEmail: a.ContactEmail,
		Message:      a.Message,
		Status:       a.Status,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func ToAdminResponse(a Request) AdminAdoptionResponse {
	return AdminAdoptionResponse{
		adoptionResponse:   toAdoptionResponse(a),
		AllowedTransitions: AllowedTransitions(a),
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "adoption request not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState):
		http.Error(w, "invalid status transition", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
