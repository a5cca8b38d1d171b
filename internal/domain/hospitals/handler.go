package hospitals

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, admin func(http.Handler) http.Handler) {
	r.Route("/hospitals", func(hr chi.Router) {
		hr.Post("/", registerHospitalHandler(svc))
		// Directorio: solo aprobados
		hr.Get("/", listApprovedHandler(svc))
	})

	r.Route("/admin/hospitals", func(ar chi.Router) {
		ar.Use(admin)
		ar.Get("/", adminListHandler(svc))
		ar.Get("/{hospitalID}", adminGetHandler(svc))
		ar.Post("/{hospitalID}/status", updateStatusHandler(svc))
	})
}

type registerHospitalRequest struct {
	HospitalName string `json:"hospital_name"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
	Email        string `json:"email"`
	Services     string `json:"services"`
}

type hospitalResponse struct {
	ID           string    `json:"id"`
	HospitalName string    `json:"hospital_name"`
	Address      string    `json:"address"`
	ContactPhone string    `json:"contact_phone"`
	Email        string    `json:"email"`
	Services     string    `json:"services"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AdminHospitalResponse struct {
	hospitalResponse
	AllowedTransitions []Status `json:"allowed_transitions"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// registerHospitalHandler godoc
// @Summary Registrar un hospital veterinario
// @Description Queda pending hasta que un admin lo apruebe.
// @Tags hospitals
// @Accept json
// @Produce json
// @Param payload body registerHospitalRequest true "hospital_name, address y contact_phone son obligatorios"
// @Success 201 {object} hospitalResponse
// @Failure 400 {string} string "validación"
// @Router /hospitals [post]
func registerHospitalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerHospitalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		h, err := svc.Register(r.Context(), RegisterInput{
			HospitalName: req.HospitalName,
			Address:      req.Address,
			ContactPhone: req.ContactPhone,
			Email:        req.Email,
			Services:     req.Services,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toHospitalResponse(h))
	}
}

// listApprovedHandler godoc
// @Summary Directorio de hospitales
// @Tags hospitals
// @Produce json
// @Success 200 {array} hospitalResponse
// @Router /hospitals [get]
func listApprovedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListApproved(r.Context())
		if err != nil {
			http.Error(w, "failed to load hospitals", http.StatusInternalServerError)
			return
		}

		out := make([]hospitalResponse, 0, len(items))
		for _, h := range items {
			out = append(out, toHospitalResponse(h))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "failed to load hospital registrations", http.StatusInternalServerError)
			return
		}

		out := make([]AdminHospitalResponse, 0, len(items))
		for _, h := range items {
			out = append(out, ToAdminResponse(h))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminGetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := svc.GetByID(r.Context(), chi.URLParam(r, "hospitalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToAdminResponse(h))
	}
}

func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		h, err := svc.Transition(r.Context(), chi.URLParam(r, "hospitalID"), Status(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToAdminResponse(h))
	}
}

func toHospitalResponse(h Registration) hospitalResponse {
	return hospitalResponse{
		ID:           h.ID,
		HospitalName: h.HospitalName,
		Address:      h.Address,
		ContactPhone: h.ContactPhone,
		Email:        h.Email,
		Services:     h.Services,
		Status:       h.Status,
		CreatedAt:    h.CreatedAt,
		UpdatedAt:    h.UpdatedAt,
	}
}

func ToAdminResponse(h Registration) AdminHospitalResponse {
	return AdminHospitalResponse{
		hospitalResponse:   toHospitalResponse(h),
		AllowedTransitions: AllowedTransitions(h),
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "hospital registration not found", http.StatusNotFound)
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
