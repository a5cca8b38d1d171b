package contact

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/contact", sendHandler(svc))
}

type sendRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type acceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// sendHandler godoc
// @Summary Enviar mensaje de contacto
// @Tags contact
// @Accept json
// @Produce json
// @Param payload body sendRequest true "name, email y message son obligatorios"
// @Success 202 {object} acceptedResponse
// @Failure 400 {string} string "validación"
// @Router /contact [post]
func sendHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Send(r.Context(), SendInput(req))
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(acceptedResponse{ID: m.ID, Status: "received"})
	}
}
