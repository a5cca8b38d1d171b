package donations

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, admin func(http.Handler) http.Handler) {
	r.Post("/donations", createDonationHandler(svc))

	r.Route("/admin/donations", func(ar chi.Router) {
		ar.Use(admin)
		ar.Get("/", listDonationsHandler(svc))
		ar.Get("/{donationID}", getDonationHandler(svc))
		ar.Post("/{donationID}/status", updateStatusHandler(svc))
	})
}

var errAmountNotNumber = errors.New("amount must be a number")

// amountField acepta 500, 500.5 o "500" (los formularios mandan string).
type amountField struct {
	Value   float64
	Present bool
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errAmountNotNumber
		}
		a.Value, a.Present = v, true
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return errAmountNotNumber
	}
	a.Value, a.Present = v, true
	return nil
}

type createDonationRequest struct {
	Amount       amountField `json:"amount" swaggertype:"number"`
	ContactName  string      `json:"contact_name"`
	ContactPhone string      `json:"contact_phone"`
	ContactEmail string      `json:"contact_email"`
	Message      string      `json:"message"`
}

type donationResponse struct {
	ID           string    `json:"id"`
	Amount       float64   `json:"amount"`
	ContactName  string    `json:"contact_name"`
	ContactPhone string    `json:"contact_phone"`
	ContactEmail string    `json:"contact_email"`
	Message      string    `json:"message"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AdminDonationResponse struct {
	donationResponse
	AllowedTransitions []Status `json:"allowed_transitions"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// createDonationHandler godoc
// @Summary Registrar una donación
// @Description amount puede ser número o string numérico; debe ser mayor a cero.
// @Tags donations
// @Accept json
// @Produce json
// @Param payload body createDonationRequest true "Datos de la donación"
// @Success 201 {object} donationResponse
// @Failure 400 {string} string "validación"
// @Router /donations [post]
func createDonationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDonationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json: amount must be a number", http.StatusBadRequest)
			return
		}
		if !req.Amount.Present {
			http.Error(w, "amount is required", http.StatusBadRequest)
			return
		}

		d, err := svc.Create(r.Context(), CreateInput{
			Amount:       req.Amount.Value,
			ContactName:  req.ContactName,
			ContactPhone: req.ContactPhone,
			ContactEmail: req.ContactEmail,
			Message:      req.Message,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toDonationResponse(d))
	}
}

func listDonationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "failed to load donation requests", http.StatusInternalServerError)
			return
		}

		out := make([]AdminDonationResponse, 0, len(items))
		for _, d := range items {
			out = append(out, ToAdminResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getDonationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.GetByID(r.Context(), chi.URLParam(r, "donationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToAdminResponse(d))
	}
}

func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.Transition(r.Context(), chi.URLParam(r, "donationID"), Status(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToAdminResponse(d))
	}
}

func toDonationResponse(d Request) donationResponse {
	return donationResponse{
		ID:           d.ID,
		Amount:       d.Amount,
		ContactName:  d.ContactName,
		ContactPhone: d.ContactPhone,
		ContactEmail: d.ContactEmail,
		Message:      d.Message,
		Status:       d.Status,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func ToAdminResponse(d Request) AdminDonationResponse {
	return AdminDonationResponse{
		donationResponse:   toDonationResponse(d),
		AllowedTransitions: AllowedTransitions(d),
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "donation request not found", http.StatusNotFound)
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
