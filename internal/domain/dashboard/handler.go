package dashboard

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animal-rescue/internal/domain/adoptions"
	"animal-rescue/internal/domain/donations"
	"animal-rescue/internal/domain/hospitals"
	"animal-rescue/internal/domain/reports"
	"animal-rescue/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

// RegisterRoutes monta login/logout (públicos) y el overview (admin).
// Las rutas /admin/<kind> las registra cada dominio.
func RegisterRoutes(r chi.Router, svc *Service, store sessions.Store, admin func(http.Handler) http.Handler) {
	r.Post("/admin/login", loginHandler(svc, store))
	r.Post("/admin/logout", logoutHandler(svc, store))
	r.With(admin).Get("/admin/overview", overviewHandler(svc))
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type overviewResponse struct {
	Stats     Stats                             `json:"stats"`
	Reports   []reports.AdminReportResponse     `json:"reports"`
	Adoptions []adoptions.AdminAdoptionResponse `json:"adoptions"`
	Donations []donations.AdminDonationResponse `json:"donations"`
	Hospitals []hospitals.AdminHospitalResponse `json:"hospitals"`
}

// loginHandler godoc
// @Summary Login del dashboard
// @Description Devuelve un token firmado y lo guarda en la cookie de sesión.
// @Tags admin
// @Accept json
// @Produce json
// @Param payload body loginRequest true "contraseña del dashboard"
// @Success 200 {object} loginResponse
// @Failure 401 {string} string "access denied"
// @Failure 429 {string} string "too many failed attempts"
// @Router /admin/login [post]
func loginHandler(svc *Service, store sessions.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sess, err := svc.Login(r.Context(), clientKey(r), req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		if store != nil {
			// Get puede fallar con una cookie vieja firmada con otra key; igual
			// devuelve una sesión nueva que sí se puede guardar.
			cs, _ := store.Get(r, middleware.SessionName)
			cs.Values[middleware.SessionTokenKey] = sess.Token
			cs.Options = &sessions.Options{
				Path:     "/",
				MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			}
			if err := cs.Save(r, w); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
	}
}

// logoutHandler godoc
// @Summary Logout del dashboard
// @Description Borra la cookie de sesión y revoca el token (Bearer o cookie) hasta que venza.
// @Tags admin
// @Success 204
// @Router /admin/logout [post]
func logoutHandler(svc *Service, store sessions.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Logout(r.Context(), middleware.RequestToken(r, store))

		if store != nil {
			cs, _ := store.Get(r, middleware.SessionName)
			delete(cs.Values, middleware.SessionTokenKey)
			cs.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
			_ = cs.Save(r, w)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// overviewHandler godoc
// @Summary Vista general del dashboard
// @Description Las cuatro colas (más nuevas primero) con sus transiciones permitidas y las estadísticas.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} overviewResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "failed to load dashboard data"
// @Router /admin/overview [get]
func overviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ov, err := svc.Overview(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		out := overviewResponse{
			Stats:     ov.Stats,
			Reports:   make([]reports.AdminReportResponse, 0, len(ov.Reports)),
			Adoptions: make([]adoptions.AdminAdoptionResponse, 0, len(ov.Adoptions)),
			Donations: make([]donations.AdminDonationResponse, 0, len(ov.Donations)),
			Hospitals: make([]hospitals.AdminHospitalResponse, 0, len(ov.Hospitals)),
		}
		for _, x := range ov.Reports {
			out.Reports = append(out.Reports, reports.ToAdminResponse(x))
		}
		for _, x := range ov.Adoptions {
			out.Adoptions = append(out.Adoptions, adoptions.ToAdminResponse(x))
		}
		for _, x := range ov.Donations {
			out.Donations = append(out.Donations, donations.ToAdminResponse(x))
		}
		for _, x := range ov.Hospitals {
			out.Hospitals = append(out.Hospitals, hospitals.ToAdminResponse(x))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// clientKey usa RemoteAddr; middleware.ClientIP solo lo reescribe si la
// conexión viene de un proxy confiable.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func writeError(w http.ResponseWriter, err error) {
	var locked *LockedError
	switch {
	case errors.As(err, &locked):
		secs := int(time.Until(locked.Until).Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, ErrAccessDenied):
		http.Error(w, "access denied", http.StatusUnauthorized)
	case errors.Is(err, ErrLoadFailed):
		http.Error(w, ErrLoadFailed.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
