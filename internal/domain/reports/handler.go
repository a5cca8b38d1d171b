package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// margen para los campos de texto del multipart además de la foto
const maxFormOverhead = 1 << 20

// RegisterRoutes monta las rutas públicas y las de admin (/admin/reports).
// admin es el middleware que exige claims de administrador.
func RegisterRoutes(r chi.Router, svc *Service, admin func(http.Handler) http.Handler) {
	r.Route("/reports", func(rr chi.Router) {
		rr.Post("/", createReportHandler(svc))
		rr.Get("/", listReportsHandler(svc))

		// Catálogo de adopción (resueltos, no agresivos)
		rr.Get("/adoptable", listAdoptableHandler(svc))

		rr.Get("/{reportID}", getReportHandler(svc))
	})

	r.Route("/admin/reports", func(ar chi.Router) {
		ar.Use(admin)
		ar.Get("/", adminListReportsHandler(svc))
		ar.Get("/{reportID}", adminGetReportHandler(svc))
		ar.Post("/{reportID}/status", updateStatusHandler(svc))
	})
}

type createReportRequest struct {
	AnimalType   string `json:"animal_type"`
	Condition    string `json:"condition"`
	Location     string `json:"location"`
	GmapsLink    string `json:"gmaps_link"`
	Description  string `json:"description"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}

type reportResponse struct {
	ID           string     `json:"id"`
	AnimalType   AnimalType `json:"animal_type"`
	Condition    Condition  `json:"condition"`
	Location     string     `json:"location"`
	GmapsLink    string     `json:"gmaps_link"`
	Description  string     `json:"description"`
	ContactName  string     `json:"contact_name"`
	ContactPhone string     `json:"contact_phone"`
	PhotoURL     *string    `json:"photo_url"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AdminReportResponse agrega los estados a los que se puede pasar.
// Lo reutiliza el overview del dashboard.
type AdminReportResponse struct {
	reportResponse
	AllowedTransitions []Status `json:"allowed_transitions"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// createReportHandler godoc
// @Summary Reportar un animal
// @Description Crea un reporte en estado pending. Acepta multipart/form-data (con `photo` opcional, JPG/PNG/WEBP hasta 5MB) o JSON sin foto.
// @Tags reports
// @Accept mpfd,json
// @Produce json
// @Param animal_type formData string true "dog, cat, bird u other"
// @Param condition formData string true "injured, aggressive, stray o accident"
// @Param location formData string true "Ubicación en texto libre"
// @Param photo formData file false "Foto del animal"
// @Success 201 {object} reportResponse
// @Failure 400 {string} string "validación"
// @Failure 502 {string} string "photo upload failed"
// @Router /reports [post]
func createReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeSubmit(w, r)
		if err != nil {
			writeError(w, err)
			return
		}

		rep, err := svc.Submit(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toReportResponse(rep))
	}
}

// decodeSubmit arma el SubmitInput según el Content-Type.
func decodeSubmit(w http.ResponseWriter, r *http.Request) (SubmitInput, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mt != "multipart/form-data" {
		var req createReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return SubmitInput{}, fmt.Errorf("%w: invalid json", ErrInvalidInput)
		}
		return SubmitInput{
			AnimalType:   req.AnimalType,
			Condition:    req.Condition,
			Location:     req.Location,
			GmapsLink:    req.GmapsLink,
			Description:  req.Description,
			ContactName:  req.ContactName,
			ContactPhone: req.ContactPhone,
		}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxPhotoSize+maxFormOverhead)
	if err := r.ParseMultipartForm(MaxPhotoSize + maxFormOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return SubmitInput{}, ErrPhotoTooLarge
		}
		return SubmitInput{}, fmt.Errorf("%w: invalid multipart form", ErrInvalidInput)
	}

	in := SubmitInput{
		AnimalType:   r.FormValue("animal_type"),
		Condition:    r.FormValue("condition"),
		Location:     r.FormValue("location"),
		GmapsLink:    r.FormValue("gmaps_link"),
		Description:  r.FormValue("description"),
		ContactName:  r.FormValue("contact_name"),
		ContactPhone: r.FormValue("contact_phone"),
	}

	file, header, err := r.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// sin foto
	case err != nil:
		return SubmitInput{}, fmt.Errorf("%w: invalid photo", ErrInvalidInput)
	default:
		// el archivo vive lo que dura el request; MultipartForm se limpia solo
		in.Photo = &Photo{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	}
	return in, nil
}

func listReportsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "failed to load reports", http.StatusInternalServerError)
			return
		}

		out := make([]reportResponse, 0, len(items))
		for _, rep := range items {
			out = append(out, toReportResponse(rep))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listAdoptableHandler godoc
// @Summary Catálogo de adopción
// @Description Reportes resueltos cuyo animal no fue marcado como agresivo, más nuevos primero.
// @Tags reports
// @Produce json
// @Success 200 {array} reportResponse
// @Failure 500 {string} string "failed to load reports"
// @Router /reports/adoptable [get]
func listAdoptableHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAdoptable(r.Context())
		if err != nil {
			http.Error(w, "failed to load reports", http.StatusInternalServerError)
			return
		}

		out := make([]reportResponse, 0, len(items))
		for _, rep := range items {
			out = append(out, toReportResponse(rep))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.GetByID(r.Context(), chi.URLParam(r, "reportID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReportResponse(rep))
	}
}

func adminListReportsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "failed to load reports", http.StatusInternalServerError)
			return
		}

		out := make([]AdminReportResponse, 0, len(items))
		for _, rep := range items {
			out = append(out, ToAdminResponse(rep))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminGetReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.GetByID(r.Context(), chi.URLParam(r, "reportID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToAdminResponse(rep))
	}
}

// updateStatusHandler godoc
// @Summary Cambiar estado de un reporte
// @Description Solo admin. El estado destino debe ser uno de los allowed_transitions del estado actual.
// @Tags admin
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token (o cookie de sesión)"
// @Param reportID path string true "ID del reporte"
// @Param payload body updateStatusRequest true "Nuevo estado"
// @Success 200 {object} AdminReportResponse
// @Failure 400 {string} string "invalid json / estado desconocido"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "report not found"
// @Failure 409 {string} string "invalid status transition"
// @Router /admin/reports/{reportID}/status [post]
func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rep, err := svc.Transition(r.Context(), chi.URLParam(r, "reportID"), Status(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToAdminResponse(rep))
	}
}

func toReportResponse(r Report) reportResponse {
	return reportResponse{
		ID:           r.ID,
		AnimalType:   r.AnimalType,
		Condition:    r.Condition,
		Location:     r.Location,
		GmapsLink:    r.GmapsLink,
		Description:  r.Description,
		ContactName:  r.ContactName,
		ContactPhone: r.ContactPhone,
		PhotoURL:     r.PhotoURL,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func ToAdminResponse(r Report) AdminReportResponse {
	return AdminReportResponse{
		reportResponse:     toReportResponse(r),
		AllowedTransitions: AllowedTransitions(r),
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPhotoTooLarge):
		http.Error(w, ErrPhotoTooLarge.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPhotoType):
		http.Error(w, ErrPhotoType.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "report not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState):
		http.Error(w, "invalid status transition", http.StatusConflict)
	case errors.Is(err, ErrUpload):
		http.Error(w, ErrUpload.Error(), http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON duplicado por módulo, igual que en el resto de los handlers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
