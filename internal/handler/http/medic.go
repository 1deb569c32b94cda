package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/felire/audio-medic-api/internal/service"
	apperrors "github.com/felire/audio-medic-api/pkg/errors"
	"github.com/felire/audio-medic-api/pkg/validator"
)

// MedicHandler handles HTTP requests for medic endpoints.
type MedicHandler struct {
	service *service.MedicService
	logger  *slog.Logger
}

// NewMedicHandler creates a new medic HTTP handler.
func NewMedicHandler(svc *service.MedicService, logger *slog.Logger) *MedicHandler {
	return &MedicHandler{service: svc, logger: logger}
}

// CreateMedicRequest is the JSON request body for creating a medic.
type CreateMedicRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Specialty string `json:"specialty" validate:"max=200"`
}

// UpdateMedicRequest is the JSON request body for updating a medic. Absent
// fields are left unchanged.
type UpdateMedicRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Specialty *string `json:"specialty" validate:"omitempty,max=200"`
}

// List handles GET /api/medics.
func (h *MedicHandler) List(w http.ResponseWriter, r *http.Request) {
	medics, err := h.service.List(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, medics)
}

// Get handles GET /api/medics/{id}.
func (h *MedicHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	medic, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, medic)
}

// Create handles POST /api/medics.
func (h *MedicHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateMedicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	medic, err := h.service.Create(r.Context(), service.CreateMedicInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Specialty: req.Specialty,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusCreated, medic)
}

// Update handles PUT /api/medics/{id}.
func (h *MedicHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdateMedicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	medic, err := h.service.Update(r.Context(), id, service.UpdateMedicInput{
		Name:      req.Name,
		Email:     req.Email,
		Specialty: req.Specialty,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, medic)
}

// Delete handles DELETE /api/medics/{id}.
func (h *MedicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListPatients handles GET /api/medics/{id}/patients.
func (h *MedicHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	patients, err := h.service.ListPatients(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, patients)
}

// pathID parses a numeric id path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.InvalidInput("invalid " + name + " path parameter")
	}
	return id, nil
}
