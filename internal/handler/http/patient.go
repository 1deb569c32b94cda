package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/felire/audio-medic-api/internal/service"
	"github.com/felire/audio-medic-api/pkg/middleware"
	"github.com/felire/audio-medic-api/pkg/validator"
)

// PatientHandler handles HTTP requests for patient endpoints.
type PatientHandler struct {
	service *service.PatientService
	logger  *slog.Logger
}

// NewPatientHandler creates a new patient HTTP handler.
func NewPatientHandler(svc *service.PatientService, logger *slog.Logger) *PatientHandler {
	return &PatientHandler{service: svc, logger: logger}
}

// CreatePatientRequest is the JSON request body for creating a patient.
type CreatePatientRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Document string `json:"document" validate:"required,min=1,max=50"`
	Sex      string `json:"sex" validate:"required,oneof=M F O"`
}

// UpdatePatientRequest is the JSON request body for updating a patient.
// Absent fields are left unchanged.
type UpdatePatientRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Document *string `json:"document" validate:"omitempty,min=1,max=50"`
	Sex      *string `json:"sex" validate:"omitempty,oneof=M F O"`
}

// List handles GET /api/patients.
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.List(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, patients)
}

// Get handles GET /api/patients/{id}.
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	patient, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, patient)
}

// Create handles POST /api/patients. The creating medic is linked to the new
// patient.
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "NO_TOKEN", "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	patient, err := h.service.Create(r.Context(), principal.ID, service.CreatePatientInput{
		Name:     req.Name,
		Document: req.Document,
		Sex:      req.Sex,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusCreated, patient)
}

// Update handles PUT /api/patients/{id}.
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	patient, err := h.service.Update(r.Context(), id, service.UpdatePatientInput{
		Name:     req.Name,
		Document: req.Document,
		Sex:      req.Sex,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, patient)
}

// Delete handles DELETE /api/patients/{id}.
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// ListMedics handles GET /api/patients/{id}/medics.
func (h *PatientHandler) ListMedics(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	medics, err := h.service.ListMedics(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, medics)
}

// Assign handles POST /api/patients/{patientId}/assign: links the patient to
// the authenticated medic.
func (h *PatientHandler) Assign(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "NO_TOKEN", "authentication required")
		return
	}

	patientID, err := pathID(r, "patientId")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	rel, err := h.service.Assign(r.Context(), principal.ID, patientID)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusCreated, rel)
}
