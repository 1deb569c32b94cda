package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/felire/audio-medic-api/internal/service"
	"github.com/felire/audio-medic-api/pkg/middleware"
	"github.com/felire/audio-medic-api/pkg/validator"
)

// NoteHandler handles HTTP requests for SOAP note endpoints.
type NoteHandler struct {
	service *service.NoteService
	logger  *slog.Logger
}

// NewNoteHandler creates a new SOAP note HTTP handler.
func NewNoteHandler(svc *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{service: svc, logger: logger}
}

// CreateNoteRequest is the JSON request body for creating a note.
type CreateNoteRequest struct {
	PatientID   int64      `json:"patient_id" validate:"required,gt=0"`
	NoteTypeID  int64      `json:"note_type_id" validate:"required,gt=0"`
	Content     string     `json:"content" validate:"required"`
	DateCreated *time.Time `json:"date_created"`
}

// UpdateNoteRequest is the JSON request body for updating a note. Absent
// fields are left unchanged.
type UpdateNoteRequest struct {
	NoteTypeID *int64  `json:"note_type_id" validate:"omitempty,gt=0"`
	Content    *string `json:"content"`
}

// principalOr401 extracts the authenticated medic or writes a 401.
func principalOr401(w http.ResponseWriter, r *http.Request) (*middleware.Principal, bool) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "NO_TOKEN", "authentication required")
		return nil, false
	}
	return principal, true
}

// Create handles POST /api/soap-notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	input := service.CreateNoteInput{
		PatientID:  req.PatientID,
		NoteTypeID: req.NoteTypeID,
		Content:    req.Content,
	}
	if req.DateCreated != nil {
		input.DateCreated = *req.DateCreated
	}

	note, err := h.service.Create(r.Context(), principal.ID, input)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusCreated, note)
}

// List handles GET /api/soap-notes: all notes owned by the caller.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	notes, err := h.service.List(r.Context(), principal.ID)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, notes)
}

// Get handles GET /api/soap-notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	note, err := h.service.Get(r.Context(), principal.ID, id)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, note)
}

// Update handles PUT /api/soap-notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	note, err := h.service.Update(r.Context(), principal.ID, id, service.UpdateNoteInput{
		NoteTypeID: req.NoteTypeID,
		Content:    req.Content,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, note)
}

// Delete handles DELETE /api/soap-notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), principal.ID, id); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Sign handles PUT /api/soap-notes/{id}/sign.
func (h *NoteHandler) Sign(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	note, err := h.service.Sign(r.Context(), principal.ID, id)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, note)
}

// ListByPatient handles GET /api/soap-notes/patient/{patientId}.
func (h *NoteHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	patientID, err := pathID(r, "patientId")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	notes, err := h.service.ListByPatient(r.Context(), principal.ID, patientID)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, notes)
}

// ListByPatientMedic handles GET /api/soap-notes/patient-medic/{patientMedicId}.
func (h *NoteHandler) ListByPatientMedic(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	relID, err := pathID(r, "patientMedicId")
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	notes, err := h.service.ListByPatientMedic(r.Context(), principal.ID, relID)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, notes)
}

// ListNoteTypes handles GET /api/note-types.
func (h *NoteHandler) ListNoteTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListNoteTypes(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, types)
}
