package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felire/audio-medic-api/internal/domain"
	"github.com/felire/audio-medic-api/internal/repository"
	apperrors "github.com/felire/audio-medic-api/pkg/errors"
)

// PatientService manages patient records and patient-medic relations.
type PatientService struct {
	patientRepo repository.PatientRepository
	medicRepo   repository.MedicRepository
	logger      *slog.Logger
}

// NewPatientService creates a new patient service.
func NewPatientService(
	patientRepo repository.PatientRepository,
	medicRepo repository.MedicRepository,
	logger *slog.Logger,
) *PatientService {
	return &PatientService{
		patientRepo: patientRepo,
		medicRepo:   medicRepo,
		logger:      logger,
	}
}

// CreatePatientInput holds the fields for creating a patient.
type CreatePatientInput struct {
	Name     string
	Document string
	Sex      string
}

// UpdatePatientInput holds the updatable patient fields. Nil fields are left
// unchanged.
type UpdatePatientInput struct {
	Name     *string
	Document *string
	Sex      *string
}

// List returns all patients.
func (s *PatientService) List(ctx context.Context) ([]domain.Patient, error) {
	return s.patientRepo.List(ctx)
}

// GetByID returns a patient by id.
func (s *PatientService) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	return s.patientRepo.GetByID(ctx, id)
}

// Create adds a patient and links it to the creating medic.
func (s *PatientService) Create(ctx context.Context, medicID int64, input CreatePatientInput) (*domain.Patient, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Document == "" {
		return nil, apperrors.InvalidInput("document is required")
	}
	if !domain.IsValidSex(input.Sex) {
		return nil, apperrors.InvalidInput("sex must be one of M, F, O")
	}

	if _, err := s.patientRepo.GetByDocument(ctx, input.Document); err == nil {
		return nil, apperrors.Conflict("DOCUMENT_ALREADY_EXISTS", "a patient with this document already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing document: %w", err)
	}

	patient := &domain.Patient{
		Name:     input.Name,
		Document: input.Document,
		Sex:      input.Sex,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}

	// The creating medic becomes the patient's first treating medic.
	rel := &domain.PatientMedic{
		MedicID:               medicID,
		PatientID:             patient.ID,
		DateFirstConsultation: time.Now().UTC(),
	}
	if err := s.patientRepo.CreateRelation(ctx, rel); err != nil && !errors.Is(err, apperrors.ErrConflict) {
		return nil, fmt.Errorf("link patient to creating medic: %w", err)
	}

	s.logger.InfoContext(ctx, "patient created",
		slog.Int64("patient_id", patient.ID),
		slog.Int64("medic_id", medicID),
	)

	return patient, nil
}

// Update modifies a patient record.
func (s *PatientService) Update(ctx context.Context, id int64, input UpdatePatientInput) (*domain.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Document != nil && *input.Document != patient.Document {
		if other, err := s.patientRepo.GetByDocument(ctx, *input.Document); err == nil && other.ID != id {
			return nil, apperrors.Conflict("DOCUMENT_ALREADY_EXISTS", "a patient with this document already exists")
		} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("check existing document: %w", err)
		}
		patient.Document = *input.Document
	}
	if input.Name != nil {
		patient.Name = *input.Name
	}
	if input.Sex != nil {
		if !domain.IsValidSex(*input.Sex) {
			return nil, apperrors.InvalidInput("sex must be one of M, F, O")
		}
		patient.Sex = *input.Sex
	}

	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return nil, err
	}

	return patient, nil
}

// Delete removes a patient record.
func (s *PatientService) Delete(ctx context.Context, id int64) error {
	return s.patientRepo.Delete(ctx, id)
}

// ListMedics returns the medics related to the given patient.
func (s *PatientService) ListMedics(ctx context.Context, patientID int64) ([]domain.Medic, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.medicRepo.ListByPatient(ctx, patientID)
}

// Assign links an existing patient to the given medic.
func (s *PatientService) Assign(ctx context.Context, medicID, patientID int64) (*domain.PatientMedic, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	rel := &domain.PatientMedic{
		MedicID:               medicID,
		PatientID:             patientID,
		DateFirstConsultation: time.Now().UTC(),
	}
	if err := s.patientRepo.CreateRelation(ctx, rel); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "patient assigned to medic",
		slog.Int64("patient_id", patientID),
		slog.Int64("medic_id", medicID),
	)

	return rel, nil
}
