package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/felire/audio-medic-api/internal/domain"
	"github.com/felire/audio-medic-api/internal/repository"
	apperrors "github.com/felire/audio-medic-api/pkg/errors"
)

// MedicService manages medic records.
type MedicService struct {
	medicRepo   repository.MedicRepository
	patientRepo repository.PatientRepository
	logger      *slog.Logger
}

// NewMedicService creates a new medic service.
func NewMedicService(
	medicRepo repository.MedicRepository,
	patientRepo repository.PatientRepository,
	logger *slog.Logger,
) *MedicService {
	return &MedicService{
		medicRepo:   medicRepo,
		patientRepo: patientRepo,
		logger:      logger,
	}
}

// CreateMedicInput holds the fields for creating a medic directly.
type CreateMedicInput struct {
	Name      string
	Email     string
	Password  string
	Specialty string
}

// UpdateMedicInput holds the updatable medic fields. Nil fields are left
// unchanged.
type UpdateMedicInput struct {
	Name      *string
	Email     *string
	Specialty *string
}

// List returns all medics.
func (s *MedicService) List(ctx context.Context) ([]domain.Medic, error) {
	return s.medicRepo.List(ctx)
}

// GetByID returns a medic by id.
func (s *MedicService) GetByID(ctx context.Context, id int64) (*domain.Medic, error) {
	return s.medicRepo.GetByID(ctx, id)
}

// Create adds a medic record without opening a session.
func (s *MedicService) Create(ctx context.Context, input CreateMedicInput) (*domain.Medic, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(input.Email)
	if _, err := s.medicRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("EMAIL_ALREADY_EXISTS", "a medic with this email already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	medic := &domain.Medic{
		Name:         input.Name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Specialty:    input.Specialty,
	}

	if err := s.medicRepo.Create(ctx, medic); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "medic created",
		slog.Int64("medic_id", medic.ID),
	)

	return medic, nil
}

// Update modifies a medic record.
func (s *MedicService) Update(ctx context.Context, id int64, input UpdateMedicInput) (*domain.Medic, error) {
	medic, err := s.medicRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		if email != medic.Email {
			if other, err := s.medicRepo.GetByEmail(ctx, email); err == nil && other.ID != id {
				return nil, apperrors.Conflict("EMAIL_ALREADY_EXISTS", "a medic with this email already exists")
			} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("check existing email: %w", err)
			}
		}
		medic.Email = email
	}
	if input.Name != nil {
		medic.Name = *input.Name
	}
	if input.Specialty != nil {
		medic.Specialty = *input.Specialty
	}

	if err := s.medicRepo.Update(ctx, medic); err != nil {
		return nil, err
	}

	return medic, nil
}

// Delete removes a medic record.
func (s *MedicService) Delete(ctx context.Context, id int64) error {
	return s.medicRepo.Delete(ctx, id)
}

// ListPatients returns the patients related to the given medic.
func (s *MedicService) ListPatients(ctx context.Context, medicID int64) ([]domain.Patient, error) {
	if _, err := s.medicRepo.GetByID(ctx, medicID); err != nil {
		return nil, err
	}
	return s.patientRepo.ListByMedic(ctx, medicID)
}
