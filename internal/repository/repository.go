package repository

import (
	"context"
	"time"

	"github.com/felire/audio-medic-api/internal/domain"
)

// MedicRepository defines the interface for medic persistence operations.
type MedicRepository interface {
	// Create inserts a new medic and fills in the generated id.
	Create(ctx context.Context, medic *domain.Medic) error

	// GetByID retrieves a medic by id.
	GetByID(ctx context.Context, id int64) (*domain.Medic, error)

	// GetByEmail retrieves a medic by normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.Medic, error)

	// List returns all medics.
	List(ctx context.Context) ([]domain.Medic, error)

	// ListByPatient returns the medics related to the given patient.
	ListByPatient(ctx context.Context, patientID int64) ([]domain.Medic, error)

	// Update modifies an existing medic.
	Update(ctx context.Context, medic *domain.Medic) error

	// Delete removes a medic by id.
	Delete(ctx context.Context, id int64) error
}

// PatientRepository defines the interface for patient and patient-medic
// relation persistence operations.
type PatientRepository interface {
	// Create inserts a new patient and fills in the generated id.
	Create(ctx context.Context, patient *domain.Patient) error

	// GetByID retrieves a patient by id.
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)

	// GetByDocument retrieves a patient by identity document.
	GetByDocument(ctx context.Context, document string) (*domain.Patient, error)

	// List returns all patients.
	List(ctx context.Context) ([]domain.Patient, error)

	// ListByMedic returns the patients related to the given medic.
	ListByMedic(ctx context.Context, medicID int64) ([]domain.Patient, error)

	// Update modifies an existing patient.
	Update(ctx context.Context, patient *domain.Patient) error

	// Delete removes a patient by id.
	Delete(ctx context.Context, id int64) error

	// CreateRelation links a patient to a medic.
	CreateRelation(ctx context.Context, rel *domain.PatientMedic) error

	// GetRelation retrieves the relation for a (medic, patient) pair.
	GetRelation(ctx context.Context, medicID, patientID int64) (*domain.PatientMedic, error)

	// GetRelationByID retrieves a relation by its id.
	GetRelationByID(ctx context.Context, id int64) (*domain.PatientMedic, error)
}

// NoteRepository defines the interface for SOAP note persistence operations.
type NoteRepository interface {
	// Create inserts a new note and fills in the generated id.
	Create(ctx context.Context, note *domain.SoapNote) error

	// GetByID retrieves a note with its owning medic resolved through the
	// patient-medic relation.
	GetByID(ctx context.Context, id int64) (*domain.SoapNote, error)

	// ListByMedic returns all notes owned by the given medic.
	ListByMedic(ctx context.Context, medicID int64) ([]domain.SoapNote, error)

	// ListByPatient returns the given medic's notes for a patient.
	ListByPatient(ctx context.Context, medicID, patientID int64) ([]domain.SoapNote, error)

	// ListByPatientMedic returns all notes for a patient-medic relation.
	ListByPatientMedic(ctx context.Context, patientMedicID int64) ([]domain.SoapNote, error)

	// Update modifies an existing note's content and flags.
	Update(ctx context.Context, note *domain.SoapNote) error

	// Delete removes a note by id.
	Delete(ctx context.Context, id int64) error
}

// NoteTypeRepository defines the interface for note type lookups.
type NoteTypeRepository interface {
	// List returns all note types.
	List(ctx context.Context) ([]domain.NoteType, error)

	// GetByID retrieves a note type by id.
	GetByID(ctx context.Context, id int64) (*domain.NoteType, error)
}

// RefreshTokenRepository defines the interface for refresh token persistence
// operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token record and fills in the generated id.
	Create(ctx context.Context, token *domain.RefreshToken) error

	// GetByHash retrieves a refresh token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke marks the token with the given hash as revoked.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeAllForMedic revokes every token belonging to the given medic.
	RevokeAllForMedic(ctx context.Context, medicID int64) error

	// DeleteExpired removes tokens that expired before the given instant and
	// returns the number of rows removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
