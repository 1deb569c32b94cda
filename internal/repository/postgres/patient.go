package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/felire/audio-medic-api/internal/domain"
	"github.com/felire/audio-medic-api/pkg/database"
	apperrors "github.com/felire/audio-medic-api/pkg/errors"
)

// PatientRepository implements repository.PatientRepository using PostgreSQL.
type PatientRepository struct {
	db database.DBTX
}

// NewPatientRepository creates a new PostgreSQL-backed patient repository.
func NewPatientRepository(db database.DBTX) *PatientRepository {
	return &PatientRepository{db: db}
}

const patientColumns = `id, name, document, sex, created_at, updated_at`

// Create inserts a new patient and fills in the generated id and timestamps.
func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	query := `
		INSERT INTO patients (name, document, sex)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, p.Name, p.Document, p.Sex).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("DOCUMENT_ALREADY_EXISTS", "a patient with this document already exists")
		}
		return fmt.Errorf("insert patient: %w", err)
	}

	return nil
}

// GetByID retrieves a patient by id.
func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	p, err := r.scanPatient(ctx, query, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("PATIENT_NOT_FOUND", "patient", id)
		}
		return nil, err
	}
	return p, nil
}

// GetByDocument retrieves a patient by identity document. Returns ErrNotFound
// when no patient has the document.
func (r *PatientRepository) GetByDocument(ctx context.Context, document string) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE document = $1`

	return r.scanPatient(ctx, query, document)
}

// List returns all patients ordered by id.
func (r *PatientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	return collectPatients(rows)
}

// ListByMedic returns the patients related to the given medic.
func (r *PatientRepository) ListByMedic(ctx context.Context, medicID int64) ([]domain.Patient, error) {
	query := `
		SELECT p.id, p.name, p.document, p.sex, p.created_at, p.updated_at
		FROM patients p
		JOIN patient_medic pm ON pm.patient_id = p.id
		WHERE pm.medic_id = $1
		ORDER BY p.id`

	rows, err := r.db.Query(ctx, query, medicID)
	if err != nil {
		return nil, fmt.Errorf("list patients by medic: %w", err)
	}
	defer rows.Close()

	return collectPatients(rows)
}

// Update modifies an existing patient.
func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE patients
		SET name = $1, document = $2, sex = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.db.Exec(ctx, query, p.Name, p.Document, p.Sex, p.UpdatedAt, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("DOCUMENT_ALREADY_EXISTS", "a patient with this document already exists")
		}
		return fmt.Errorf("update patient: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("PATIENT_NOT_FOUND", "patient", p.ID)
	}

	return nil
}

// Delete removes a patient by id.
func (r *PatientRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("PATIENT_NOT_FOUND", "patient", id)
	}

	return nil
}

// CreateRelation links a patient to a medic.
func (r *PatientRepository) CreateRelation(ctx context.Context, rel *domain.PatientMedic) error {
	query := `
		INSERT INTO patient_medic (medic_id, patient_id, date_first_consultation)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, rel.MedicID, rel.PatientID, rel.DateFirstConsultation).
		Scan(&rel.ID, &rel.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("RELATION_ALREADY_EXISTS", "the patient is already assigned to this medic")
		}
		return fmt.Errorf("insert patient-medic relation: %w", err)
	}

	return nil
}

const relationColumns = `id, medic_id, patient_id, date_first_consultation, created_at`

// GetRelation retrieves the relation for a (medic, patient) pair. Returns
// ErrNotFound when the pair is not linked.
func (r *PatientRepository) GetRelation(ctx context.Context, medicID, patientID int64) (*domain.PatientMedic, error) {
	query := `SELECT ` + relationColumns + ` FROM patient_medic WHERE medic_id = $1 AND patient_id = $2`

	return r.scanRelation(ctx, query, medicID, patientID)
}

// GetRelationByID retrieves a relation by its id.
func (r *PatientRepository) GetRelationByID(ctx context.Context, id int64) (*domain.PatientMedic, error) {
	query := `SELECT ` + relationColumns + ` FROM patient_medic WHERE id = $1`

	rel, err := r.scanRelation(ctx, query, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("RELATION_NOT_FOUND", "patient-medic relation", id)
		}
		return nil, err
	}
	return rel, nil
}

func (r *PatientRepository) scanPatient(ctx context.Context, query string, args ...any) (*domain.Patient, error) {
	var p domain.Patient

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Name,
		&p.Document,
		&p.Sex,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}

	return &p, nil
}

func (r *PatientRepository) scanRelation(ctx context.Context, query string, args ...any) (*domain.PatientMedic, error) {
	var rel domain.PatientMedic

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&rel.ID,
		&rel.MedicID,
		&rel.PatientID,
		&rel.DateFirstConsultation,
		&rel.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan patient-medic relation: %w", err)
	}

	return &rel, nil
}

func collectPatients(rows pgx.Rows) ([]domain.Patient, error) {
	patients := make([]domain.Patient, 0)
	for rows.Next() {
		var p domain.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Document, &p.Sex, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan patient row: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return patients, nil
}
