package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/felire/audio-medic-api/internal/domain"
	apperrors "github.com/felire/audio-medic-api/pkg/errors"
	"github.com/felire/audio-medic-api/pkg/database"
)

// MedicRepository implements repository.MedicRepository using PostgreSQL.
type MedicRepository struct {
	db database.DBTX
}

// NewMedicRepository creates a new PostgreSQL-backed medic repository.
func NewMedicRepository(db database.DBTX) *MedicRepository {
	return &MedicRepository{db: db}
}

const medicColumns = `id, name, email, password_hash, specialty, created_at, updated_at`

// Create inserts a new medic and fills in the generated id and timestamps.
func (r *MedicRepository) Create(ctx context.Context, m *domain.Medic) error {
	query := `
		INSERT INTO medics (name, email, password_hash, specialty)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, m.Name, m.Email, m.PasswordHash, m.Specialty).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("EMAIL_ALREADY_EXISTS", "a medic with this email already exists")
		}
		return fmt.Errorf("insert medic: %w", err)
	}

	return nil
}

// GetByID retrieves a medic by id.
func (r *MedicRepository) GetByID(ctx context.Context, id int64) (*domain.Medic, error) {
	query := `SELECT ` + medicColumns + ` FROM medics WHERE id = $1`

	m, err := r.scanMedic(ctx, query, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("MEDIC_NOT_FOUND", "medic", id)
		}
		return nil, err
	}
	return m, nil
}

// GetByEmail retrieves a medic by normalized email. Returns ErrNotFound when
// no medic has the address.
func (r *MedicRepository) GetByEmail(ctx context.Context, email string) (*domain.Medic, error) {
	query := `SELECT ` + medicColumns + ` FROM medics WHERE email = $1`

	return r.scanMedic(ctx, query, email)
}

// List returns all medics ordered by id.
func (r *MedicRepository) List(ctx context.Context) ([]domain.Medic, error) {
	query := `SELECT ` + medicColumns + ` FROM medics ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list medics: %w", err)
	}
	defer rows.Close()

	return collectMedics(rows)
}

// ListByPatient returns the medics related to the given patient.
func (r *MedicRepository) ListByPatient(ctx context.Context, patientID int64) ([]domain.Medic, error) {
	query := `
		SELECT m.id, m.name, m.email, m.password_hash, m.specialty, m.created_at, m.updated_at
		FROM medics m
		JOIN patient_medic pm ON pm.medic_id = m.id
		WHERE pm.patient_id = $1
		ORDER BY m.id`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("list medics by patient: %w", err)
	}
	defer rows.Close()

	return collectMedics(rows)
}

// Update modifies an existing medic.
func (r *MedicRepository) Update(ctx context.Context, m *domain.Medic) error {
	m.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE medics
		SET name = $1, email = $2, password_hash = $3, specialty = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.db.Exec(ctx, query, m.Name, m.Email, m.PasswordHash, m.Specialty, m.UpdatedAt, m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("EMAIL_ALREADY_EXISTS", "a medic with this email already exists")
		}
		return fmt.Errorf("update medic: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("MEDIC_NOT_FOUND", "medic", m.ID)
	}

	return nil
}

// Delete removes a medic by id.
func (r *MedicRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM medics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medic: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("MEDIC_NOT_FOUND", "medic", id)
	}

	return nil
}

func (r *MedicRepository) scanMedic(ctx context.Context, query string, args ...any) (*domain.Medic, error) {
	var m domain.Medic

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.PasswordHash,
		&m.Specialty,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan medic: %w", err)
	}

	return &m, nil
}

func collectMedics(rows pgx.Rows) ([]domain.Medic, error) {
	medics := make([]domain.Medic, 0)
	for rows.Next() {
		var m domain.Medic
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.Specialty, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan medic row: %w", err)
		}
		medics = append(medics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medics: %w", err)
	}
	return medics, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
