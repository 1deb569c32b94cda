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

// NoteRepository implements repository.NoteRepository using PostgreSQL.
type NoteRepository struct {
	db database.DBTX
}

// NewNoteRepository creates a new PostgreSQL-backed SOAP note repository.
func NewNoteRepository(db database.DBTX) *NoteRepository {
	return &NoteRepository{db: db}
}

// noteColumns selects note fields plus the owning medic resolved through the
// patient-medic relation.
const noteColumns = `
	n.id, n.patient_medic_id, n.note_type_id, n.content, n.date_created,
	n.edited, n.signed, n.created_at, n.updated_at, pm.medic_id`

// Create inserts a new note and fills in the generated id and timestamps.
func (r *NoteRepository) Create(ctx context.Context, n *domain.SoapNote) error {
	query := `
		INSERT INTO soap_notes (patient_medic_id, note_type_id, content, date_created)
		VALUES ($1, $2, $3, $4)
		RETURNING id, edited, signed, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, n.PatientMedicID, n.NoteTypeID, n.Content, n.DateCreated).
		Scan(&n.ID, &n.Edited, &n.Signed, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert soap note: %w", err)
	}

	return nil
}

// GetByID retrieves a note with its owning medic.
func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*domain.SoapNote, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM soap_notes n
		JOIN patient_medic pm ON pm.id = n.patient_medic_id
		WHERE n.id = $1`

	var n domain.SoapNote
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID,
		&n.PatientMedicID,
		&n.NoteTypeID,
		&n.Content,
		&n.DateCreated,
		&n.Edited,
		&n.Signed,
		&n.CreatedAt,
		&n.UpdatedAt,
		&n.MedicID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("NOTE_NOT_FOUND", "soap note", id)
		}
		return nil, fmt.Errorf("scan soap note: %w", err)
	}

	return &n, nil
}

// ListByMedic returns all notes owned by the given medic, newest first.
func (r *NoteRepository) ListByMedic(ctx context.Context, medicID int64) ([]domain.SoapNote, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM soap_notes n
		JOIN patient_medic pm ON pm.id = n.patient_medic_id
		WHERE pm.medic_id = $1
		ORDER BY n.date_created DESC, n.id DESC`

	return r.listNotes(ctx, query, medicID)
}

// ListByPatient returns the given medic's notes for a patient, newest first.
func (r *NoteRepository) ListByPatient(ctx context.Context, medicID, patientID int64) ([]domain.SoapNote, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM soap_notes n
		JOIN patient_medic pm ON pm.id = n.patient_medic_id
		WHERE pm.medic_id = $1 AND pm.patient_id = $2
		ORDER BY n.date_created DESC, n.id DESC`

	return r.listNotes(ctx, query, medicID, patientID)
}

// ListByPatientMedic returns all notes for a patient-medic relation, newest
// first.
func (r *NoteRepository) ListByPatientMedic(ctx context.Context, patientMedicID int64) ([]domain.SoapNote, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM soap_notes n
		JOIN patient_medic pm ON pm.id = n.patient_medic_id
		WHERE n.patient_medic_id = $1
		ORDER BY n.date_created DESC, n.id DESC`

	return r.listNotes(ctx, query, patientMedicID)
}

// Update modifies an existing note's content and flags.
func (r *NoteRepository) Update(ctx context.Context, n *domain.SoapNote) error {
	n.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE soap_notes
		SET note_type_id = $1, content = $2, edited = $3, signed = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.db.Exec(ctx, query, n.NoteTypeID, n.Content, n.Edited, n.Signed, n.UpdatedAt, n.ID)
	if err != nil {
		return fmt.Errorf("update soap note: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("NOTE_NOT_FOUND", "soap note", n.ID)
	}

	return nil
}

// Delete removes a note by id.
func (r *NoteRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM soap_notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete soap note: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("NOTE_NOT_FOUND", "soap note", id)
	}

	return nil
}

func (r *NoteRepository) listNotes(ctx context.Context, query string, args ...any) ([]domain.SoapNote, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list soap notes: %w", err)
	}
	defer rows.Close()

	notes := make([]domain.SoapNote, 0)
	for rows.Next() {
		var n domain.SoapNote
		err := rows.Scan(
			&n.ID,
			&n.PatientMedicID,
			&n.NoteTypeID,
			&n.Content,
			&n.DateCreated,
			&n.Edited,
			&n.Signed,
			&n.CreatedAt,
			&n.UpdatedAt,
			&n.MedicID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan soap note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate soap notes: %w", err)
	}

	return notes, nil
}

// NoteTypeRepository implements repository.NoteTypeRepository using
// PostgreSQL.
type NoteTypeRepository struct {
	db database.DBTX
}

// NewNoteTypeRepository creates a new PostgreSQL-backed note type repository.
func NewNoteTypeRepository(db database.DBTX) *NoteTypeRepository {
	return &NoteTypeRepository{db: db}
}

// List returns all note types ordered by id.
func (r *NoteTypeRepository) List(ctx context.Context) ([]domain.NoteType, error) {
	query := `SELECT id, name, description, prompt, created_at FROM note_types ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list note types: %w", err)
	}
	defer rows.Close()

	types := make([]domain.NoteType, 0)
	for rows.Next() {
		var nt domain.NoteType
		if err := rows.Scan(&nt.ID, &nt.Name, &nt.Description, &nt.Prompt, &nt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note type row: %w", err)
		}
		types = append(types, nt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note types: %w", err)
	}

	return types, nil
}

// GetByID retrieves a note type by id.
func (r *NoteTypeRepository) GetByID(ctx context.Context, id int64) (*domain.NoteType, error) {
	query := `SELECT id, name, description, prompt, created_at FROM note_types WHERE id = $1`

	var nt domain.NoteType
	err := r.db.QueryRow(ctx, query, id).Scan(&nt.ID, &nt.Name, &nt.Description, &nt.Prompt, &nt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("NOTE_TYPE_NOT_FOUND", "note type", id)
		}
		return nil, fmt.Errorf("scan note type: %w", err)
	}

	return &nt, nil
}
