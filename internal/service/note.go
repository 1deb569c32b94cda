package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felire/audio-medic-api/internal/domain"
	"github.com/felire/audio-medic-api/internal/event"
	"github.com/felire/audio-medic-api/internal/repository"
	apperrors "github.com/felire/audio-medic-api/pkg/errors"
)

// NoteService manages SOAP notes. Every operation is scoped to the calling
// medic: a note is only reachable through its patient-medic relation.
type NoteService struct {
	noteRepo     repository.NoteRepository
	noteTypeRepo repository.NoteTypeRepository
	patientRepo  repository.PatientRepository
	producer     event.Publisher
	logger       *slog.Logger
}

// NewNoteService creates a new SOAP note service.
func NewNoteService(
	noteRepo repository.NoteRepository,
	noteTypeRepo repository.NoteTypeRepository,
	patientRepo repository.PatientRepository,
	producer event.Publisher,
	logger *slog.Logger,
) *NoteService {
	return &NoteService{
		noteRepo:     noteRepo,
		noteTypeRepo: noteTypeRepo,
		patientRepo:  patientRepo,
		producer:     producer,
		logger:       logger,
	}
}

// CreateNoteInput holds the fields for creating a SOAP note.
type CreateNoteInput struct {
	PatientID   int64
	NoteTypeID  int64
	Content     string
	DateCreated time.Time
}

// UpdateNoteInput holds the updatable note fields. Nil fields are left
// unchanged.
type UpdateNoteInput struct {
	NoteTypeID *int64
	Content    *string
}

// Create adds a note for the given medic and patient. The patient-medic
// relation is created implicitly on the first note for the pair.
func (s *NoteService) Create(ctx context.Context, medicID int64, input CreateNoteInput) (*domain.SoapNote, error) {
	if input.Content == "" {
		return nil, apperrors.InvalidInput("content is required")
	}

	if _, err := s.patientRepo.GetByID(ctx, input.PatientID); err != nil {
		return nil, err
	}
	if _, err := s.noteTypeRepo.GetByID(ctx, input.NoteTypeID); err != nil {
		return nil, err
	}

	rel, err := s.patientRepo.GetRelation(ctx, medicID, input.PatientID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("look up patient-medic relation: %w", err)
		}
		rel = &domain.PatientMedic{
			MedicID:               medicID,
			PatientID:             input.PatientID,
			DateFirstConsultation: time.Now().UTC(),
		}
		if err := s.patientRepo.CreateRelation(ctx, rel); err != nil {
			return nil, fmt.Errorf("create patient-medic relation: %w", err)
		}
	}

	dateCreated := input.DateCreated
	if dateCreated.IsZero() {
		dateCreated = time.Now().UTC()
	}

	note := &domain.SoapNote{
		PatientMedicID: rel.ID,
		NoteTypeID:     input.NoteTypeID,
		Content:        input.Content,
		DateCreated:    dateCreated,
		MedicID:        medicID,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "soap note created",
		slog.Int64("note_id", note.ID),
		slog.Int64("medic_id", medicID),
		slog.Int64("patient_id", input.PatientID),
	)

	return note, nil
}

// Get returns a note if the medic owns it. Existence is checked before
// ownership, so a non-owner learns the note exists but nothing more.
func (s *NoteService) Get(ctx context.Context, medicID, noteID int64) (*domain.SoapNote, error) {
	return s.getOwned(ctx, medicID, noteID)
}

// List returns all notes owned by the medic.
func (s *NoteService) List(ctx context.Context, medicID int64) ([]domain.SoapNote, error) {
	return s.noteRepo.ListByMedic(ctx, medicID)
}

// ListByPatient returns the medic's notes for the given patient.
func (s *NoteService) ListByPatient(ctx context.Context, medicID, patientID int64) ([]domain.SoapNote, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.noteRepo.ListByPatient(ctx, medicID, patientID)
}

// ListByPatientMedic returns all notes for a relation the medic owns.
func (s *NoteService) ListByPatientMedic(ctx context.Context, medicID, patientMedicID int64) ([]domain.SoapNote, error) {
	rel, err := s.patientRepo.GetRelationByID(ctx, patientMedicID)
	if err != nil {
		return nil, err
	}
	if rel.MedicID != medicID {
		return nil, apperrors.Forbidden("you do not have access to this patient-medic relation")
	}
	return s.noteRepo.ListByPatientMedic(ctx, patientMedicID)
}

// Update modifies a note's content or type. Signed notes are immutable; a
// successful update marks the note edited.
func (s *NoteService) Update(ctx context.Context, medicID, noteID int64, input UpdateNoteInput) (*domain.SoapNote, error) {
	note, err := s.getOwned(ctx, medicID, noteID)
	if err != nil {
		return nil, err
	}
	if note.Signed {
		return nil, apperrors.InvalidState("NOTE_SIGNED", "a signed note cannot be modified")
	}

	if input.NoteTypeID != nil {
		if _, err := s.noteTypeRepo.GetByID(ctx, *input.NoteTypeID); err != nil {
			return nil, err
		}
		note.NoteTypeID = *input.NoteTypeID
	}
	if input.Content != nil {
		if *input.Content == "" {
			return nil, apperrors.InvalidInput("content cannot be empty")
		}
		note.Content = *input.Content
	}
	note.Edited = true

	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

// Delete removes a note. Signed notes cannot be deleted.
func (s *NoteService) Delete(ctx context.Context, medicID, noteID int64) error {
	note, err := s.getOwned(ctx, medicID, noteID)
	if err != nil {
		return err
	}
	if note.Signed {
		return apperrors.InvalidState("NOTE_SIGNED", "a signed note cannot be deleted")
	}

	return s.noteRepo.Delete(ctx, noteID)
}

// Sign marks a note as signed. Signing is irreversible and can happen once.
func (s *NoteService) Sign(ctx context.Context, medicID, noteID int64) (*domain.SoapNote, error) {
	note, err := s.getOwned(ctx, medicID, noteID)
	if err != nil {
		return nil, err
	}
	if note.Signed {
		return nil, apperrors.InvalidState("NOTE_ALREADY_SIGNED", "the note is already signed")
	}

	note.Signed = true
	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	if err := s.producer.PublishNoteSigned(ctx, note); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish note.signed event",
			slog.Int64("note_id", note.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "soap note signed",
		slog.Int64("note_id", note.ID),
		slog.Int64("medic_id", medicID),
	)

	return note, nil
}

// ListNoteTypes returns the available note types.
func (s *NoteService) ListNoteTypes(ctx context.Context) ([]domain.NoteType, error) {
	return s.noteTypeRepo.List(ctx)
}

// getOwned loads a note and enforces ownership, checking existence first.
func (s *NoteService) getOwned(ctx context.Context, medicID, noteID int64) (*domain.SoapNote, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.MedicID != medicID {
		return nil, apperrors.Forbidden("you do not have access to this note")
	}
	return note, nil
}
