package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felire/audio-medic-api/internal/domain"
	apperrors "github.com/felire/audio-medic-api/pkg/errors"
)

func newNoteTestFixture(t *testing.T) (*NoteRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewNoteRepository(mock)
	return repo, mock
}

func noteRowColumns() []string {
	return []string{
		"id", "patient_medic_id", "note_type_id", "content", "date_created",
		"edited", "signed", "created_at", "updated_at", "medic_id",
	}
}

func TestNoteRepository_Create(t *testing.T) {
	repo, mock := newNoteTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC()
	note := &domain.SoapNote{
		PatientMedicID: 5,
		NoteTypeID:     1,
		Content:        "S: patient reports tinnitus.",
		DateCreated:    now,
	}

	mock.ExpectQuery("INSERT INTO soap_notes").
		WithArgs(note.PatientMedicID, note.NoteTypeID, note.Content, note.DateCreated).
		WillReturnRows(pgxmock.NewRows([]string{"id", "edited", "signed", "created_at", "updated_at"}).
			AddRow(int64(10), false, false, now, now))

	err := repo.Create(context.Background(), note)
	require.NoError(t, err)
	assert.Equal(t, int64(10), note.ID)
	assert.False(t, note.Signed)
}

func TestNoteRepository_GetByID_ResolvesOwner(t *testing.T) {
	repo, mock := newNoteTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM soap_notes n").
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows(noteRowColumns()).
			AddRow(int64(10), int64(5), int64(1), "S: patient reports tinnitus.", now, false, false, now, now, int64(7)))

	note, err := repo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), note.PatientMedicID)
	assert.Equal(t, int64(7), note.MedicID)
}

func TestNoteRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newNoteTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM soap_notes n").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOTE_NOT_FOUND", appErr.Code)
}

func TestNoteRepository_ListByPatient(t *testing.T) {
	repo, mock := newNoteTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM soap_notes n").
		WithArgs(int64(7), int64(3)).
		WillReturnRows(pgxmock.NewRows(noteRowColumns()).
			AddRow(int64(11), int64(5), int64(1), "follow up", now, false, true, now, now, int64(7)).
			AddRow(int64(10), int64(5), int64(1), "first visit", now.Add(-time.Hour), true, false, now, now, int64(7)))

	notes, err := repo.ListByPatient(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.True(t, notes[0].Signed)
	assert.True(t, notes[1].Edited)
}

func TestNoteRepository_Update_NotFound(t *testing.T) {
	repo, mock := newNoteTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE soap_notes").
		WithArgs(int64(1), "edited content", true, false, pgxmock.AnyArg(), int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &domain.SoapNote{
		ID:         99,
		NoteTypeID: 1,
		Content:    "edited content",
		Edited:     true,
	})

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOTE_NOT_FOUND", appErr.Code)
}

func TestNoteRepository_Delete(t *testing.T) {
	repo, mock := newNoteTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM soap_notes").
		WithArgs(int64(10)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), 10))
}

func TestNoteTypeRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewNoteTypeRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM note_types").
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(context.Background(), 42)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOTE_TYPE_NOT_FOUND", appErr.Code)
}
