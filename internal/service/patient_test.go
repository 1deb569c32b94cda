package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felire/audio-medic-api/internal/domain"
	apperrors "github.com/felire/audio-medic-api/pkg/errors"
)

type patientFixture struct {
	svc         *PatientService
	patientRepo *mockPatientRepository
	medicRepo   *mockMedicRepository
}

func newPatientFixture(t *testing.T) *patientFixture {
	t.Helper()
	patientRepo := &mockPatientRepository{}
	medicRepo := &mockMedicRepository{}
	return &patientFixture{
		svc:         NewPatientService(patientRepo, medicRepo, testLogger()),
		patientRepo: patientRepo,
		medicRepo:   medicRepo,
	}
}

func TestPatientCreate_LinksCreatingMedic(t *testing.T) {
	f := newPatientFixture(t)
	ctx := context.Background()

	f.patientRepo.On("GetByDocument", ctx, "30123456").Return(nil, apperrors.ErrNotFound)
	f.patientRepo.On("Create", ctx, mock.AnythingOfType("*domain.Patient")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Patient).ID = 3
	}).Return(nil)
	f.patientRepo.On("CreateRelation", ctx, mock.MatchedBy(func(rel *domain.PatientMedic) bool {
		return rel.MedicID == 1 && rel.PatientID == 3
	})).Return(nil)

	patient, err := f.svc.Create(ctx, 1, CreatePatientInput{
		Name:     "Juan Perez",
		Document: "30123456",
		Sex:      domain.SexMale,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), patient.ID)
	f.patientRepo.AssertExpectations(t)
}

func TestPatientCreate_DuplicateDocument(t *testing.T) {
	f := newPatientFixture(t)
	ctx := context.Background()

	f.patientRepo.On("GetByDocument", ctx, "30123456").Return(&domain.Patient{ID: 9}, nil)

	_, err := f.svc.Create(ctx, 1, CreatePatientInput{
		Name:     "Juan Perez",
		Document: "30123456",
		Sex:      domain.SexMale,
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DOCUMENT_ALREADY_EXISTS", appErr.Code)
	f.patientRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPatientCreate_InvalidSex(t *testing.T) {
	f := newPatientFixture(t)

	_, err := f.svc.Create(context.Background(), 1, CreatePatientInput{
		Name:     "Juan Perez",
		Document: "30123456",
		Sex:      "X",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPatientAssign_ExistingRelation(t *testing.T) {
	f := newPatientFixture(t)
	ctx := context.Background()

	f.patientRepo.On("GetByID", ctx, int64(3)).Return(&domain.Patient{ID: 3}, nil)
	f.patientRepo.On("CreateRelation", ctx, mock.AnythingOfType("*domain.PatientMedic")).
		Return(apperrors.Conflict("RELATION_ALREADY_EXISTS", "the patient is already assigned to this medic"))

	_, err := f.svc.Assign(ctx, 1, 3)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "RELATION_ALREADY_EXISTS", appErr.Code)
}

func TestPatientAssign_UnknownPatient(t *testing.T) {
	f := newPatientFixture(t)
	ctx := context.Background()

	f.patientRepo.On("GetByID", ctx, int64(99)).
		Return(nil, apperrors.NotFound("PATIENT_NOT_FOUND", "patient", 99))

	_, err := f.svc.Assign(ctx, 1, 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.patientRepo.AssertNotCalled(t, "CreateRelation", mock.Anything, mock.Anything)
}

func TestPatientUpdate_DocumentConflictCheckSkipsSelf(t *testing.T) {
	f := newPatientFixture(t)
	ctx := context.Background()

	existing := &domain.Patient{ID: 3, Name: "Juan Perez", Document: "30123456", Sex: domain.SexMale}
	f.patientRepo.On("GetByID", ctx, int64(3)).Return(existing, nil)
	f.patientRepo.On("Update", ctx, existing).Return(nil)

	name := "Juan P. Perez"
	updated, err := f.svc.Update(ctx, 3, UpdatePatientInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	f.patientRepo.AssertNotCalled(t, "GetByDocument", mock.Anything, mock.Anything)
}
