package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/felire/audio-medic-api/internal/domain"
)

// --- Mock Medic Repository ---

type mockMedicRepository struct {
	mock.Mock
}

func (m *mockMedicRepository) Create(ctx context.Context, medic *domain.Medic) error {
	args := m.Called(ctx, medic)
	return args.Error(0)
}

func (m *mockMedicRepository) GetByID(ctx context.Context, id int64) (*domain.Medic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Medic), args.Error(1)
}

func (m *mockMedicRepository) GetByEmail(ctx context.Context, email string) (*domain.Medic, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Medic), args.Error(1)
}

func (m *mockMedicRepository) List(ctx context.Context) ([]domain.Medic, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Medic), args.Error(1)
}

func (m *mockMedicRepository) ListByPatient(ctx context.Context, patientID int64) ([]domain.Medic, error) {
	args := m.Called(ctx, patientID)
	return args.Get(0).([]domain.Medic), args.Error(1)
}

func (m *mockMedicRepository) Update(ctx context.Context, medic *domain.Medic) error {
	args := m.Called(ctx, medic)
	return args.Error(0)
}

func (m *mockMedicRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Patient Repository ---

type mockPatientRepository struct {
	mock.Mock
}

func (m *mockPatientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *mockPatientRepository) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *mockPatientRepository) GetByDocument(ctx context.Context, document string) (*domain.Patient, error) {
	args := m.Called(ctx, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *mockPatientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Patient), args.Error(1)
}

func (m *mockPatientRepository) ListByMedic(ctx context.Context, medicID int64) ([]domain.Patient, error) {
	args := m.Called(ctx, medicID)
	return args.Get(0).([]domain.Patient), args.Error(1)
}

func (m *mockPatientRepository) Update(ctx context.Context, patient *domain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *mockPatientRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPatientRepository) CreateRelation(ctx context.Context, rel *domain.PatientMedic) error {
	args := m.Called(ctx, rel)
	return args.Error(0)
}

func (m *mockPatientRepository) GetRelation(ctx context.Context, medicID, patientID int64) (*domain.PatientMedic, error) {
	args := m.Called(ctx, medicID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientMedic), args.Error(1)
}

func (m *mockPatientRepository) GetRelationByID(ctx context.Context, id int64) (*domain.PatientMedic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientMedic), args.Error(1)
}

// --- Mock Note Repository ---

type mockNoteRepository struct {
	mock.Mock
}

func (m *mockNoteRepository) Create(ctx context.Context, note *domain.SoapNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *mockNoteRepository) GetByID(ctx context.Context, id int64) (*domain.SoapNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SoapNote), args.Error(1)
}

func (m *mockNoteRepository) ListByMedic(ctx context.Context, medicID int64) ([]domain.SoapNote, error) {
	args := m.Called(ctx, medicID)
	return args.Get(0).([]domain.SoapNote), args.Error(1)
}

func (m *mockNoteRepository) ListByPatient(ctx context.Context, medicID, patientID int64) ([]domain.SoapNote, error) {
	args := m.Called(ctx, medicID, patientID)
	return args.Get(0).([]domain.SoapNote), args.Error(1)
}

func (m *mockNoteRepository) ListByPatientMedic(ctx context.Context, patientMedicID int64) ([]domain.SoapNote, error) {
	args := m.Called(ctx, patientMedicID)
	return args.Get(0).([]domain.SoapNote), args.Error(1)
}

func (m *mockNoteRepository) Update(ctx context.Context, note *domain.SoapNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *mockNoteRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Note Type Repository ---

type mockNoteTypeRepository struct {
	mock.Mock
}

func (m *mockNoteTypeRepository) List(ctx context.Context) ([]domain.NoteType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.NoteType), args.Error(1)
}

func (m *mockNoteTypeRepository) GetByID(ctx context.Context, id int64) (*domain.NoteType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NoteType), args.Error(1)
}

// --- Mock Refresh Token Repository ---

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) RevokeAllForMedic(ctx context.Context, medicID int64) error {
	args := m.Called(ctx, medicID)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishMedicRegistered(ctx context.Context, medic *domain.Medic) error {
	args := m.Called(ctx, medic)
	return args.Error(0)
}

func (m *mockPublisher) PublishMedicPasswordChanged(ctx context.Context, medic *domain.Medic) error {
	args := m.Called(ctx, medic)
	return args.Error(0)
}

func (m *mockPublisher) PublishNoteSigned(ctx context.Context, note *domain.SoapNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
