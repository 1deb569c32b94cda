package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/felire/audio-medic-api/internal/auth"
	"github.com/felire/audio-medic-api/internal/domain"
	"github.com/felire/audio-medic-api/internal/service"
	apperrors "github.com/felire/audio-medic-api/pkg/errors"
	"github.com/felire/audio-medic-api/pkg/health"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockMedicRepo struct {
	mock.Mock
}

func (m *mockMedicRepo) Create(ctx context.Context, medic *domain.Medic) error {
	args := m.Called(ctx, medic)
	return args.Error(0)
}

func (m *mockMedicRepo) GetByID(ctx context.Context, id int64) (*domain.Medic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Medic), args.Error(1)
}

func (m *mockMedicRepo) GetByEmail(ctx context.Context, email string) (*domain.Medic, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Medic), args.Error(1)
}

func (m *mockMedicRepo) List(ctx context.Context) ([]domain.Medic, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Medic), args.Error(1)
}

func (m *mockMedicRepo) ListByPatient(ctx context.Context, patientID int64) ([]domain.Medic, error) {
	args := m.Called(ctx, patientID)
	return args.Get(0).([]domain.Medic), args.Error(1)
}

func (m *mockMedicRepo) Update(ctx context.Context, medic *domain.Medic) error {
	args := m.Called(ctx, medic)
	return args.Error(0)
}

func (m *mockMedicRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPatientRepo struct {
	mock.Mock
}

func (m *mockPatientRepo) Create(ctx context.Context, patient *domain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *mockPatientRepo) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *mockPatientRepo) GetByDocument(ctx context.Context, document string) (*domain.Patient, error) {
	args := m.Called(ctx, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *mockPatientRepo) List(ctx context.Context) ([]domain.Patient, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Patient), args.Error(1)
}

func (m *mockPatientRepo) ListByMedic(ctx context.Context, medicID int64) ([]domain.Patient, error) {
	args := m.Called(ctx, medicID)
	return args.Get(0).([]domain.Patient), args.Error(1)
}

func (m *mockPatientRepo) Update(ctx context.Context, patient *domain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *mockPatientRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPatientRepo) CreateRelation(ctx context.Context, rel *domain.PatientMedic) error {
	args := m.Called(ctx, rel)
	return args.Error(0)
}

func (m *mockPatientRepo) GetRelation(ctx context.Context, medicID, patientID int64) (*domain.PatientMedic, error) {
	args := m.Called(ctx, medicID, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientMedic), args.Error(1)
}

func (m *mockPatientRepo) GetRelationByID(ctx context.Context, id int64) (*domain.PatientMedic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientMedic), args.Error(1)
}

type mockNoteRepo struct {
	mock.Mock
}

func (m *mockNoteRepo) Create(ctx context.Context, note *domain.SoapNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id int64) (*domain.SoapNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SoapNote), args.Error(1)
}

func (m *mockNoteRepo) ListByMedic(ctx context.Context, medicID int64) ([]domain.SoapNote, error) {
	args := m.Called(ctx, medicID)
	return args.Get(0).([]domain.SoapNote), args.Error(1)
}

func (m *mockNoteRepo) ListByPatient(ctx context.Context, medicID, patientID int64) ([]domain.SoapNote, error) {
	args := m.Called(ctx, medicID, patientID)
	return args.Get(0).([]domain.SoapNote), args.Error(1)
}

func (m *mockNoteRepo) ListByPatientMedic(ctx context.Context, patientMedicID int64) ([]domain.SoapNote, error) {
	args := m.Called(ctx, patientMedicID)
	return args.Get(0).([]domain.SoapNote), args.Error(1)
}

func (m *mockNoteRepo) Update(ctx context.Context, note *domain.SoapNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *mockNoteRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockNoteTypeRepo struct {
	mock.Mock
}

func (m *mockNoteTypeRepo) List(ctx context.Context) ([]domain.NoteType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.NoteType), args.Error(1)
}

func (m *mockNoteTypeRepo) GetByID(ctx context.Context, id int64) (*domain.NoteType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NoteType), args.Error(1)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, token *domain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockTokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockTokenRepo) RevokeAllForMedic(ctx context.Context, medicID int64) error {
	args := m.Called(ctx, medicID)
	return args.Error(0)
}

func (m *mockTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// stubPublisher swallows audit events.
type stubPublisher struct{}

func (stubPublisher) PublishMedicRegistered(context.Context, *domain.Medic) error      { return nil }
func (stubPublisher) PublishMedicPasswordChanged(context.Context, *domain.Medic) error { return nil }
func (stubPublisher) PublishNoteSigned(context.Context, *domain.SoapNote) error        { return nil }

// ============================================================================
// Fixture
// ============================================================================

type routerFixture struct {
	handler     http.Handler
	jwt         *auth.JWTManager
	medicRepo   *mockMedicRepo
	patientRepo *mockPatientRepo
	noteRepo    *mockNoteRepo
	typeRepo    *mockNoteTypeRepo
	tokenRepo   *mockTokenRepo
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("access-secret-for-tests", "refresh-secret-for-tests", 15*time.Minute, 168*time.Hour)

	medicRepo := &mockMedicRepo{}
	patientRepo := &mockPatientRepo{}
	noteRepo := &mockNoteRepo{}
	typeRepo := &mockNoteTypeRepo{}
	tokenRepo := &mockTokenRepo{}

	handler := NewRouter(RouterConfig{
		AuthService:    service.NewAuthService(medicRepo, tokenRepo, jwtManager, stubPublisher{}, logger),
		MedicService:   service.NewMedicService(medicRepo, patientRepo, logger),
		PatientService: service.NewPatientService(patientRepo, medicRepo, logger),
		NoteService:    service.NewNoteService(noteRepo, typeRepo, patientRepo, stubPublisher{}, logger),
		JWTManager:     jwtManager,
		HealthHandler:  health.NewHandler(),
		Logger:         logger,
		CORS:           CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"},
		SecureCookies:  false,
	})

	return &routerFixture{
		handler:     handler,
		jwt:         jwtManager,
		medicRepo:   medicRepo,
		patientRepo: patientRepo,
		noteRepo:    noteRepo,
		typeRepo:    typeRepo,
		tokenRepo:   tokenRepo,
	}
}

// accessToken issues a valid access token for the given medic id.
func (f *routerFixture) accessToken(t *testing.T, medicID int64) string {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(medicID, "doc@example.com", "Dr. Test")
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	return token
}

// conflictRelation mirrors the repository error for a duplicate patient_medic row.
func conflictRelation() error {
	return apperrors.Conflict("RELATION_ALREADY_EXISTS", "the patient is already assigned to this medic")
}

func bcryptHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}
