package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/felire/audio-medic-api/internal/auth"
	"github.com/felire/audio-medic-api/internal/domain"
	"github.com/felire/audio-medic-api/internal/event"
	"github.com/felire/audio-medic-api/internal/repository"
	apperrors "github.com/felire/audio-medic-api/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 10

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 6

// AuthService manages medic accounts and their sessions.
type AuthService struct {
	medicRepo repository.MedicRepository
	tokenRepo repository.RefreshTokenRepository
	jwt       *auth.JWTManager
	producer  event.Publisher
	logger    *slog.Logger
}

// NewAuthService creates the session manager.
func NewAuthService(
	medicRepo repository.MedicRepository,
	tokenRepo repository.RefreshTokenRepository,
	jwt *auth.JWTManager,
	producer event.Publisher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		medicRepo: medicRepo,
		tokenRepo: tokenRepo,
		jwt:       jwt,
		producer:  producer,
		logger:    logger,
	}
}

// RegisterInput holds the fields required to create a medic account.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Specialty string
}

// Register creates a new medic account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, clientIP string) (*domain.Session, error) {
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

	// Pre-check for a friendlier conflict; the unique constraint on email
	// remains authoritative under races.
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

	session, err := s.IssueSession(ctx, medic, clientIP)
	if err != nil {
		return nil, err
	}

	// Audit event failures never fail the request.
	if err := s.producer.PublishMedicRegistered(ctx, medic); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish medic.registered event",
			slog.Int64("medic_id", medic.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "medic registered",
		slog.Int64("medic_id", medic.ID),
		slog.String("email", medic.Email),
	)

	return session, nil
}

// Login authenticates a medic by email and password. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (*domain.Session, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	medic, err := s.medicRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, apperrors.Unauthorized("INVALID_CREDENTIALS", "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(medic.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("INVALID_CREDENTIALS", "invalid email or password")
	}

	session, err := s.IssueSession(ctx, medic, clientIP)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "medic logged in",
		slog.Int64("medic_id", medic.ID),
	)

	return session, nil
}

// IssueSession signs a fresh access/refresh token pair for the medic and
// stores the refresh token's digest. Existing sessions are left untouched.
func (s *AuthService) IssueSession(ctx context.Context, medic *domain.Medic, clientIP string) (*domain.Session, error) {
	accessToken, err := s.jwt.GenerateAccessToken(medic.ID, medic.Email, medic.Name)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(medic.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.jwt.RefreshExpiry())
	record := &domain.RefreshToken{
		TokenHash: hashToken(refreshToken),
		MedicID:   medic.ID,
		ExpiresAt: expiresAt,
		CreatedIP: clientIP,
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.Session{
		Medic:            medic,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: expiresAt,
	}, nil
}

// Refresh redeems a refresh token for a new session. A redeemed token is
// revoked, so each token can be used at most once.
func (s *AuthService) Refresh(ctx context.Context, presented, clientIP string) (*domain.Session, error) {
	if presented == "" {
		return nil, apperrors.Unauthorized("NO_REFRESH_TOKEN", "refresh token is required")
	}

	tokenHash := hashToken(presented)
	stored, err := s.tokenRepo.GetByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("INVALID_REFRESH_TOKEN", "refresh token not recognized")
		}
		return nil, fmt.Errorf("look up refresh token: %w", err)
	}

	if !stored.Active(time.Now().UTC()) {
		return nil, apperrors.Unauthorized("REFRESH_TOKEN_INACTIVE", "refresh token is revoked or expired")
	}

	// A stored row whose token no longer verifies means the signature check
	// failed or the signing key rotated. Burn the row either way.
	if _, err := s.jwt.ValidateRefreshToken(presented); err != nil {
		if revokeErr := s.tokenRepo.Revoke(ctx, tokenHash); revokeErr != nil {
			s.logger.ErrorContext(ctx, "failed to revoke refresh token after signature failure",
				slog.String("error", revokeErr.Error()),
			)
		}
		return nil, apperrors.Unauthorized("INVALID_TOKEN_SIGNATURE", "refresh token signature is invalid")
	}

	// Single-use rotation.
	if err := s.tokenRepo.Revoke(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("revoke redeemed refresh token: %w", err)
	}

	medic, err := s.medicRepo.GetByID(ctx, stored.MedicID)
	if err != nil {
		return nil, fmt.Errorf("get medic for refresh: %w", err)
	}

	session, err := s.IssueSession(ctx, medic, clientIP)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session refreshed",
		slog.Int64("medic_id", medic.ID),
	)

	return session, nil
}

// Logout revokes the presented refresh token. Unknown or absent tokens are
// not errors, so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, presented string) error {
	if presented == "" {
		return nil
	}

	if err := s.tokenRepo.Revoke(ctx, hashToken(presented)); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

// ChangePassword verifies the current password, stores the new one, revokes
// every open session, and returns a fresh one for the calling device.
func (s *AuthService) ChangePassword(ctx context.Context, medicID int64, currentPassword, newPassword, clientIP string) (*domain.Session, error) {
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}

	medic, err := s.medicRepo.GetByID(ctx, medicID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(medic.PasswordHash), []byte(currentPassword)); err != nil {
		return nil, apperrors.Unauthorized("INVALID_CREDENTIALS", "current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash new password: %w", err)
	}

	medic.PasswordHash = string(hashedPassword)
	if err := s.medicRepo.Update(ctx, medic); err != nil {
		return nil, err
	}

	// Force every other device to re-authenticate.
	if err := s.tokenRepo.RevokeAllForMedic(ctx, medicID); err != nil {
		return nil, fmt.Errorf("revoke sessions after password change: %w", err)
	}

	session, err := s.IssueSession(ctx, medic, clientIP)
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishMedicPasswordChanged(ctx, medic); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish medic.password_changed event",
			slog.Int64("medic_id", medic.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "medic changed password",
		slog.Int64("medic_id", medic.ID),
	)

	return session, nil
}

// Profile returns the authenticated medic's account.
func (s *AuthService) Profile(ctx context.Context, medicID int64) (*domain.Medic, error) {
	return s.medicRepo.GetByID(ctx, medicID)
}

// SweepExpiredTokens removes refresh token rows that expired before now.
func (s *AuthService) SweepExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.DeleteExpired(ctx, time.Now().UTC())
}

// hashToken returns the SHA-256 hex digest of the given token string.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}
