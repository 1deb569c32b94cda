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

// RefreshTokenRepository implements repository.RefreshTokenRepository using
// PostgreSQL.
type RefreshTokenRepository struct {
	db database.DBTX
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token
// repository.
func NewRefreshTokenRepository(db database.DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create stores a new refresh token record.
func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token_hash, medic_id, expires_at, created_ip)
		VALUES ($1, $2, $3, $4)
		RETURNING id, revoked, created_at`

	err := r.db.QueryRow(ctx, query, t.TokenHash, t.MedicID, t.ExpiresAt, t.CreatedIP).
		Scan(&t.ID, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// GetByHash retrieves a refresh token record by its hash. Returns ErrNotFound
// when no record matches.
func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, token_hash, medic_id, expires_at, revoked, created_ip, created_at
		FROM refresh_tokens
		WHERE token_hash = $1`

	var t domain.RefreshToken
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID,
		&t.TokenHash,
		&t.MedicID,
		&t.ExpiresAt,
		&t.Revoked,
		&t.CreatedIP,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &t, nil
}

// Revoke marks the token with the given hash as revoked. Revoking an already
// revoked or unknown token is not an error.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1`

	if _, err := r.db.Exec(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

// RevokeAllForMedic revokes every token belonging to the given medic.
func (r *RefreshTokenRepository) RevokeAllForMedic(ctx context.Context, medicID int64) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE medic_id = $1 AND revoked = FALSE`

	if _, err := r.db.Exec(ctx, query, medicID); err != nil {
		return fmt.Errorf("revoke refresh tokens for medic: %w", err)
	}

	return nil
}

// DeleteExpired removes tokens that expired before the given instant.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1`

	ct, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}

	return ct.RowsAffected(), nil
}
