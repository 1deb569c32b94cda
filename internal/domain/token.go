package domain

import "time"

// RefreshToken is a stored refresh credential for a medic session. The
// client-facing token is never stored; TokenHash holds its SHA-256 digest.
type RefreshToken struct {
	ID        int64     `json:"id"`
	MedicID   int64     `json:"medic_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedIP string    `json:"created_ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the token can still be redeemed at the given instant.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// Session is the result of a successful authentication: the medic plus a
// fresh access/refresh token pair.
type Session struct {
	Medic            *Medic    `json:"medic"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}
