package http

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/felire/audio-medic-api/internal/domain"
	"github.com/felire/audio-medic-api/internal/service"
	"github.com/felire/audio-medic-api/pkg/middleware"
	"github.com/felire/audio-medic-api/pkg/validator"
)

// refreshCookieName is the cookie carrying the refresh token.
const refreshCookieName = "refresh_token"

// maxBodyBytes caps request bodies at 1MB.
const maxBodyBytes = 1 << 20

// AuthHandler handles HTTP requests for session endpoints.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger

	// secureCookies controls the Secure flag on the refresh cookie; off only
	// in development.
	secureCookies bool
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, secureCookies: secureCookies, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for medic registration.
type RegisterRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Specialty string `json:"specialty" validate:"max=200"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the JSON body fallback when the refresh cookie is absent.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest is the JSON request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// SessionResponse carries the medic and access token; the refresh token
// travels in the cookie only.
type SessionResponse struct {
	Medic       *domain.Medic `json:"medic"`
	AccessToken string        `json:"access_token"`
}

// --- Handlers ---

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	session, err := h.service.Register(r.Context(), service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Specialty: req.Specialty,
	}, clientIP(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, session)
	writeSuccess(w, http.StatusCreated, SessionResponse{Medic: session.Medic, AccessToken: session.AccessToken})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password, clientIP(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, session)
	writeSuccess(w, http.StatusOK, SessionResponse{Medic: session.Medic, AccessToken: session.AccessToken})
}

// Refresh handles POST /api/auth/refresh-token. The token is read from the
// cookie, falling back to the JSON body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Refresh(r.Context(), refreshTokenFromRequest(w, r), clientIP(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, session)
	writeSuccess(w, http.StatusOK, SessionResponse{Medic: session.Medic, AccessToken: session.AccessToken})
}

// Logout handles POST /api/auth/logout. Always clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), refreshTokenFromRequest(w, r)); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.clearRefreshCookie(w)
	writeSuccess(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "NO_TOKEN", "authentication required")
		return
	}

	medic, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, medic)
}

// ChangePassword handles PUT /api/auth/change-password. On success every
// other session is revoked and a fresh one is returned.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "NO_TOKEN", "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	session, err := h.service.ChangePassword(r.Context(), principal.ID, req.CurrentPassword, req.NewPassword, clientIP(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, session)
	writeSuccess(w, http.StatusOK, SessionResponse{Medic: session.Medic, AccessToken: session.AccessToken})
}

// --- Cookie transport ---

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, session *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    session.RefreshToken,
		Path:     "/",
		Expires:  session.RefreshExpiresAt,
		MaxAge:   int(time.Until(session.RefreshExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// refreshTokenFromRequest reads the refresh token from the cookie, falling
// back to a JSON body for clients that cannot send cookies.
func refreshTokenFromRequest(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

// clientIP returns the requester's IP, trusting X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
