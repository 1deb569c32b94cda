package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/felire/audio-medic-api/internal/auth"
	"github.com/felire/audio-medic-api/internal/service"
	"github.com/felire/audio-medic-api/pkg/health"
	"github.com/felire/audio-medic-api/pkg/middleware"
)

// RouterConfig bundles the dependencies the router needs.
type RouterConfig struct {
	AuthService    *service.AuthService
	MedicService   *service.MedicService
	PatientService *service.PatientService
	NoteService    *service.NoteService
	JWTManager     *auth.JWTManager
	HealthHandler  *health.Handler
	Logger         *slog.Logger
	CORS           CORSConfig
	SecureCookies  bool
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("audiomedic"))

	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The access-token gate bridges to the JWT manager.
	requireAuth := middleware.Authenticate(func(token string) (*middleware.Principal, error) {
		claims, err := cfg.JWTManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Principal{
			ID:    claims.MedicID,
			Email: claims.Email,
			Name:  claims.Name,
		}, nil
	})

	authHandler := NewAuthHandler(cfg.AuthService, cfg.SecureCookies, cfg.Logger)
	medicHandler := NewMedicHandler(cfg.MedicService, cfg.Logger)
	patientHandler := NewPatientHandler(cfg.PatientService, cfg.Logger)
	noteHandler := NewNoteHandler(cfg.NoteService, cfg.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)

				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})

			// Refresh and logout read the cookie; no JSON body required.
			r.Post("/refresh-token", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Get("/profile", authHandler.Profile)
				r.With(ContentTypeJSON).Put("/change-password", authHandler.ChangePassword)
			})
		})

		r.Route("/medics", func(r chi.Router) {
			r.Get("/", medicHandler.List)
			r.Get("/{id}", medicHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.With(ContentTypeJSON).Post("/", medicHandler.Create)
				r.With(ContentTypeJSON, RequireSelf("id")).Put("/{id}", medicHandler.Update)
				r.With(RequireSelf("id")).Delete("/{id}", medicHandler.Delete)
				r.Get("/{id}/patients", medicHandler.ListPatients)
			})
		})

		r.Route("/patients", func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/", patientHandler.List)
			r.With(ContentTypeJSON).Post("/", patientHandler.Create)
			r.Get("/{id}", patientHandler.Get)
			r.With(ContentTypeJSON).Put("/{id}", patientHandler.Update)
			r.Delete("/{id}", patientHandler.Delete)
			r.Get("/{id}/medics", patientHandler.ListMedics)
			r.Post("/{patientId}/assign", patientHandler.Assign)
		})

		r.Route("/soap-notes", func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/", noteHandler.List)
			r.With(ContentTypeJSON).Post("/", noteHandler.Create)
			r.Get("/{id}", noteHandler.Get)
			r.With(ContentTypeJSON).Put("/{id}", noteHandler.Update)
			r.Delete("/{id}", noteHandler.Delete)
			r.Put("/{id}/sign", noteHandler.Sign)
			r.Get("/patient/{patientId}", noteHandler.ListByPatient)
			r.Get("/patient-medic/{patientMedicId}", noteHandler.ListByPatientMedic)
		})

		r.With(requireAuth).Get("/note-types", noteHandler.ListNoteTypes)
	})

	return r
}
