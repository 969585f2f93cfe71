package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/assoc-admin/internal/auth"
	"github.com/ignite/assoc-admin/internal/pkg/ratelimit"
)

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// SetupRoutes configures all routes.
func SetupRoutes(h *Handlers, opts Options) *chi.Mux {
	r := chi.NewRouter()

	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	// Credentials are allowed for the session cookie, so origins stay explicit.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Health != nil {
		r.Get("/health", opts.Health.HandleHealth)
		r.Get("/health/live", opts.Health.HandleLiveness)
		r.Get("/health/ready", opts.Health.HandleReadiness)
	}

	requireAdmin := auth.LocalAdmin
	if opts.Auth != nil {
		r.Get("/auth/login", opts.Auth.HandleLogin)
		r.Get("/auth/callback", opts.Auth.HandleCallback)
		r.Post("/auth/logout", opts.Auth.HandleLogout)
		r.Get("/auth/me", opts.Auth.HandleMe)
		requireAdmin = opts.Auth.RequireAdmin
	}

	if opts.FunctionsToken != "" {
		r.Route("/functions/v1", func(r chi.Router) {
			r.Use(auth.RequireBearer(opts.FunctionsToken))
			r.Post("/send-newsletter", h.SendNewsletterFunction)
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/public", func(r chi.Router) {
			if opts.PublicLimiter != nil {
				r.Use(ratelimit.Middleware(opts.PublicLimiter))
			}
			r.Get("/specialists", h.PublicSpecialists)
			r.Post("/subscribe", h.Subscribe)
			r.Get("/unsubscribe", h.Unsubscribe)
			r.Post("/unsubscribe", h.Unsubscribe)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/dashboard", h.GetDashboard)
			if opts.Events != nil {
				r.Handle("/events", opts.Events)
			}

			r.Route("/applications/{kind}", func(r chi.Router) {
				r.Get("/", h.ListApplications)
				r.Get("/counts", h.ApplicationCounts)
				r.Get("/export.csv", h.ExportApplications)
				r.Get("/{id}", h.GetApplication)
				r.Post("/{id}/approve", h.ApproveApplication)
				r.Post("/{id}/reject", h.RejectApplication)
				r.Delete("/{id}", h.DeleteApplication)
			})

			r.Route("/members", func(r chi.Router) {
				r.Get("/", h.ListMembers)
				r.Get("/stats", h.MemberStats)
				r.Get("/export.csv", h.ExportMembers)
				r.Get("/{id}", h.GetMember)
				r.Get("/{id}/payments", h.ListPayments)
				r.Post("/{id}/payments", h.RecordPayment)
			})

			r.Route("/specialists", func(r chi.Router) {
				r.Get("/", h.ListSpecialists)
				r.Get("/export.csv", h.ExportSpecialists)
				r.Get("/{id}", h.GetSpecialist)
				r.Put("/{id}/visibility", h.SetSpecialistVisibility)
				r.Delete("/{id}", h.DeleteSpecialist)
			})

			r.Route("/newsletters", func(r chi.Router) {
				r.Get("/", h.ListNewsletters)
				r.Post("/", h.CreateNewsletter)
				r.Get("/{id}", h.GetNewsletter)
				r.Put("/{id}", h.UpdateNewsletter)
				r.Delete("/{id}", h.DeleteNewsletter)
				r.Get("/{id}/preview", h.PreviewNewsletter)
				r.Post("/{id}/schedule", h.ScheduleNewsletter)
				r.Post("/{id}/unschedule", h.UnscheduleNewsletter)
				r.Post("/{id}/send", h.SendNewsletter)
				r.Post("/{id}/test", h.SendTestNewsletter)
			})

			r.Route("/subscribers", func(r chi.Router) {
				r.Get("/", h.ListSubscribers)
				r.Get("/export.csv", h.ExportSubscribers)
				r.Delete("/{id}", h.DeleteSubscriber)
			})

			r.Route("/publications", func(r chi.Router) {
				r.Get("/", h.ListPublications)
				r.Post("/", h.CreatePublication)
				r.Post("/import", h.ImportPublications)
				r.Get("/{id}", h.GetPublication)
				r.Delete("/{id}", h.DeletePublication)
				r.Post("/{id}/{action}", h.TransitionPublication)
				r.Get("/{id}/reviews", h.ListReviews)
				r.Post("/{id}/reviews", h.AddReview)
				r.Put("/{id}/file", h.UploadPublicationFile)
				r.Get("/{id}/file", h.DownloadPublicationFile)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Not found")
	})
	return r
}
