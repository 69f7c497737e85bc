package main

import (
	"fmt"
	"net/http"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/vukatravels/site/authenticator"
	"github.com/vukatravels/site/config"
	"github.com/vukatravels/site/controllers"
	sitemiddleware "github.com/vukatravels/site/middleware"
	"github.com/vukatravels/site/repositories"
)

// setupRouter configures all routes. Admin routes exist only when auth is
// configured.
func setupRouter(cfg *config.Config, ctrl *controllers.Controllers, repos *repositories.Repositories, auth authenticator.Provider, logger *zap.Logger) (*chi.Mux, error) {
	r := chi.NewRouter()

	r.Use(sitemiddleware.RequestID)
	r.Use(sitemiddleware.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", sitemiddleware.RequestIDHeader},
		ExposedHeaders: []string{sitemiddleware.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(sitemiddleware.LimitBody(cfg.MaxBodyBytes))

	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "site_session",
		Secure:         cfg.UseHTTPS,
		Gclifetime:     3600,
		Maxlifetime:    3600,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)
	r.Use(sitemiddleware.LoadUser)
	r.Use(sitemiddleware.AuditLogger(repos.Audit, logger.Named("audit")))

	// PUBLIC ROUTES (no authentication required)
	r.HandleFunc("/api/submit", ctrl.Submission.Submit)
	r.HandleFunc("/api/submit.php", ctrl.Submission.Submit)
	r.HandleFunc("/api/revalidate", ctrl.Revalidate.Revalidate)
	r.Get("/api/blog", ctrl.Blog.Index)
	r.Get("/api/blog/{slug}", ctrl.Blog.Show)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "vuka-site"}`)
	})

	if auth == nil {
		return r, nil
	}

	r.Get("/login", ctrl.Auth.Login(auth))
	r.Get("/callback", ctrl.Auth.Callback(auth))
	r.Get("/logout", ctrl.Auth.Logout)

	// PROTECTED ROUTES (authentication required)
	r.Group(func(r chi.Router) {
		r.Use(sitemiddleware.RequireAuth)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/submissions.csv", ctrl.Admin.SubmissionsCSV)
			r.Get("/submissions.xls", ctrl.Admin.SubmissionsXLS)
			r.Get("/audit", ctrl.Admin.Audit)
		})
	})

	return r, nil
}
