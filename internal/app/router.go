package app

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"classtest/internal/app/observability"
	"classtest/internal/auth"
	"classtest/internal/grading"
	"classtest/internal/quiz"
	"classtest/internal/report"
	"classtest/internal/submission"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(cfg Config, db *sql.DB) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	collector := observability.NewCollector(db)
	r.Use(collector.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authSvc, err := auth.NewService(auth.ServiceConfig{
		PasswordHash: cfg.TeacherPasswordHash,
		Password:     cfg.TeacherPassword,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     time.Duration(cfg.TokenTTLMinutes) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	authHandler := auth.NewHandler(authSvc)

	quizSvc := quiz.NewService(db)
	quizHandler := quiz.NewHandler(quizSvc, authHandler.IsTeacher)

	scale := grading.ScaleByName(cfg.GradeScale)
	submissionSvc := submission.NewService(db, scale)
	submissionHandler := submission.NewHandler(submissionSvc)

	reportSvc := report.NewService(db)
	reportHandler := report.NewHandler(reportSvc)

	loginLimiter := NewIPRateLimiter(cfg.AuthRateLimitPerMin, time.Minute)
	submitLimiter := NewIPRateLimiter(cfg.SubmitRateLimitPerMin, time.Minute)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.With(RateLimitMiddleware(loginLimiter)).Post("/auth/login", authHandler.Login)

		api.Get("/tests", quizHandler.List)
		api.Get("/tests/{id}", quizHandler.Get)
		api.With(RateLimitMiddleware(submitLimiter)).Post("/tests/{id}/submissions", submissionHandler.Submit)

		api.Get("/results/{token}", submissionHandler.GetByShareToken)

		api.Group(func(secure chi.Router) {
			secure.Use(authHandler.RequireTeacher)

			secure.Post("/tests", quizHandler.Create)
			secure.Delete("/tests/{id}", quizHandler.Delete)

			secure.Get("/submissions", submissionHandler.List)
			secure.Get("/submissions/{id}", submissionHandler.GetDetail)
			secure.Post("/submissions/{id}/points", submissionHandler.SetManualPoints)
			secure.Post("/submissions/{id}/review", submissionHandler.SaveReview)
			secure.Delete("/submissions/{id}", submissionHandler.Delete)

			secure.Get("/reports/tests/{id}/summary", reportHandler.Summary)
			secure.Get("/reports/submissions.xlsx", reportHandler.ExportExcel)

			secure.Get("/ops/metrics", collector.MetricsHandler)
		})
	})

	return r, nil
}
