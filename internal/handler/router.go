package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"fithub-admin/internal/util"
)

// NewRouter creates and configures the Chi router with all middleware and routes
func NewRouter(
	authHandler *AuthHandler,
	adminHandler *AdminHandler,
	settingsHandler *SettingsHandler,
	pages *PageHandler,
	guard *Guard,
	logger *zap.Logger,
) chi.Router {
	router := chi.NewRouter()

	// Middleware stack
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggerMiddleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"fithub-admin"}`))
	})

	// Login flow and public configuration
	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/admin/login", authHandler.Login)
		r.Post("/admin/verify-2fa", authHandler.Verify2FA)
		r.Post("/admin/logout", authHandler.Logout)
		r.Get("/captcha-config", authHandler.CaptchaConfig)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAdminAPI)
			r.Get("/admin/me", authHandler.Me)
		})
	})

	// Signed-in admin APIs
	router.Route("/api/admin", func(r chi.Router) {
		r.Use(guard.RequireAdminAPI)

		r.Get("/profile", adminHandler.GetProfile)
		r.Put("/profile", adminHandler.UpdateProfile)
		r.Post("/profile/password", adminHandler.ChangePassword)
		r.Post("/profile/2fa/send", adminHandler.SendTwoFactorCode)
		r.Post("/profile/2fa/verify", adminHandler.VerifyTwoFactorSetup)
		r.Delete("/profile/2fa", adminHandler.DisableTwoFactor)

		r.Get("/settings/smtp", settingsHandler.GetSMTP)
		r.Put("/settings/smtp", settingsHandler.PutSMTP)
		r.Post("/settings/test-email", settingsHandler.SendTestEmail)
	})

	// Browser-facing admin pages; everything except the public pages
	// bounces to the login screen without a session
	router.Route("/admin", func(r chi.Router) {
		r.Use(guard.RequireAdmin)

		r.Get("/", pages.Dashboard)
		r.Get("/login", pages.Login)
		r.Get("/forgot-password", pages.ForgotPassword)
		r.Get("/*", pages.Dashboard)
	})

	// 404 handler
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	// Method not allowed handler
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"method not allowed"}`))
	})

	return router
}

// LoggerMiddleware creates a middleware that logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("HTTP request",
					util.String("method", r.Method),
					util.String("path", r.URL.Path),
					util.String("remote_addr", r.RemoteAddr),
					util.Int("status", ww.Status()),
					util.Duration("duration", time.Since(start)),
					util.String("user_agent", r.UserAgent()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
