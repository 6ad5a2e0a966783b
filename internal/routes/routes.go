package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pluggedhq/login-server/internal/handlers"
	"github.com/pluggedhq/login-server/internal/middleware"
	"github.com/pluggedhq/login-server/internal/web"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, userHandler *handlers.UserHandler) {
	rateLimitConfig := middleware.DefaultAccountRateLimit()

	router.Route("/user", func(r chi.Router) {
		// Browser-facing verification pages, no rate limit
		r.Get("/verify/{accountId}/{secret}", userHandler.Verify)
		r.Get("/verified", web.VerifiedPage)

		// Credential endpoints are rate limited per IP
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(rateLimitConfig))
			r.Post("/signup", userHandler.Signup)
			r.Post("/signin", userHandler.SignIn)
			r.Post("/requestPasswordReset", userHandler.RequestPasswordReset)
			r.Post("/resetPassword", userHandler.ResetPassword)
		})
	})
}
