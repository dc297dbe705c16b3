package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"olymprep-backend/internal/handlers"
	"olymprep-backend/internal/middleware"
	"olymprep-backend/internal/models"
	"olymprep-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	contentHandler *handlers.ContentHandler,
	sessionHandler *handlers.SessionHandler,
	progressHandler *handlers.ProgressHandler,
	achievementHandler *handlers.AchievementHandler,
	billingHandler *handlers.BillingHandler,
	adminHandler *handlers.AdminHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Content Routes ────
		r.Route("/contents", func(r chi.Router) {
			// Stream is token-gated, not session-gated: the signed token in
			// the query string is the credential.
			r.Get("/{id}/stream", contentHandler.Stream)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Get("/", contentHandler.List)
				r.Get("/{id}", contentHandler.Get)
				r.Post("/{id}/open", contentHandler.Open)
			})

			// Catalog management
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperadmin))
				r.Post("/", contentHandler.Create)
				r.Put("/{id}", contentHandler.Update)
				r.Delete("/{id}", contentHandler.Delete)
				r.Get("/{id}/coach-note", contentHandler.CoachNote)
			})
		})

		// ──── Study Session Routes ────
		r.Route("/study-sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/start", sessionHandler.Start)
			r.Post("/{id}/heartbeat", sessionHandler.Heartbeat)
			r.Post("/{id}/stop", sessionHandler.Close)
		})

		// ──── Progress Routes ────
		r.Route("/progress", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/summary", progressHandler.Summary)
			r.Put("/{contentId}", progressHandler.Update)
		})

		// ──── Achievement & Test Score Routes ────
		r.Route("/achievements", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", achievementHandler.List)
			r.Post("/check", achievementHandler.Check)
		})

		r.Route("/test-scores", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", achievementHandler.SubmitScore)
			r.Get("/", achievementHandler.ListScores)
		})

		// ──── Billing Routes ────
		r.Route("/billing", func(r chi.Router) {
			// Processor webhook authenticates via payload signature
			r.Post("/notifications", billingHandler.Notification)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/checkout", billingHandler.Checkout)
			})
		})

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperadmin))
			r.Get("/users", adminHandler.ListUsers)
			r.Put("/users/{id}/subscription", adminHandler.GrantSubscription)
			r.Delete("/users/{id}", adminHandler.DeactivateUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleSuperadmin))
				r.Put("/users/{id}/role", adminHandler.UpdateRole)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
