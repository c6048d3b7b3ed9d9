package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"memora-backend/internal/handlers"
	"memora-backend/internal/middleware"
	"memora-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	reviewHandler *handlers.ReviewHandler,
	progressHandler *handlers.ProgressHandler,
	pathHandler *handlers.PathHandler,
	reminderHandler *handlers.ReminderHandler,
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

		// ──── Card Review Routes ────
		r.Route("/cards", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/due", reviewHandler.Due)
			r.Post("/{id}/review", reviewHandler.Rate)
		})

		// ──── Progress Routes ────
		r.Route("/progress", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", progressHandler.Get)
			r.Put("/settings", progressHandler.UpdateSettings)
		})

		// ──── Learning Path Routes ────
		r.Route("/paths", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", pathHandler.List)
			r.Get("/{slug}", pathHandler.Get)
			r.Post("/{slug}/nodes/{nodeID}/complete", pathHandler.CompleteNode)
		})

		// ──── Reminder Routes ────
		r.Route("/reminders", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", reminderHandler.Get)
			r.Put("/", reminderHandler.Update)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
