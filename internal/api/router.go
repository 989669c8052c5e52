package api

import (
	"log"
	"net/http"

	"chatstream-backend/internal/config"
	"chatstream-backend/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandlers *handlers.AuthHandlers
	ChatHandlers *handlers.ChatHandlers
	EvalHandlers *handlers.EvalHandlers
	Config       *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// No request timeout middleware: /api/chat/stream holds its response
	// open for the length of the provider's fragment sequence.

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.Config.ClientURL, "http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// --- Public Routes (No JWT Required) ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if deps.AuthHandlers != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/google", deps.AuthHandlers.HandleGoogleLogin)
			r.Get("/google/callback", deps.AuthHandlers.HandleGoogleCallback)
		})
	} else {
		log.Println("WARN: AuthHandlers dependency is nil, skipping /auth routes.")
	}

	// --- Authenticated Routes (JWT Required) ---
	r.Route("/api", func(r chi.Router) {
		r.Use(JwtAuthMiddleware(deps.Config.JWTSecret))

		if deps.ChatHandlers != nil {
			r.Route("/chat", func(r chi.Router) {
				r.Get("/", deps.ChatHandlers.HandleListChats)
				r.Post("/", deps.ChatHandlers.HandleCreateChat)
				r.Post("/stream", deps.ChatHandlers.HandleStream)
				r.Delete("/{chatID}", deps.ChatHandlers.HandleDeleteChat)
				r.Get("/{chatID}/messages", deps.ChatHandlers.HandleListMessages)
			})
		} else {
			log.Println("WARN: ChatHandlers dependency is nil, skipping /api/chat routes.")
		}

		if deps.EvalHandlers != nil {
			r.Route("/eval", func(r chi.Router) {
				r.Post("/compare", deps.EvalHandlers.HandleCompare)
				r.Post("/rate", deps.EvalHandlers.HandleRate)
				r.Get("/results", deps.EvalHandlers.HandleResults)
			})
		} else {
			log.Println("WARN: EvalHandlers dependency is nil, skipping /api/eval routes.")
		}
	})

	return r
}
