package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/bookshelf-be/internal/api/handlers"
	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/services"
)

// newBaseRouter configures the middleware stack shared by both services.
func newBaseRouter(allowedOrigin string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	return r
}

func health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"service":"` + service + `"}`))
	}
}

// NewAuthRouter creates the router for the credential service.
func NewAuthRouter(tokens *auth.TokenManager, users services.UserServiceProvider, allowedOrigin string) *chi.Mux {
	r := newBaseRouter(allowedOrigin)

	authHandler := handlers.NewAuthHandler(users, tokens)

	r.Get("/health", health("auth"))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Get("/me", authHandler.Me)
		})
	})

	return r
}

// NewBooksRouter creates the router for the catalog service. Every endpoint
// except the health check requires a bearer token; the middleware accepts
// tokens issued by either service since both share one signing secret.
func NewBooksRouter(tokens *auth.TokenManager, books services.BookServiceProvider, events services.EventServiceProvider, allowedOrigin string) *chi.Mux {
	r := newBaseRouter(allowedOrigin)

	bookHandler := handlers.NewBookHandler(books)
	eventHandler := handlers.NewEventHandler(events)

	r.Get("/health", health("books"))

	r.Group(func(r chi.Router) {
		r.Use(tokens.Middleware())

		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookHandler.List)
			r.Post("/", bookHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", bookHandler.Get)
				r.Put("/", bookHandler.Update)
				r.Delete("/", bookHandler.Delete)
				r.Post("/reviews", bookHandler.AddReview)
			})
		})

		r.Get("/events", eventHandler.GetRecent)
	})

	return r
}
