package router

import (
	"net/http"
	"path/filepath"

	"catalog-api/internal/handler"
	"catalog-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Options holds everything the router wires together.
type Options struct {
	Products *handler.ProductHandler
	Auth     *handler.AuthHandler
	Uploads  *handler.UploadHandler
	Tokens   middleware.TokenVerifier

	RemoteConfigured bool
	ImagesDir        string // served under /images/
	WebDir           string // index.html, admin.html and static assets
	AllowedOrigins   []string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: RequestID -> RealIP -> Logging -> Recovery -> CORS
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", handler.Health(opts.RemoteConfigured))

	// Public routes
	r.With(middleware.Identify(opts.Tokens)).Get("/products", opts.Products.List)
	r.Get("/products/{id}", opts.Products.GetByID)
	r.Post("/auth/login", opts.Auth.Login)

	// Routes requiring a bearer token
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(opts.Tokens, logger))

		r.Post("/products", opts.Products.Create)
		r.Put("/products/{id}", opts.Products.Update)
		r.Delete("/products/{id}", opts.Products.Delete)
		r.Post("/import", opts.Products.Import)
		r.Post("/upload-image", opts.Uploads.Upload)
		r.Post("/auth/change-password", opts.Auth.ChangePassword)
	})

	// Static content
	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(opts.ImagesDir))))
	r.Get("/", servePage(filepath.Join(opts.WebDir, "index.html")))
	r.Get("/admin", servePage(filepath.Join(opts.WebDir, "admin.html")))
	r.Handle("/*", http.FileServer(http.Dir(opts.WebDir)))

	return r
}

func servePage(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	}
}
