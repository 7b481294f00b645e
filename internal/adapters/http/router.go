package http

import (
	"context"
	"net/http"
	"net/netip"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/prof-ramos/asof-site/internal/adapters/observability"
	"github.com/prof-ramos/asof-site/internal/application"
)

// Options carries transport settings that the application layer does not own.
type Options struct {
	CookieName     string
	CookieSecure   bool
	MaxUploadBytes int64
	// UploadsDir is served under /uploads when the local blob backend is active.
	UploadsDir string
	// ContactRate and ContactBurst bound contact submissions per client IP.
	ContactRate  rate.Limit
	ContactBurst int
	// TrustedProxies are the peers whose X-Forwarded-For header is honoured.
	TrustedProxies []netip.Prefix
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

func (o Options) withDefaults() Options {
	if o.CookieName == "" {
		o.CookieName = "asof_session"
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 10 << 20
	}
	if o.ContactRate <= 0 {
		o.ContactRate = rate.Every(time.Minute)
	}
	if o.ContactBurst <= 0 {
		o.ContactBurst = 3
	}
	return o
}

// Handler is the HTTP adapter entrypoint for site use-cases.
type Handler struct {
	service        *application.Service
	metrics        *observability.Metrics
	opts           Options
	contactLimiter *ipRateLimiter
}

func NewHandler(service *application.Service, metrics *observability.Metrics, opts Options) *Handler {
	opts = opts.withDefaults()
	h := &Handler{
		service: service,
		metrics: metrics,
		opts:    opts,
	}
	h.contactLimiter = newIPRateLimiter(opts.ContactRate, opts.ContactBurst, 10*time.Minute, h.clientIP)
	return h
}

// NewRouter registers public, auth, admin and ops routes.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(handler.observeMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	if handler.metrics != nil {
		r.Method(http.MethodGet, "/metrics", handler.metrics.Handler())
	}
	if handler.opts.UploadsDir != "" {
		fs := http.FileServer(noListingFS{http.Dir(handler.opts.UploadsDir)})
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", cacheForever(fs)))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/posts", handler.listPublishedPosts)
		r.Get("/posts/{slug}", handler.getPublishedPost)
		r.Get("/categories", handler.listCategories)
		r.Get("/events", handler.listPublicEvents)
		r.Get("/events/{slug}", handler.getPublicEvent)
		r.Get("/pages/{slug}", handler.getPage)
		r.Get("/transparency", handler.listTransparency)
		r.Get("/transparency/years", handler.listTransparencyYears)
		r.With(handler.contactLimiter.middleware).Post("/contact", handler.submitContact)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", handler.login)
			r.Group(func(r chi.Router) {
				r.Use(handler.authMiddleware)
				r.Post("/logout", handler.logout)
				r.Get("/me", handler.me)
				r.Post("/password", handler.changePassword)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(handler.authMiddleware)

			r.Get("/posts", handler.adminListPosts)
			r.Post("/posts", handler.createPost)
			r.Get("/posts/{id}", handler.adminGetPost)
			r.Put("/posts/{id}", handler.updatePost)
			r.Delete("/posts/{id}", handler.deletePost)
			r.Post("/posts/{id}/status", handler.setPostStatus)

			r.Post("/media", handler.uploadMedia)
			r.Get("/media", handler.listMedia)
			r.Get("/media/{id}", handler.getMedia)
			r.Patch("/media/{id}", handler.updateMedia)
			r.Delete("/media/{id}", handler.deleteMedia)

			r.Get("/events", handler.adminListEvents)
			r.Post("/events", handler.createEvent)
			r.Get("/events/{id}", handler.adminGetEvent)
			r.Put("/events/{id}", handler.updateEvent)
			r.Delete("/events/{id}", handler.deleteEvent)

			r.Get("/pages", handler.adminListPages)
			r.Put("/pages/{slug}", handler.upsertPage)

			r.Post("/transparency", handler.createTransparency)
			r.Delete("/transparency/{id}", handler.deleteTransparency)

			r.Get("/contact", handler.listContact)
			r.Get("/contact/{id}", handler.getContact)
			r.Patch("/contact/{id}", handler.setContactStatus)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/users", handler.listUsers)
				r.Post("/users", handler.createUser)
				r.Post("/users/{id}/active", handler.setUserActive)
				r.Post("/users/{id}/unlock", handler.unlockUser)
			})
		})
	})

	return r
}

// noListingFS refuses directory reads so /uploads never lists files.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

// Stored keys embed a random uuid and never change content.
func cacheForever(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}
