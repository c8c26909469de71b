package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/secmon-lab/assetcheck/pkg/utils/logging"
)

const defaultMaxUploadSize = 32 << 20

type Server struct {
	router        *chi.Mux
	uc            *usecase.UseCases
	selections    *selectionStore
	maxUploadSize int64
}

type Options func(*Server)

// WithMaxUploadSize limits the size of an imported spreadsheet
func WithMaxUploadSize(n int64) Options {
	return func(s *Server) {
		s.maxUploadSize = n
	}
}

// WithSelectionTTL sets how long an idle print selection is kept. Zero
// disables expiry.
func WithSelectionTTL(d time.Duration) Options {
	return func(s *Server) {
		s.selections.ttl = d
	}
}

// WithMaxSelections caps the number of live print selections. The least
// recently used one is dropped when a new one would exceed the cap.
func WithMaxSelections(n int) Options {
	return func(s *Server) {
		s.selections.max = n
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		uc:            uc,
		selections:    newSelectionStore(),
		maxUploadSize: defaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/statuses", s.listStatuses)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.listTasks)
			r.Post("/import", s.importTask)

			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", s.getTask)
				r.Patch("/", s.renameTask)
				r.Delete("/", s.deleteTask)

				r.Get("/assets", s.listAssets)
				r.Get("/assets/{code}", s.openAsset)
				r.Post("/assets/{code}/match", s.matchAsset)
				r.Post("/assets/{code}/mismatch", s.mismatchAsset)
				r.Get("/scan", s.scanAsset)
				r.Get("/export", s.exportAssets)
			})
		})

		r.Route("/selections", func(r chi.Router) {
			r.Post("/", s.createSelection)
			r.Get("/{selectionID}", s.getSelection)
			r.Put("/{selectionID}", s.updateSelection)
			r.Delete("/{selectionID}", s.deleteSelection)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
