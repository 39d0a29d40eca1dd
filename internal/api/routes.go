// Package api provides HTTP handlers for the portal server.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fibsem-portal/server/internal/cache"
	"github.com/fibsem-portal/server/internal/catalog"
	"github.com/fibsem-portal/server/internal/dataset"
	"github.com/fibsem-portal/server/internal/render"
)

// RouterConfig contains router configuration.
type RouterConfig struct {
	Store       *catalog.Store
	Cache       *cache.Manager
	Thumbnailer *render.Thumbnailer
	Reloader    *catalog.Reloader
	ViewerURL   string
	CORSOrigins []string
	Title       string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Catalog-wide endpoints
	r.Get("/api/datasets", datasetsHandler(cfg.Store, cfg.Title))
	r.Get("/api/tags", tagsHandler(cfg.Store))
	r.Get("/api/stats", statsHandler(cfg.Store, cfg.Cache))
	r.Post("/api/reload", reloadHandler(cfg.Reloader))

	// Dataset-scoped routes: /api/datasets/{dataset}/...
	r.Route("/api/datasets/{dataset}", func(r chi.Router) {
		r.Use(datasetMiddleware(cfg.Store))

		r.Get("/", datasetDetailHandler)
		r.Get("/thumbnail", thumbnailHandler(cfg.Store, cfg.Cache, cfg.Thumbnailer))
		r.Post("/link", linkHandler(cfg.Cache, cfg.ViewerURL))
	})

	return r
}

// Context key for the resolved dataset
type ctxKey string

const datasetCtxKey ctxKey = "dataset"

// datasetMiddleware resolves the dataset from the URL and injects it into the
// request context. Unknown keys get a not-found response.
func datasetMiddleware(store *catalog.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := chi.URLParam(r, "dataset")
			ds, ok := store.Dataset(key)
			if !ok {
				http.Error(w, "dataset not found: "+key, http.StatusNotFound)
				return
			}
			ctx := context.WithValue(r.Context(), datasetCtxKey, ds)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getDataset(r *http.Request) *dataset.Dataset {
	if ds, ok := r.Context().Value(datasetCtxKey).(*dataset.Dataset); ok {
		return ds
	}
	return nil
}
