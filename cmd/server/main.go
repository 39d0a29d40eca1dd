// Package main is the entry point for the FIB-SEM portal server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fibsem-portal/server/internal/api"
	"github.com/fibsem-portal/server/internal/cache"
	"github.com/fibsem-portal/server/internal/catalog"
	"github.com/fibsem-portal/server/internal/config"
	"github.com/fibsem-portal/server/internal/render"
	"github.com/fibsem-portal/server/internal/snapstore"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/server.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting portal server on port %d", cfg.Server.Port)

	ctx := context.Background()

	// Initialize cache manager (thumbnails + compiled viewer links)
	cacheManager, err := cache.NewManager(cache.Config{
		ThumbCacheSizeMB: cfg.Cache.ThumbSizeMB,
		ThumbTTL:         time.Duration(cfg.Cache.ThumbTTLMinutes) * time.Minute,
		LinkCacheSize:    cfg.Cache.LinkCacheEntries,
	})
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer cacheManager.Close()

	// Initialize placeholder thumbnail renderer
	thumbnailer := render.NewThumbnailer(render.Config{
		Size: cfg.Render.ThumbSize,
	})

	// Open the on-disk catalog snapshot used when the remote source is down
	snapStore, err := snapstore.NewStore(cfg.Catalog.SnapshotPath)
	if err != nil {
		log.Fatalf("Failed to open snapshot store at %s: %v", cfg.Catalog.SnapshotPath, err)
	}
	defer snapStore.Close()

	// Catalog source and loader
	client, err := catalog.NewClient(cfg.Catalog.Endpoint)
	if err != nil {
		log.Fatalf("Failed to create catalog client: %v", err)
	}
	loader := catalog.NewLoader(client)
	store := catalog.NewStore()

	// Initial load: prefer the remote catalog, fall back to the last
	// persisted snapshot so the server can start offline.
	snap, err := loader.Load(ctx)
	if err != nil {
		log.Printf("Remote catalog load failed: %v", err)
		entries, serr := snapStore.Load()
		if serr != nil {
			log.Fatalf("Snapshot fallback failed: %v", serr)
		}
		if len(entries) == 0 {
			log.Fatalf("No remote catalog and no local snapshot; cannot start")
		}
		snap = catalog.FromEntries(entries)
		log.Printf("Serving %d dataset(s) from local snapshot", len(snap.Keys))
	} else {
		log.Printf("Loaded %d dataset(s) from %s", len(snap.Keys), cfg.Catalog.Endpoint)
		if err := snapStore.Save(snap.Entries()); err != nil {
			log.Printf("Failed to persist catalog snapshot: %v", err)
		}
	}
	store.Swap(snap)

	// Periodic catalog refresh
	reloader := catalog.NewReloader(loader, store, snapStore,
		time.Duration(cfg.Catalog.ReloadMinutes)*time.Minute)
	reloader.Start()
	defer reloader.Stop()

	// Set up HTTP router
	router := api.NewRouter(api.RouterConfig{
		Store:       store,
		Cache:       cacheManager,
		Thumbnailer: thumbnailer,
		Reloader:    reloader,
		ViewerURL:   cfg.Catalog.ViewerURL,
		CORSOrigins: cfg.Server.CORSOrigins,
		Title:       cfg.Server.Title,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
