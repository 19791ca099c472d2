// Package main is the entry point for the Heritage PK server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"heritagepk/internal/cache"
	"heritagepk/internal/citations"
	"heritagepk/internal/config"
	"heritagepk/internal/database"
	"heritagepk/internal/handlers"
	"heritagepk/internal/iconcache"
	"heritagepk/internal/imaging"
	"heritagepk/internal/render"
	"heritagepk/internal/router"
	"heritagepk/internal/session"
	"heritagepk/internal/storage"
	"heritagepk/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Valkey — sessions, the icon cache, and the full-page cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, session.DefaultRefreshPolicy)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// libvips worker pool for the image pipeline.
	imaging.Startup(runtime.NumCPU())
	defer imaging.Shutdown()

	// Data stores.
	userStore := store.NewUserStore(db)
	sectionTypeStore := store.NewSectionTypeStore(db)
	templateStore := store.NewLayoutTemplateStore(db)
	categoryStore := store.NewCategoryStore(db)
	iconStore := store.NewIconStore(db)
	siteStore := store.NewSiteStore(db)
	settingStore := store.NewSiteSettingStore(db)
	mediaStore := store.NewMediaStore(db)
	profileStore := store.NewProfileStore(db)
	photoStore := store.NewPhotoStore(db)
	reviewStore := store.NewReviewStore(db)
	wishlistStore := store.NewWishlistStore(db)
	tripStore := store.NewTripStore(db)

	// The five archetype rows must exist before anything renders.
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := sectionTypeStore.SeedDefaults(seedCtx); err != nil {
		slog.Error("failed to seed section types", "error", err)
		cancelSeed()
		os.Exit(1)
	}
	cancelSeed()

	// S3-compatible object storage (optional — app works without it).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3PublicBucket, cfg.S3PrivateBucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"public_bucket", cfg.S3PublicBucket,
			"private_bucket", cfg.S3PrivateBucket,
		)
	} else {
		slog.Warn("s3 storage not configured — media uploads disabled")
	}

	// Read-through icon cache over the icon store.
	iconCache := iconcache.New(valkeyClient, func(ctx context.Context, name string) (string, bool, error) {
		icon, err := iconStore.FindByName(ctx, name)
		if err != nil {
			return "", false, err
		}
		if icon == nil {
			return "", false, nil
		}
		return icon.SVG, true, nil
	}, iconcache.DefaultTTL)

	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	resolver := citations.NewResolver(nil)

	// Handler groups.
	adminHandlers := handlers.NewAdmin(renderer, sessionStore, sectionTypeStore, templateStore, categoryStore, iconStore, iconCache, siteStore, userStore, mediaStore, settingStore, storageClient, pageCache)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore)
	publicHandlers := handlers.NewPublic(settingStore, templateStore, sectionTypeStore, categoryStore, iconCache, storageClient, pageCache)
	apiHandlers := handlers.NewAPI(profileStore, photoStore, reviewStore, wishlistStore, tripStore, siteStore, storageClient, resolver)

	r := router.New(sessionStore, adminHandlers, authHandlers, publicHandlers, apiHandlers)

	// WriteTimeout must accommodate large image uploads plus the WebP
	// binary-search encodes.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
