// @title           Bouquet Studio API
// @version         1.0.0
// @description     Backend API for the bouquet designer. Clients compose bouquets on a server-held canvas session, save them as drafts and turn them into photorealistic designs with the Flux image model. Canvas changes are announced via Supabase Realtime.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bouquet-studio-backend/docs"
	"bouquet-studio-backend/internal/catalog"
	"bouquet-studio-backend/internal/config"
	"bouquet-studio-backend/internal/database"
	"bouquet-studio-backend/internal/editor"
	"bouquet-studio-backend/internal/flux"
	"bouquet-studio-backend/internal/handlers"
	"bouquet-studio-backend/internal/middleware"
	"bouquet-studio-backend/internal/render"
	"bouquet-studio-backend/internal/s3store"
	"bouquet-studio-backend/internal/services"
	"bouquet-studio-backend/internal/supabase"

	"github.com/gin-gonic/gin"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Default()
	if err != nil {
		log.Fatalf("Failed to load asset catalog: %v", err)
	}
	if err := cat.Validate(); err != nil {
		log.Fatalf("Invalid asset catalog: %v", err)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	middleware.InitPrometheus(reg)
	services.InitPrometheus(reg)

	// Supabase
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}
	realtimeClient := supabase.NewRealtimeClient(cfg.SupabaseURL, cfg.SupabasePublishableKey)

	var objects services.ObjectStore
	switch cfg.StorageBackend {
	case config.StorageS3:
		objects, err = s3store.New(ctx, cfg.AWSRegion, cfg.AWSBucketName, cfg.AWSPublicBaseURL)
	default:
		objects, err = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	}
	if err != nil {
		log.Fatalf("Failed to initialize %s storage: %v", cfg.StorageBackend, err)
	}

	// Database
	var dbClient *supabase.DatabaseClient
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set. Drafts and designs are disabled.")
	} else {
		dbClient, err = supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize database client: %v", err)
			dbClient = nil
		} else {
			defer dbClient.Close()

			migrator, err := database.NewMigrator(cfg.DatabaseURL)
			if err != nil {
				log.Printf("Warning: Failed to initialize migrator: %v", err)
			} else {
				if err := migrator.Run(ctx); err != nil {
					log.Printf("Warning: Migration failed: %v", err)
				} else {
					log.Println("Migrations completed successfully")
				}
				migrator.Close()
			}
		}
	}

	// Rendering
	remoteHosts := render.NewHostAllowlist(append(cfg.ProxyAllowedHosts, cfg.PublicHost())...)
	loader := render.NewAssetLoader(os.DirFS(cfg.AssetsDir), render.NewHTTPClient(cfg.AssetCacheDir, remoteHosts))
	loader.SetAllowedHosts(remoteHosts)
	rasterizer := render.NewRasterizer(loader, cfg.RasterPixelRatio)

	fluxClient := flux.NewClient(cfg.FluxAPIBaseURL, cfg.FluxAPIKey, cfg.FluxModel)
	fluxClient.SetPoller(flux.NewPoller(cfg.FluxPollMaxAttempts, cfg.FluxPollInterval))

	// Editor sessions
	store := editor.NewStore(cat, cfg.SessionTTL)
	store.SetPublisher(realtimeClient, supabase.EventCanvasUpdated, supabase.CanvasUpdatedPayload)
	go store.Sweep(ctx, time.Minute)

	// Services (nil without a database; the handlers answer 503)
	var (
		draftService      *services.DraftService
		designService     *services.DesignService
		generationService *services.GenerationService
		health            handlers.Pinger
	)
	if dbClient != nil {
		draftService = services.NewDraftService(dbClient)
		designService = services.NewDesignService(dbClient, objects)
		generationService = services.NewGenerationService(rasterizer, fluxClient, objects, dbClient, realtimeClient)
		health = dbClient
	}

	healthHandler := handlers.NewHealthHandler(health)
	catalogHandler := handlers.NewCatalogHandler(cat)
	sessionsHandler := handlers.NewSessionsHandler(store, cat, loader, rasterizer)
	draftsHandler := handlers.NewDraftsHandler(draftService, store, cat, loader)
	designsHandler := handlers.NewDesignsHandler(designService, generationService, store)
	authHandler := handlers.NewAuthHandler(supabaseClient.Auth())
	proxyHandler := handlers.NewProxyHandler(render.NewHTTPClient("", remoteHosts), remoteHosts)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx, time.Minute, 10*time.Minute)

	// Setup router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass),
		gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api/v1")
	api.GET("/catalog", catalogHandler.GetCatalog)
	api.GET("/proxy-image", limiter.Middleware(), proxyHandler.ProxyImage)

	// Auth
	api.POST("/auth/signup", limiter.Middleware(), authHandler.SignUp)
	api.POST("/auth/signin", limiter.Middleware(), authHandler.SignIn)
	account := api.Group("/auth", middleware.AuthMiddleware(cfg))
	account.POST("/signout", authHandler.SignOut)
	account.GET("/me", authHandler.Me)

	// Canvas sessions work signed out; a token binds the session to its user
	sessions := api.Group("/sessions", middleware.OptionalAuthMiddleware(cfg), limiter.Middleware())
	sessions.POST("", sessionsHandler.CreateSession)
	sessions.GET("/:id", sessionsHandler.GetSession)
	sessions.DELETE("/:id", sessionsHandler.CloseSession)
	sessions.PUT("/:id/viewport", sessionsHandler.Resize)
	sessions.POST("/:id/items", sessionsHandler.DropAsset)
	sessions.DELETE("/:id/items/:item_id", sessionsHandler.RemoveItem)
	sessions.POST("/:id/items/:item_id/duplicate", sessionsHandler.DuplicateItem)
	sessions.POST("/:id/items/:item_id/drag", sessionsHandler.Drag)
	sessions.POST("/:id/items/:item_id/transform", sessionsHandler.Transform)
	sessions.POST("/:id/select", sessionsHandler.Select)
	sessions.POST("/:id/hover", sessionsHandler.Hover)
	sessions.POST("/:id/keys", sessionsHandler.KeyDown)
	sessions.GET("/:id/layers", sessionsHandler.Layers)
	sessions.PUT("/:id/layers", sessionsHandler.SetLayerOrder)
	sessions.POST("/:id/layers/move", sessionsHandler.MoveLayer)
	sessions.POST("/:id/reset", sessionsHandler.Reset)
	sessions.PUT("/:id/sleeve", sessionsHandler.SetSleeve)
	sessions.PUT("/:id/background", sessionsHandler.SetBackground)
	sessions.GET("/:id/prompt", sessionsHandler.Prompt)
	sessions.GET("/:id/snapshot.png", sessionsHandler.Snapshot)

	// Drafts and designs
	user := api.Group("", middleware.AuthMiddleware(cfg), limiter.Middleware())
	user.POST("/drafts", draftsHandler.SaveDraft)
	user.GET("/drafts", draftsHandler.ListDrafts)
	user.GET("/drafts/:draft_id", draftsHandler.GetDraft)
	user.PATCH("/drafts/:draft_id", draftsHandler.RenameDraft)
	user.DELETE("/drafts/:draft_id", draftsHandler.DeleteDraft)
	user.POST("/drafts/:draft_id/load", draftsHandler.LoadDraft)
	user.POST("/designs/generate", designsHandler.Generate)
	user.GET("/designs", designsHandler.ListDesigns)
	user.DELETE("/designs/:design_id", designsHandler.DeleteDesign)

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		gorillahandlers.AllowCredentials(),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           cors(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
