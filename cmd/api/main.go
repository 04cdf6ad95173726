package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/docintel/internal/application"
	appconv "github.com/bryanwahyu/docintel/internal/application/conversations"
	appdocs "github.com/bryanwahyu/docintel/internal/application/documents"
	"github.com/bryanwahyu/docintel/internal/config"
	analysisdom "github.com/bryanwahyu/docintel/internal/domain/analysis"
	convdom "github.com/bryanwahyu/docintel/internal/domain/conversations"
	docdom "github.com/bryanwahyu/docintel/internal/domain/documents"
	"github.com/bryanwahyu/docintel/internal/domain/tokens"
	aiopenai "github.com/bryanwahyu/docintel/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/docintel/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/docintel/internal/infra/db/postgres"
	"github.com/bryanwahyu/docintel/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/docintel/internal/infra/storage"
	"github.com/bryanwahyu/docintel/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB sesuai driver
	var (
		docRepo      docdom.Repository
		analysisRepo analysisdom.Repository
		convRepo     convdom.Repository
		ledger       tokens.Ledger
		healthquery  middleware.HealthChecker
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		docRepo = postgresp.NewDocumentRepository(db)
		analysisRepo = postgresp.NewAnalysisRepository(db)
		convRepo = postgresp.NewConversationRepository(db)
		ledger = postgresp.NewTokenLedger(db)
		healthquery = &middleware.DatabaseHealthChecker{DB: db}
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		docRepo = mysqlp.NewDocumentRepository(db)
		analysisRepo = mysqlp.NewAnalysisRepository(db)
		convRepo = mysqlp.NewConversationRepository(db)
		ledger = mysqlp.NewTokenLedger(db)
		healthquery = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
		cfg.Minio.PublicRead,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init AI client
	aiClient := aiopenai.NewClient(aiopenai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAITimeout(),
	})

	// init services
	docsSvc := &appdocs.Service{
		Repo:     docRepo,
		Analyses: analysisRepo,
		Blobs:    store,
		AI:       aiClient,
		Clock:    application.SystemClock{},
	}
	convSvc := &appconv.Service{
		Documents:     docRepo,
		Analyses:      analysisRepo,
		Entries:       convRepo,
		Tokens:        ledger,
		AI:            aiClient,
		Clock:         application.SystemClock{},
		FreeQuestions: cfg.AI.FreeQuestions,
		AnswerTimeout: cfg.OpenAITimeout(),
	}

	// init router + middleware
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.Auth.Enabled {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
		mux.Use(middleware.RequireOwnerMatch)
	}
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(60, 1))

	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database":  healthquery,
		"blobstore": middleware.CheckFunc(store.Check),
	}))
	mux.Mount("/", httpserver.NewRouter(docsSvc, convSvc, ledger, cfg.MaxUploadBytes()))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORS.AllowedOrigins) > 0 {
		return cfg.CORS.AllowedOrigins
	}
	return []string{"*"}
}
