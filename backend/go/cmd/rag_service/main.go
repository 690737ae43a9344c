package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/database/milvus"
	"PDFChat/backend/go/internal/database/minio"
	"PDFChat/backend/go/internal/database/postgres"
	"PDFChat/backend/go/internal/rag_service/api"
	"PDFChat/backend/go/internal/rag_service/rag/embeddings"
	"PDFChat/backend/go/internal/rag_service/rag/llms"
	"PDFChat/backend/go/internal/rag_service/rag/storages/archive"
	"PDFChat/backend/go/internal/rag_service/rag/storages/vectorstore"
	"PDFChat/backend/go/internal/rag_service/service"
	pkghttp "PDFChat/backend/go/pkg/http"
	"PDFChat/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	// 1. Load .env and configuration
	// .env is optional; variables already set in the environment take precedence.
	_ = godotenv.Load()

	path := os.Getenv(config.EnvConfigPath)
	if path == "" {
		path = defaultConfigPath
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	if err := logger.InitFromString(cfg.Logger.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	appLogger := logger.New("RAGService", "", "")
	appLogger.WithPayload(map[string]interface{}{
		"config_path":  path,
		"vector_store": cfg.VectorStore.Backend,
		"llm":          cfg.LLM.Provider,
		"embedding":    cfg.Embedding.Provider,
	}).Info("Starting RAG Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, appLogger)
	stop()
	if err != nil {
		appLogger.Error(err.Error())
		os.Exit(1)
	}
	appLogger.Info("Server gracefully stopped")
}

// run wires the service and serves until ctx is cancelled or the server fails.
// Every resource it opens is closed before it returns.
func run(ctx context.Context, cfg *config.AppConfig, appLogger *logger.Logger) error {
	// 3. Initialize Dependencies
	// Model clients are built lazily; a missing API key surfaces on first use.
	embedder := embeddings.FromConfig(cfg.Embedding)
	defer embedder.Close()
	generator := llms.FromConfig(cfg.LLM)
	defer generator.Close()

	store, err := vectorstore.New(ctx, cfg, embedder, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	defer store.Close()
	if cfg.VectorStore.Backend == "pgvector" {
		defer postgres.Close()
	}

	arc, err := archive.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create upload archive: %w", err)
	}

	// 4. Create the session manager
	sessions, err := service.NewManager(service.Deps{
		Pipeline:    cfg.Pipeline,
		VectorStore: store,
		LLM:         generator,
		Archive:     arc,
		Log:         appLogger,
	}, cfg.Server.SessionCapacity, cfg.Server.SessionTTLDuration())
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}
	go sessions.RunJanitor(ctx, time.Minute)

	// 5. Start HTTP Server in a goroutine
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(sessions, cfg.Server, appLogger)
	registerHealthChecks(ctx, cfg, handler)
	router := api.SetupRouter(handler)
	srv, err := pkghttp.NewServer(cfg, router, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	// 6. Graceful Shutdown
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	}
}

// registerHealthChecks checks the external stores the config selects. The
// database clients are process-wide singletons already opened by the factories.
func registerHealthChecks(ctx context.Context, cfg *config.AppConfig, h *api.Handler) {
	switch cfg.VectorStore.Backend {
	case "milvus":
		if c, err := milvus.GetClient(ctx, &cfg.Databases.Milvus); err == nil {
			h.AddHealthCheck("milvus", c.HealthCheck)
		}
	case "pgvector":
		h.AddHealthCheck("postgres", postgres.HealthCheck)
	}
	if cfg.Archive.Backend == "minio" {
		h.AddHealthCheck("minio", minio.HealthCheck)
	}
}
