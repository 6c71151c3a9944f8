package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/oncoplan-ai/platform/pkg/common/config"
	"github.com/oncoplan-ai/platform/pkg/common/database"
	"github.com/oncoplan-ai/platform/pkg/common/kafka"
	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/intake"
	"github.com/oncoplan-ai/platform/pkg/kb"
	"github.com/oncoplan-ai/platform/pkg/outcome"
	"github.com/oncoplan-ai/platform/pkg/planner"
	"github.com/oncoplan-ai/platform/pkg/plans"
	"github.com/oncoplan-ai/platform/pkg/rag"
	"github.com/oncoplan-ai/platform/pkg/redact"
	"github.com/oncoplan-ai/platform/pkg/rules"
)

func main() {
	logger.Init()
	cfg := config.Load()

	store, err := loadKnowledgeBase(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load knowledge base")
	}

	redactionRules, err := redact.LoadRules(cfg.RedactionRulesPath)
	if err != nil {
		logger.Log.WithError(err).Warn("Falling back to default redaction rules")
	}
	redactor, err := redact.New(redactionRules)
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid redaction rules")
	}

	embedder := rag.NewHTTPEmbedder(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingTimeout)
	indices := rag.NewIndexManager(cfg.GuidelineDir, cfg.IndexDir, embedder)
	pubmed := rag.NewPubMedClient(cfg.PubMedSearchURL, cfg.PubMedFetchURL, cfg.PubMedTimeout, database.GetRedis(), cfg.EvidenceCacheTTL)
	retriever := rag.NewHybridRetriever(rag.NewLocalRetriever(indices), pubmed, cfg.LocalRetrievalK, cfg.OnlineRetrievalK)

	generator := planner.NewGenerator(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModelName, cfg.LLMMaxTokens, cfg.MinGeneratedLen, cfg.LLMTimeout)
	scorer := outcome.NewRiskScorer(cfg.RiskArtifactDir)

	var repo *plans.Repository
	if db, err := database.GetPostgres(); err != nil {
		logger.Log.WithError(err).Warn("Plan persistence disabled")
	} else {
		repo = plans.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate plan tables")
		}
	}

	producer := kafka.NewProducer(cfg.PlanEventTopic)
	defer producer.Close()

	service := planner.NewService(
		intake.NewValidator(store.Supported),
		redactor,
		rules.NewEngine(store),
		retriever,
		generator,
		scorer,
		repo,
		producer,
	)

	router := mux.NewRouter()
	planner.NewHandler(service, repo, cfg.MaxRequestBody).RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", server.Addr).Info("Planner service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down planner service")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
	database.ClosePostgres()
	database.CloseRedis()
}

func loadKnowledgeBase(cfg *config.Config) (*kb.Store, error) {
	if cfg.KnowledgeBaseDir == "" {
		logger.Log.Info("Using built-in knowledge base")
		return kb.Default(), nil
	}
	return kb.Load(cfg.KnowledgeBaseDir)
}
