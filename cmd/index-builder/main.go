package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"github.com/oncoplan-ai/platform/pkg/common/config"
	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/kb"
	"github.com/oncoplan-ai/platform/pkg/rag"
)

// Builds guideline indices ahead of time so the service never pays the
// first-request build cost. Defaults to every registered cancer type.
func main() {
	logger.Init()
	cfg := config.Load()

	types := flag.String("types", "", "comma-separated cancer types (default: all registered)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall build timeout")
	flag.Parse()

	targets := kb.Registry
	if *types != "" {
		targets = strings.Split(*types, ",")
	}

	embedder := rag.NewHTTPEmbedder(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingTimeout)
	indices := rag.NewIndexManager(cfg.GuidelineDir, cfg.IndexDir, embedder)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	failed := 0
	for _, cancerType := range targets {
		cancerType = strings.TrimSpace(strings.ToLower(cancerType))
		if _, err := indices.Build(ctx, cancerType); err != nil {
			logger.Log.WithError(err).WithField("cancer_type", cancerType).Error("Index build failed")
			failed++
		}
	}

	if failed > 0 {
		logger.Log.WithField("failed", failed).Fatal("Some indices failed to build")
	}
	logger.Log.WithField("types", len(targets)).Info("All indices built")
}
