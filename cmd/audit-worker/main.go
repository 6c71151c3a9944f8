package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oncoplan-ai/platform/pkg/common/config"
	"github.com/oncoplan-ai/platform/pkg/common/database"
	"github.com/oncoplan-ai/platform/pkg/common/kafka"
	"github.com/oncoplan-ai/platform/pkg/common/logger"
	"github.com/oncoplan-ai/platform/pkg/common/models"
	"github.com/oncoplan-ai/platform/pkg/plans"
)

// Consumes plan and outcome events and appends them to the audit trail.
func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}
	repo := plans.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate audit tables")
	}

	consumer := kafka.NewConsumer(cfg.PlanEventTopic, cfg.KafkaGroupID+"-audit")
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("Shutting down audit worker")
		cancel()
	}()

	logger.Log.WithField("topic", cfg.PlanEventTopic).Info("Audit worker consuming")
	err = consumer.Consume(ctx, func(ctx context.Context, event models.Event) error {
		return repo.RecordAudit(ctx, event)
	})
	if err != nil && err != context.Canceled {
		logger.Log.WithError(err).Error("Consumer stopped")
	}
	database.ClosePostgres()
}
