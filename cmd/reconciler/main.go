package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/SeakMengs/AutoTermo/internal/database"
	"github.com/SeakMengs/AutoTermo/internal/env"
	filestorage "github.com/SeakMengs/AutoTermo/internal/file_storage"
	"github.com/SeakMengs/AutoTermo/internal/repository"
	"github.com/SeakMengs/AutoTermo/internal/scheduler"
	"github.com/SeakMengs/AutoTermo/internal/service"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/SeakMengs/AutoTermo/pkg/termo"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV, "reconciler")
	defer logger.Sync()

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := filestorage.NewDocumentStore(ctx, &cfg, logger)
	if err != nil {
		logger.Panic(err)
	}

	repo := repository.NewRepository(db, logger)
	// Only the rebuild path runs here, nothing is rendered or notified
	termos := service.NewTermoService(service.TermoServiceOptions{
		Logger:     logger,
		Vacancies:  repo.Vacancy,
		Projects:   repo.Project,
		Signatures: repo.TermSignature,
		Documents:  repo.TermDocument,
		Storage:    storage,
		Overlayer:  termo.NewOverlayer(),
	})

	job := scheduler.NewReconcileJob(termos, cfg.Termo, logger)

	// Catch up once at startup instead of waiting for the first tick
	if total, err := job.RunOnce(ctx); err != nil {
		logger.Errorf("Initial reconcile failed: %v", err)
	} else {
		logger.Infof("Initial reconcile: %+v", total)
	}

	if err := job.Start(); err != nil {
		logger.Panic(err)
	}

	<-ctx.Done()
	logger.Info("Shutting down reconciler")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	job.Stop(shutdownCtx)
}
