package app

import (
	"gorm.io/gorm"

	"github.com/podquote/podquote-backend/internal/platform/logger"
	"github.com/podquote/podquote-backend/internal/services"
)

type Services struct {
	Scheduler services.TaskScheduler
	QA        services.QAService
	Catalog   services.CatalogService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	scheduler := services.NewAsyncScheduler(log, cfg.SchedulerTimeout)

	qa := services.NewQAService(services.QADeps{
		DB:  db,
		Log: log,

		Scheduler: scheduler,

		Embedder:  clients.OpenAI,
		Generator: clients.OpenAI,

		Queries:    reposet.Queries,
		Answers:    reposet.Answers,
		Citations:  reposet.Citations,
		Recordings: reposet.Recordings,
		Chunks:     reposet.Chunks,

		Clips:   clients.Clips,
		Streams: clients.Streams,

		RetrieveLimit:       cfg.RetrieveLimit,
		MaxAnswers:          cfg.MaxAnswers,
		SimilarityThreshold: cfg.SimilarityThreshold,
		BoostTerms:          cfg.BoostTerms,
	})

	catalog := services.NewCatalogService(reposet.Recordings, reposet.Chunks, log)

	return Services{
		Scheduler: scheduler,
		QA:        qa,
		Catalog:   catalog,
	}
}
