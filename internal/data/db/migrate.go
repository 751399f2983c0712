package db

import (
	types "github.com/podquote/podquote-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// Catalog (owned by ingestion; migrated here so a fresh database works)
		&types.Recording{},
		&types.TranscriptChunk{},

		// Answering pipeline
		&types.Query{},
		&types.Answer{},
		&types.Citation{},
	)
}
