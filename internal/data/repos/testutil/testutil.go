// Package testutil provides an in-memory database and seed helpers for
// repository and pipeline tests. The sqlite schema mirrors the postgres one
// minus the vector column, which similarity-search tests fake at the step
// layer instead.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	catalogtypes "github.com/podquote/podquote-backend/internal/domain/catalog"
	qatypes "github.com/podquote/podquote-backend/internal/domain/qa"
)

func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&catalogtypes.Recording{},
		&qatypes.Query{},
		&qatypes.Answer{},
		&qatypes.Citation{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func SeedRecording(t *testing.T, db *gorm.DB, title, mediaURL string) catalogtypes.Recording {
	t.Helper()
	rec := catalogtypes.Recording{
		ID:          uuid.New(),
		Title:       title,
		ShowName:    "Test Show",
		MediaURL:    mediaURL,
		DurationSec: 3600,
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed recording: %v", err)
	}
	return rec
}

func SeedQuery(t *testing.T, db *gorm.DB, text, mode string, recordingID *uuid.UUID) qatypes.Query {
	t.Helper()
	q := qatypes.Query{
		ID:          uuid.New(),
		Text:        text,
		Mode:        mode,
		RecordingID: recordingID,
		Status:      qatypes.QueryStatusQueued,
	}
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("seed query: %v", err)
	}
	return q
}

func SeedAnswer(t *testing.T, db *gorm.DB, queryID uuid.UUID, text string) qatypes.Answer {
	t.Helper()
	a := qatypes.Answer{
		ID:        uuid.New(),
		QueryID:   queryID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seed answer: %v", err)
	}
	return a
}
