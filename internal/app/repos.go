package app

import (
	"gorm.io/gorm"

	"github.com/podquote/podquote-backend/internal/data/repos"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

type Repos struct {
	Queries    repos.QueryRepo
	Answers    repos.AnswerRepo
	Citations  repos.CitationRepo
	Recordings repos.RecordingRepo
	Chunks     repos.TranscriptChunkRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Queries:    repos.NewQueryRepo(db, log),
		Answers:    repos.NewAnswerRepo(db, log),
		Citations:  repos.NewCitationRepo(db, log),
		Recordings: repos.NewRecordingRepo(db, log),
		Chunks:     repos.NewTranscriptChunkRepo(db, log),
	}
}
