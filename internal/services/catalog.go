package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/podquote/podquote-backend/internal/data/repos"
	catalogtypes "github.com/podquote/podquote-backend/internal/domain/catalog"
	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

// RecordingView carries the chunk count so clients can tell whether an
// episode is searchable yet.
type RecordingView struct {
	catalogtypes.Recording
	ChunkCount int64 `json:"chunk_count"`
}

type CatalogService interface {
	GetRecording(ctx context.Context, id uuid.UUID) (*RecordingView, error)
	ListRecordings(ctx context.Context, limit, offset int) ([]catalogtypes.Recording, error)
}

type catalogService struct {
	recordings repos.RecordingRepo
	chunks     repos.TranscriptChunkRepo
	log        *logger.Logger
}

func NewCatalogService(recordings repos.RecordingRepo, chunks repos.TranscriptChunkRepo, log *logger.Logger) CatalogService {
	return &catalogService{recordings: recordings, chunks: chunks, log: log.With("service", "catalog")}
}

func (s *catalogService) GetRecording(ctx context.Context, id uuid.UUID) (*RecordingView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rec, err := s.recordings.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	count, err := s.chunks.CountByRecording(dbc, id)
	if err != nil {
		s.log.Warn("chunk count failed", "recording_id", id, "error", err)
		count = 0
	}
	return &RecordingView{Recording: *rec, ChunkCount: count}, nil
}

func (s *catalogService) ListRecordings(ctx context.Context, limit, offset int) ([]catalogtypes.Recording, error) {
	return s.recordings.List(dbctx.Context{Ctx: ctx}, limit, offset)
}
