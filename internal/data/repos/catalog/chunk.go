package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/podquote/podquote-backend/internal/platform/dbctx"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

// ChunkHit is one transcript chunk scored against a query embedding, with the
// recording columns the pipeline needs joined in so rendering an evidence
// block never goes back to the database.
type ChunkHit struct {
	ChunkID     uuid.UUID `gorm:"column:chunk_id"`
	RecordingID uuid.UUID `gorm:"column:recording_id"`

	StartSec float64 `gorm:"column:start_sec"`
	EndSec   float64 `gorm:"column:end_sec"`

	Text        string `gorm:"column:text"`
	SpeakerName string `gorm:"column:speaker_name"`

	RecordingTitle string `gorm:"column:recording_title"`
	MediaURL       string `gorm:"column:media_url"`

	Similarity float64 `gorm:"column:similarity"`
}

type TranscriptChunkRepo interface {
	// Search returns chunks whose cosine similarity to the embedding clears
	// the threshold, most similar first. A nil recordingID searches the whole
	// corpus; a non-nil one restricts to that recording.
	Search(dbc dbctx.Context, embedding []float32, recordingID *uuid.UUID, limit int, threshold float64) ([]ChunkHit, error)
	CountByRecording(dbc dbctx.Context, recordingID uuid.UUID) (int64, error)
}

type transcriptChunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptChunkRepo(db *gorm.DB, log *logger.Logger) TranscriptChunkRepo {
	return &transcriptChunkRepo{db: db, log: log.With("repo", "catalog.transcript_chunk")}
}

func (r *transcriptChunkRepo) Search(dbc dbctx.Context, embedding []float32, recordingID *uuid.UUID, limit int, threshold float64) ([]ChunkHit, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if limit <= 0 {
		limit = 12
	}

	vec := pgvector.NewVector(embedding)

	sql := `
SELECT
  tc.id              AS chunk_id,
  tc.recording_id    AS recording_id,
  tc.start_sec       AS start_sec,
  tc.end_sec         AS end_sec,
  tc.text            AS text,
  tc.speaker_name    AS speaker_name,
  r.title            AS recording_title,
  r.media_url        AS media_url,
  1 - (tc.embedding <=> ?) AS similarity
FROM transcript_chunk tc
JOIN recording r ON r.id = tc.recording_id
WHERE 1 - (tc.embedding <=> ?) > ?`
	args := []any{vec, vec, threshold}

	if recordingID != nil {
		sql += `
  AND tc.recording_id = ?`
		args = append(args, *recordingID)
	}

	sql += fmt.Sprintf(`
ORDER BY similarity DESC
LIMIT %d`, limit)

	var out []ChunkHit
	if err := txx.WithContext(dbc.Ctx).Raw(sql, args...).Scan(&out).Error; err != nil {
		r.log.Error("chunk similarity search failed", "error", err)
		return nil, err
	}
	return out, nil
}

func (r *transcriptChunkRepo) CountByRecording(dbc dbctx.Context, recordingID uuid.UUID) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var n int64
	if err := txx.WithContext(dbc.Ctx).
		Table("transcript_chunk").
		Where("recording_id = ?", recordingID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
