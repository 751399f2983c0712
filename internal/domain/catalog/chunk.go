package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// TranscriptChunk is a bounded time-ranged slice of a recording's transcript
// with its own embedding. Read-only from the answering pipeline's perspective.
type TranscriptChunk struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecordingID uuid.UUID `gorm:"type:uuid;not null;index" json:"recording_id"`

	StartSec float64 `gorm:"column:start_sec;not null" json:"start_sec"`
	EndSec   float64 `gorm:"column:end_sec;not null" json:"end_sec"`

	Text        string `gorm:"column:text;type:text;not null" json:"text"`
	SpeakerName string `gorm:"column:speaker_name;not null;default:''" json:"speaker_name,omitempty"`

	Embedding pgvector.Vector `gorm:"type:vector(1536)" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (TranscriptChunk) TableName() string { return "transcript_chunk" }
