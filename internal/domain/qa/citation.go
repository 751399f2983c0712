package qa

import (
	"time"

	"github.com/google/uuid"
)

// Citation binds one quoted span of an Answer to a transcript chunk and its
// time range. Rank preserves generation order after invalid and duplicate
// citations are dropped. ClipURL is populated best-effort after the row is
// durable and may stay null forever.
type Citation struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AnswerID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_citation_answer_chunk,priority:1;uniqueIndex:idx_citation_answer_rank,priority:1" json:"answer_id"`
	ChunkID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_citation_answer_chunk,priority:2" json:"chunk_id"`

	// Denormalized from the cited chunk so the polling read model never
	// touches the vector table.
	RecordingID uuid.UUID `gorm:"type:uuid;not null;index" json:"recording_id"`

	StartSec float64 `gorm:"column:start_sec;not null" json:"start_sec"`
	EndSec   float64 `gorm:"column:end_sec;not null" json:"end_sec"`

	Rank int `gorm:"column:rank;not null;uniqueIndex:idx_citation_answer_rank,priority:2" json:"rank"`

	Quote       string `gorm:"column:quote;type:text;not null;default:''" json:"quote"`
	SpeakerName string `gorm:"column:speaker_name;not null;default:''" json:"speaker_name,omitempty"`

	ClipURL *string `gorm:"column:clip_url" json:"clip_url,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Citation) TableName() string { return "citation" }
