package qa

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	QueryModeGlobal  = "global"
	QueryModeEpisode = "episode"

	QueryStatusQueued    = "queued"
	QueryStatusRunning   = "running"
	QueryStatusSucceeded = "succeeded"
	QueryStatusFailed    = "failed"
)

// Query is one question posed against the transcript corpus. RecordingID is
// set iff Mode is episode. Status is a convenience signal for polling clients;
// the Answer rows are the authoritative result.
type Query struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Text string    `gorm:"column:text;type:text;not null" json:"text"`

	Mode        string     `gorm:"column:mode;not null;default:'global';index" json:"mode"`
	RecordingID *uuid.UUID `gorm:"type:uuid;column:recording_id;index" json:"recording_id,omitempty"`

	Status string `gorm:"column:status;not null;default:'queued';index" json:"status"`

	RetrievalTrace datatypes.JSON `gorm:"type:jsonb;column:retrieval_trace" json:"retrieval_trace,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Query) TableName() string { return "query" }
