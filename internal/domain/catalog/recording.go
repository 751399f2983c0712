package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Recording is one transcribed episode. Ingestion owns these rows; the
// answering pipeline only reads them.
type Recording struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Title    string `gorm:"column:title;not null;default:''" json:"title"`
	ShowName string `gorm:"column:show_name;not null;default:''" json:"show_name,omitempty"`

	MediaURL string `gorm:"column:media_url;not null;default:''" json:"media_url"`
	FeedURL  string `gorm:"column:feed_url;not null;default:''" json:"feed_url,omitempty"`

	DurationSec float64    `gorm:"column:duration_sec;not null;default:0" json:"duration_sec"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Recording) TableName() string { return "recording" }
