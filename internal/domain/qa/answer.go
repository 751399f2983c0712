package qa

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one candidate response to a Query. Immutable after creation.
// A Query owns zero (never happens: fallbacks are answers too), one, or
// several Answers.
type Answer struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QueryID uuid.UUID `gorm:"type:uuid;not null;index" json:"query_id"`

	Text string `gorm:"column:text;type:text;not null" json:"text"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Answer) TableName() string { return "answer" }
