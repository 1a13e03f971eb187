package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Intent is a named category of user request. It owns its Patterns and
// Responses; deleting an intent cascades to both child sets.
type Intent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Tag       string    `gorm:"type:text;not null;uniqueIndex" json:"tag"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Patterns  []Pattern  `gorm:"foreignKey:IntentID" json:"patterns,omitempty"`
	Responses []Response `gorm:"foreignKey:IntentID" json:"responses,omitempty"`
}

func (Intent) TableName() string { return "intents" }

func (i *Intent) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Pattern is a labeled example utterance used as training data.
// PatternTextFold holds the lowercased text behind an index so
// case-insensitive duplicate checks stay an index lookup.
type Pattern struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IntentID        uuid.UUID `gorm:"type:uuid;not null;index" json:"intent_id"`
	PatternText     string    `gorm:"type:text;not null" json:"pattern_text"`
	PatternTextFold string    `gorm:"type:text;not null;index" json:"-"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

func (Pattern) TableName() string { return "patterns" }

func (p *Pattern) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.PatternTextFold = strings.ToLower(p.PatternText)
	return nil
}

// Response is a canned reply template belonging to one intent.
type Response struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IntentID     uuid.UUID `gorm:"type:uuid;not null;index" json:"intent_id"`
	ResponseText string    `gorm:"type:text;not null" json:"response_text"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (Response) TableName() string { return "responses" }

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
