package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatLog is one logged user turn. IsNewData is the only field that may
// change after creation: it flips true -> false when a reviewer promotes
// the log into a pattern, or in bulk after a successful retrain.
// UserMessageFold holds the lowercased message behind an index for the
// case-insensitive pending-duplicate check.
type ChatLog struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserMessage     string    `gorm:"type:text;not null" json:"user_message"`
	UserMessageFold string    `gorm:"type:text;not null;index" json:"-"`
	BotResponse     string    `gorm:"type:text;not null" json:"bot_response"`
	IntentTag       *string   `gorm:"type:text;index" json:"intent_tag,omitempty"`
	Confidence      *float64  `json:"confidence,omitempty"`
	IsNewData       bool      `gorm:"not null;default:false;index" json:"is_new_data"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
}

func (ChatLog) TableName() string { return "chat_logs" }

func (c *ChatLog) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.UserMessageFold = strings.ToLower(c.UserMessage)
	return nil
}
