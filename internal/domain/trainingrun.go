package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TrainingRun is the immutable record of one successful training run.
// It is written exactly once at the end of a run and never updated.
type TrainingRun struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EpochsRequested int    `gorm:"not null" json:"epochs_requested"`
	EpochsRun       int    `gorm:"not null" json:"epochs_run"`
	SplitRatio      string `gorm:"type:text;not null" json:"split_ratio"`
	BatchSize       int    `gorm:"not null" json:"batch_size"`

	TotalSamples int `gorm:"not null" json:"total_samples"`
	TrainSamples int `gorm:"not null" json:"train_samples"`
	ValSamples   int `gorm:"not null" json:"val_samples"`
	TestSamples  int `gorm:"not null" json:"test_samples"`
	NumClasses   int `gorm:"not null" json:"num_classes"`

	TrainAccuracy float64 `gorm:"not null" json:"train_accuracy"`
	TrainLoss     float64 `gorm:"not null" json:"train_loss"`
	ValAccuracy   float64 `gorm:"not null" json:"val_accuracy"`
	ValLoss       float64 `gorm:"not null" json:"val_loss"`
	TestAccuracy  float64 `gorm:"not null" json:"test_accuracy"`
	TestLoss      float64 `gorm:"not null" json:"test_loss"`

	ConfusionMatrix      datatypes.JSON `gorm:"type:json" json:"confusion_matrix"`
	ClassificationReport datatypes.JSON `gorm:"type:json" json:"classification_report"`
	ClassNames           datatypes.JSON `gorm:"type:json" json:"class_names"`

	TrainedAt time.Time `gorm:"not null;index" json:"trained_at"`
}

func (TrainingRun) TableName() string { return "training_runs" }

func (t *TrainingRun) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
