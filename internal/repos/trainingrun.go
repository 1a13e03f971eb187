package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/intentbot-backend/internal/domain"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
)

type TrainingRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *domain.TrainingRun) (*domain.TrainingRun, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.TrainingRun, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.TrainingRun, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type trainingRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainingRunRepo(db *gorm.DB, baseLog *logger.Logger) TrainingRunRepo {
	return &trainingRunRepo{db: db, log: baseLog.With("repo", "TrainingRunRepo")}
}

func (r *trainingRunRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *trainingRunRepo) Create(ctx context.Context, tx *gorm.DB, run *domain.TrainingRun) (*domain.TrainingRun, error) {
	if err := r.handle(tx).WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *trainingRunRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.TrainingRun, error) {
	var run domain.TrainingRun
	err := r.handle(tx).WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *trainingRunRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.TrainingRun, error) {
	var runs []*domain.TrainingRun
	err := r.handle(tx).WithContext(ctx).
		Order("trained_at DESC, id DESC").
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *trainingRunRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := r.handle(tx).WithContext(ctx).Delete(&domain.TrainingRun{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}
