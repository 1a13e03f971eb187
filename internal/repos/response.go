package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/intentbot-backend/internal/domain"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
)

type ResponseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, responses []*domain.Response) ([]*domain.Response, error)
	DeleteByIntentID(ctx context.Context, tx *gorm.DB, intentID uuid.UUID) error
}

type responseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	return &responseRepo{db: db, log: baseLog.With("repo", "ResponseRepo")}
}

func (r *responseRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *responseRepo) Create(ctx context.Context, tx *gorm.DB, responses []*domain.Response) ([]*domain.Response, error) {
	if len(responses) == 0 {
		return []*domain.Response{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) DeleteByIntentID(ctx context.Context, tx *gorm.DB, intentID uuid.UUID) error {
	return r.handle(tx).WithContext(ctx).Delete(&domain.Response{}, "intent_id = ?", intentID).Error
}
