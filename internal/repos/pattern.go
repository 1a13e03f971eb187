package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/intentbot-backend/internal/domain"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
)

type PatternRepo interface {
	Create(ctx context.Context, tx *gorm.DB, patterns []*domain.Pattern) ([]*domain.Pattern, error)
	DeleteByIntentID(ctx context.Context, tx *gorm.DB, intentID uuid.UUID) error
	// ExistsTextFold reports whether any pattern matches text
	// case-insensitively. Backed by the indexed pattern_text_fold column
	// so the check stays an index lookup, not a table scan.
	ExistsTextFold(ctx context.Context, tx *gorm.DB, text string) (bool, error)
}

type patternRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatternRepo(db *gorm.DB, baseLog *logger.Logger) PatternRepo {
	return &patternRepo{db: db, log: baseLog.With("repo", "PatternRepo")}
}

func (r *patternRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *patternRepo) Create(ctx context.Context, tx *gorm.DB, patterns []*domain.Pattern) ([]*domain.Pattern, error) {
	if len(patterns) == 0 {
		return []*domain.Pattern{}, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&patterns).Error; err != nil {
		return nil, err
	}
	return patterns, nil
}

func (r *patternRepo) DeleteByIntentID(ctx context.Context, tx *gorm.DB, intentID uuid.UUID) error {
	return r.handle(tx).WithContext(ctx).Delete(&domain.Pattern{}, "intent_id = ?", intentID).Error
}

func (r *patternRepo) ExistsTextFold(ctx context.Context, tx *gorm.DB, text string) (bool, error) {
	var count int64
	err := r.handle(tx).WithContext(ctx).
		Model(&domain.Pattern{}).
		Where("pattern_text_fold = ?", strings.ToLower(text)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
