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

type IntentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, intent *domain.Intent) (*domain.Intent, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Intent, error)
	GetByTag(ctx context.Context, tx *gorm.DB, tag string) (*domain.Intent, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.Intent, error)
	TagExists(ctx context.Context, tx *gorm.DB, tag string, excludeID *uuid.UUID) (bool, error)
	UpdateTag(ctx context.Context, tx *gorm.DB, id uuid.UUID, tag string) error
	Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type intentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIntentRepo(db *gorm.DB, baseLog *logger.Logger) IntentRepo {
	return &intentRepo{db: db, log: baseLog.With("repo", "IntentRepo")}
}

func (r *intentRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *intentRepo) Create(ctx context.Context, tx *gorm.DB, intent *domain.Intent) (*domain.Intent, error) {
	if err := r.handle(tx).WithContext(ctx).Create(intent).Error; err != nil {
		return nil, err
	}
	return intent, nil
}

func (r *intentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Intent, error) {
	var intent domain.Intent
	err := r.handle(tx).WithContext(ctx).
		Preload("Patterns", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Responses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&intent, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *intentRepo) GetByTag(ctx context.Context, tx *gorm.DB, tag string) (*domain.Intent, error) {
	var intent domain.Intent
	err := r.handle(tx).WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&intent, "tag = ?", tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *intentRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.Intent, error) {
	var results []*domain.Intent
	err := r.handle(tx).WithContext(ctx).
		Preload("Patterns", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Responses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Order("created_at, id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *intentRepo) TagExists(ctx context.Context, tx *gorm.DB, tag string, excludeID *uuid.UUID) (bool, error) {
	q := r.handle(tx).WithContext(ctx).Model(&domain.Intent{}).Where("tag = ?", tag)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *intentRepo) UpdateTag(ctx context.Context, tx *gorm.DB, id uuid.UUID, tag string) error {
	return r.handle(tx).WithContext(ctx).
		Model(&domain.Intent{}).
		Where("id = ?", id).
		Update("tag", tag).Error
}

func (r *intentRepo) Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.handle(tx).WithContext(ctx).
		Model(&domain.Intent{}).
		Where("id = ?", id).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *intentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.handle(tx).WithContext(ctx).Delete(&domain.Intent{}, "id = ?", id).Error
}
