package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/intentbot-backend/internal/domain"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
)

type ChatLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, log *domain.ChatLog) (*domain.ChatLog, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.ChatLog, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*domain.ChatLog, int64, error)
	ListPending(ctx context.Context, tx *gorm.DB) ([]*domain.ChatLog, error)
	// PendingTextExistsFold reports whether a log flagged as new data
	// already carries the same message, case-insensitively.
	PendingTextExistsFold(ctx context.Context, tx *gorm.DB, text string) (bool, error)
	SetNewData(ctx context.Context, tx *gorm.DB, id uuid.UUID, isNewData bool) error
	ClearAllPending(ctx context.Context, tx *gorm.DB) (int64, error)
}

type chatLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatLogRepo(db *gorm.DB, baseLog *logger.Logger) ChatLogRepo {
	return &chatLogRepo{db: db, log: baseLog.With("repo", "ChatLogRepo")}
}

func (r *chatLogRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *chatLogRepo) Create(ctx context.Context, tx *gorm.DB, log *domain.ChatLog) (*domain.ChatLog, error) {
	if err := r.handle(tx).WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

func (r *chatLogRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.ChatLog, error) {
	var log domain.ChatLog
	err := r.handle(tx).WithContext(ctx).First(&log, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *chatLogRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*domain.ChatLog, int64, error) {
	h := r.handle(tx).WithContext(ctx)

	var total int64
	if err := h.Model(&domain.ChatLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []*domain.ChatLog
	err := h.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *chatLogRepo) ListPending(ctx context.Context, tx *gorm.DB) ([]*domain.ChatLog, error) {
	var logs []*domain.ChatLog
	err := r.handle(tx).WithContext(ctx).
		Where("is_new_data = ?", true).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *chatLogRepo) PendingTextExistsFold(ctx context.Context, tx *gorm.DB, text string) (bool, error) {
	var count int64
	err := r.handle(tx).WithContext(ctx).
		Model(&domain.ChatLog{}).
		Where("is_new_data = ?", true).
		Where("user_message_fold = ?", strings.ToLower(text)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *chatLogRepo) SetNewData(ctx context.Context, tx *gorm.DB, id uuid.UUID, isNewData bool) error {
	res := r.handle(tx).WithContext(ctx).
		Model(&domain.ChatLog{}).
		Where("id = ?", id).
		Update("is_new_data", isNewData)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (r *chatLogRepo) ClearAllPending(ctx context.Context, tx *gorm.DB) (int64, error) {
	res := r.handle(tx).WithContext(ctx).
		Model(&domain.ChatLog{}).
		Where("is_new_data = ?", true).
		Update("is_new_data", false)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
