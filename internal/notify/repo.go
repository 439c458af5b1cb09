package notify

import (
	"context"
	"errors"

	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
	"gorm.io/gorm"
)

// Repo 通知的持久化层。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListByUser 按用户拉取通知，unreadOnly=true 时只返回未读。
func (r *Repo) ListByUser(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]Notification, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("`read` = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Notification
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// MarkRead 标记单条通知已读。
func (r *Repo) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return errs.Newf(errs.KindNotFound, "notification %s not found", id)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Newf(errs.KindNotFound, "notification %s not found", id)
	}
	return nil
}
