package account

import (
	"context"
	"errors"

	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, a *Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repo) FindByUsername(ctx context.Context, username string) (*Account, error) {
	var a Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "account %s not found", username)
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Account, error) {
	var a Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "account %s not found", id)
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repo) List(ctx context.Context, offset, limit int) ([]Account, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var accounts []Account
	if err := r.db.WithContext(ctx).Order("created_at desc").Offset(offset).Limit(limit).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}
