package order

import (
	"context"
	"errors"

	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
	"gorm.io/gorm"
)

// Repo 基于 GORM 的订单存储实现。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

var _ Store = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, o *Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("ExtraFees", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("due_date ASC, created_at ASC") }).
		Where("id = ?", id).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "order %s not found", id)
		}
		return nil, err
	}
	return &o, nil
}

// List 支持按 status 过滤 + 分页。
func (r *Repo) List(ctx context.Context, f ListOrdersFilter) ([]Order, int64, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []Order
	if err := q.Preload("ExtraFees").Preload("Tasks").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *Repo) ListByDriver(ctx context.Context, driverID string) ([]Order, error) {
	var orders []Order
	err := r.db.WithContext(ctx).Preload("ExtraFees").Preload("Tasks").
		Where("driver_id = ?", driverID).
		Order("scheduled_time ASC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Update 以版本号条件更新订单主记录并在同一事务里落任务变更。
// 版本不匹配（并发写入先到）返回 Conflict，调用方决定是否重读重试。
func (r *Repo) Update(ctx context.Context, o *Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Order{}).
			Where("id = ? AND version = ?", o.ID, o.Version).
			Updates(map[string]any{
				"customer_name":  o.CustomerName,
				"customer_phone": o.CustomerPhone,
				"customer_email": o.CustomerEmail,
				"address":        o.Address,
				"scheduled_time": o.ScheduledTime,
				"car_model":      o.CarModel,
				"status":         o.Status,
				"driver_id":      o.DriverID,
				"vehicle_id":     o.VehicleID,
				"payment_status": o.PaymentStatus,
				"payment_amount": o.PaymentAmount,
				"payment_method": o.PaymentMethod,
				"notes":          o.Notes,
				"assigned_at":    o.AssignedAt,
				"started_at":     o.StartedAt,
				"completed_at":   o.CompletedAt,
				"canceled_at":    o.CanceledAt,
				"version":        o.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.Newf(errs.KindConflict, "order %s version conflict", o.ID)
		}
		o.Version++

		for i := range o.Tasks {
			if err := tx.Save(&o.Tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) AppendFee(ctx context.Context, fee *ExtraFee) error {
	return r.db.WithContext(ctx).Create(fee).Error
}

func (r *Repo) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).Where("id = ?", taskID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "task %s not found", taskID)
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repo) UpdateTask(ctx context.Context, t *Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *Repo) ListTasks(ctx context.Context, orderID string) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("due_date ASC, created_at ASC").Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
