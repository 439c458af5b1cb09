package fleet

import (
	"context"
	"errors"

	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
	"gorm.io/gorm"
)

// Repo 车队目录：车辆/司机的读查询与原子占用。
// TryReserve* 通过条件 UPDATE 实现 compare-and-set：
// 只有 status=available 的行会被改写，RowsAffected=0 即竞争失败，
// 并发抢占同一资源时数据库保证至多一个赢家。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) UpsertVehicle(ctx context.Context, v *Vehicle) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *Repo) GetVehicle(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "vehicle %s not found", id)
		}
		return nil, err
	}
	return &v, nil
}

// ListVehicles 支持按 status / model 过滤 + 分页。
func (r *Repo) ListVehicles(ctx context.Context, status VehicleStatus, model string, offset, limit int) ([]Vehicle, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Vehicle{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if model != "" {
		q = q.Where("model = ?", model)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var vehicles []Vehicle
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&vehicles).Error; err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

// FindAvailableVehicles 查询可分配车辆（可按车型过滤）。
func (r *Repo) FindAvailableVehicles(ctx context.Context, model string, limit int) ([]Vehicle, error) {
	if limit <= 0 {
		limit = 20
	}
	q := r.db.WithContext(ctx).Where("status = ?", VehicleAvailable)
	if model != "" {
		q = q.Where("model = ?", model)
	}
	var vehicles []Vehicle
	if err := q.Order("battery_level DESC").Limit(limit).Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// TryReserveVehicle 原子占用车辆：available -> assigned。
func (r *Repo) TryReserveVehicle(ctx context.Context, vehicleID string) error {
	if _, err := r.GetVehicle(ctx, vehicleID); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&Vehicle{}).
		Where("id = ? AND status = ?", vehicleID, VehicleAvailable).
		Update("status", VehicleAssigned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Newf(errs.KindConflict, "vehicle %s is not available", vehicleID)
	}
	return nil
}

// ReleaseVehicle 归还车辆：assigned -> available。
// 已不处于 assigned（被运维改为维保/充电等）时不强行覆盖。
func (r *Repo) ReleaseVehicle(ctx context.Context, vehicleID string) error {
	res := r.db.WithContext(ctx).Model(&Vehicle{}).
		Where("id = ? AND status = ?", vehicleID, VehicleAssigned).
		Updates(map[string]any{"status": VehicleAvailable, "current_driver_id": ""})
	return res.Error
}

func (r *Repo) UpsertDriver(ctx context.Context, d *Driver) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *Repo) GetDriver(ctx context.Context, id string) (*Driver, error) {
	var d Driver
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.KindNotFound, "driver %s not found", id)
		}
		return nil, err
	}
	return &d, nil
}

// ListDrivers 支持按 status 过滤 + 分页。
func (r *Repo) ListDrivers(ctx context.Context, status DriverStatus, offset, limit int) ([]Driver, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Driver{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var drivers []Driver
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&drivers).Error; err != nil {
		return nil, 0, err
	}
	return drivers, total, nil
}

// FindAvailableDrivers 查询可分配司机。
func (r *Repo) FindAvailableDrivers(ctx context.Context, limit int) ([]Driver, error) {
	if limit <= 0 {
		limit = 20
	}
	var drivers []Driver
	err := r.db.WithContext(ctx).
		Where("status = ?", DriverAvailable).
		Order("rating DESC").Limit(limit).Find(&drivers).Error
	if err != nil {
		return nil, err
	}
	return drivers, nil
}

// TryReserveDriver 原子占用司机：available -> on_duty，
// 同时在司机记录上冗余当前绑定的车辆。
func (r *Repo) TryReserveDriver(ctx context.Context, driverID, vehicleID string) error {
	if _, err := r.GetDriver(ctx, driverID); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&Driver{}).
		Where("id = ? AND status = ?", driverID, DriverAvailable).
		Updates(map[string]any{"status": DriverOnDuty, "current_vehicle_id": vehicleID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Newf(errs.KindConflict, "driver %s is not available", driverID)
	}
	return nil
}

// ReleaseDriver 归还司机：on_duty -> available，清空车辆冗余。
func (r *Repo) ReleaseDriver(ctx context.Context, driverID string) error {
	res := r.db.WithContext(ctx).Model(&Driver{}).
		Where("id = ? AND status = ?", driverID, DriverOnDuty).
		Updates(map[string]any{"status": DriverAvailable, "current_vehicle_id": ""})
	return res.Error
}
