package fleet

import "time"

// DriverStatus 司机可用性状态。
type DriverStatus string

const (
	DriverAvailable DriverStatus = "available" // 空闲可分配
	DriverOnDuty    DriverStatus = "on_duty"   // 执行订单中
	DriverOnLeave   DriverStatus = "on_leave"  // 休假
	DriverInactive  DriverStatus = "inactive"  // 停用
)

// DriverType 用工类型。
type DriverType string

const (
	DriverPermanent DriverType = "permanent"
	DriverSeasonal  DriverType = "seasonal"
	DriverTemporary DriverType = "temporary"
)

// Driver 是 drivers 表的 GORM 模型。
// current_vehicle_id 是占用时写入的冗余字段：司机记录上始终能看到
// 当前绑定的车辆（与订单侧的 vehicleId 保持一致）。
type Driver struct {
	ID            string       `gorm:"primaryKey;size:36" json:"id"`
	Name          string       `gorm:"size:128;not null" json:"name"`
	Phone         string       `gorm:"size:32" json:"phone"`
	Email         string       `gorm:"size:128" json:"email"`
	Address       string       `gorm:"size:255" json:"address"`
	LicenseNumber string       `gorm:"size:64" json:"licenseNumber"`
	LicenseExpiry *time.Time   `json:"licenseExpiry,omitempty"`
	Status        DriverStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	DriverType    DriverType   `gorm:"type:varchar(16)" json:"driverType"`

	CurrentVehicleID string `gorm:"index;size:36" json:"currentVehicleId"`

	Rating        float64   `json:"rating"`
	JobsCompleted int       `json:"jobsCompleted"`
	JoinedAt      time.Time `json:"joinedAt"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
