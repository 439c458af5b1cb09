package fleet

import "time"

// VehicleStatus 车辆可用性状态。
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"   // 空闲可分配
	VehicleAssigned    VehicleStatus = "assigned"    // 已被订单占用
	VehicleMaintenance VehicleStatus = "maintenance" // 维保中
	VehicleCharging    VehicleStatus = "charging"    // 充电中
	VehicleInUse       VehicleStatus = "in_use"      // 行驶中
)

// Vehicle 是 vehicles 表的 GORM 模型（电动车队）。
type Vehicle struct {
	ID           string        `gorm:"primaryKey;size:36" json:"id"`
	Name         string        `gorm:"size:64" json:"name"`
	Model        string        `gorm:"size:64;index" json:"model"`
	Manufacturer string        `gorm:"size:64" json:"manufacturer"`
	Year         int           `json:"year"`
	LicensePlate string        `gorm:"uniqueIndex;size:32;not null" json:"licensePlate"`
	VIN          string        `gorm:"size:64" json:"vin"`
	Color        string        `gorm:"size:32" json:"color"`
	Status       VehicleStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	// 电池/里程（电动车队关心的最小集合）
	BatteryCapacityKWh float64 `json:"batteryCapacityKWh"`
	BatteryLevel       int     `json:"batteryLevel"` // 0-100
	RangeKm            int     `json:"rangeKm"`

	CurrentLocation string `gorm:"size:255" json:"currentLocation"`
	CurrentDriverID string `gorm:"index;size:36" json:"currentDriverId"`

	LastMaintenanceAt *time.Time `json:"lastMaintenanceAt,omitempty"`
	NextMaintenanceAt *time.Time `json:"nextMaintenanceAt,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
