package order

import "time"

// OrderType 订单类型（送车/取车/专车代驾）。
type OrderType string

const (
	TypeDelivery  OrderType = "delivery"  // 送车上门
	TypePickup    OrderType = "pickup"    // 上门取车
	TypeChauffeur OrderType = "chauffeur" // 专车司机服务
)

// PaymentStatus 支付状态枚举。
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"         // 待支付
	PaymentPaid          PaymentStatus = "paid"            // 已支付
	PaymentToBeCollected PaymentStatus = "to_be_collected" // 司机现场代收
)

// ValidPaymentStatus 判断是否为合法的支付状态枚举值。
func ValidPaymentStatus(ps PaymentStatus) bool {
	switch ps {
	case PaymentPending, PaymentPaid, PaymentToBeCollected:
		return true
	}
	return false
}

// Order 订单 GORM 模型。extraFees / tasks 为订单独占的子记录，
// driverId / vehicleId 只是引用，车辆与司机实体归车队目录所有。
type Order struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// 客户信息
	CustomerName  string `gorm:"size:128;not null" json:"customerName"`
	CustomerPhone string `gorm:"size:32" json:"customerPhone"`
	CustomerEmail string `gorm:"size:128" json:"customerEmail"`
	Address       string `gorm:"size:255" json:"address"`

	OrderType     OrderType `gorm:"type:varchar(16);index;not null" json:"orderType"`
	ScheduledTime time.Time `gorm:"not null" json:"scheduledTime"`
	CarModel      string    `gorm:"size:64" json:"carModel"`
	Status        Status    `gorm:"type:varchar(16);index;not null" json:"status"`

	// 资源绑定（pending 阶段为空串；assigned 起两者必须非空）
	DriverID  string `gorm:"index;size:36" json:"driverId"`
	VehicleID string `gorm:"index;size:36" json:"vehicleId"`

	// 金额信息（单位：VND）
	PaymentStatus PaymentStatus `gorm:"type:varchar(16);not null" json:"paymentStatus"`
	PaymentAmount int64         `gorm:"not null;default:0" json:"paymentAmount"`
	PaymentMethod string        `gorm:"size:32" json:"paymentMethod,omitempty"`

	// 审计备注（收款记录等，按行追加）
	Notes string `gorm:"type:text" json:"notes,omitempty"`

	// 乐观锁版本号：同一订单上的并发操作由版本条件更新线性化
	Version int64 `gorm:"not null;default:0" json:"-"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	AssignedAt  *time.Time `json:"assignedAt,omitempty"`  // 司机绑定时间
	StartedAt   *time.Time `json:"startedAt,omitempty"`   // 服务开始时间
	CompletedAt *time.Time `json:"completedAt,omitempty"` // 完成时间
	CanceledAt  *time.Time `json:"canceledAt,omitempty"`  // 取消时间

	ExtraFees []ExtraFee `gorm:"foreignKey:OrderID" json:"extraFees"`
	Tasks     []Task     `gorm:"foreignKey:OrderID" json:"tasks"`
}

// TotalPayable 应付总额 = 订单金额 + 所有附加费。
func (o *Order) TotalPayable() int64 {
	total := o.PaymentAmount
	for _, f := range o.ExtraFees {
		total += f.Amount
	}
	return total
}

// ExtraFee 附加费（创建后追加，只增不删）。
type ExtraFee struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	OrderID     string        `gorm:"index;size:36;not null" json:"orderId"`
	Description string        `gorm:"size:255;not null" json:"description"`
	Amount      int64         `gorm:"not null" json:"amount"`
	Status      PaymentStatus `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"createdAt"`
}

// TaskStatus 任务状态枚举。
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Task 司机任务清单的一项。绑定司机时由任务生成引擎批量创建，
// 之后可单独更新状态，但不允许重排或改名。
type Task struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	OrderID       string     `gorm:"index;size:36;not null" json:"orderId"`
	DriverID      string     `gorm:"index;size:36" json:"driverId"`
	Title         string     `gorm:"size:128;not null" json:"title"`
	Description   string     `gorm:"size:255" json:"description"`
	Status        TaskStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	DueDate       time.Time  `gorm:"not null" json:"dueDate"`
	Completed     bool       `gorm:"not null;default:false" json:"completed"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}
