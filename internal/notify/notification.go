package notify

import (
	"encoding/json"
	"time"
)

// NotificationType 通知级别。
type NotificationType string

const (
	TypeInfo    NotificationType = "info"
	TypeWarning NotificationType = "warning"
	TypeSuccess NotificationType = "success"
	TypeError   NotificationType = "error"
)

// Notification 是 notifications 表的 GORM 模型，
// 由 notify-worker 消费 Kafka 事件后落库，供客户端拉取。
type Notification struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	UserID      string           `gorm:"index;size:36;not null" json:"userId"`
	Title       string           `gorm:"size:128" json:"title"`
	Message     string           `gorm:"size:512" json:"message"`
	Type        NotificationType `gorm:"type:varchar(16)" json:"type"`
	Read        bool             `gorm:"index" json:"read"`
	RelatedType string           `gorm:"size:32" json:"relatedType"`
	RelatedID   string           `gorm:"size:36" json:"relatedId"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"createdAt"`
}

// Event 是投递到 Kafka 的事件信封，payload 按 event_type 解释。
type Event struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

// EventDriverNotified 是司机通知事件的 event_type。
const EventDriverNotified = "fleet.driver.notified"

// DriverNotifiedPayload 司机通知事件体。
type DriverNotifiedPayload struct {
	DriverID string           `json:"driver_id"`
	Title    string           `json:"title"`
	Message  string           `json:"message"`
	Type     NotificationType `json:"type"`
	OrderID  string           `json:"order_id"`
}
