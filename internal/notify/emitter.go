package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/EVFleetLink/EVFleetLink/internal/common/logger"
	"github.com/EVFleetLink/EVFleetLink/internal/common/middleware"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// producerName 写入事件信封的 producer 字段。
const producerName = "fleet-service"

// Emitter 把司机通知事件写入 Kafka。
// Kafka 抖动时由熔断器快速失败，避免拖慢订单主流程
// （调用方对 Notify 失败只记日志，不回滚）。
type Emitter struct {
	writer  *kafka.Writer
	breaker *middleware.CircuitBreaker
	log     logger.Logger
}

// NewEmitter 创建 Kafka 事件发射器。
func NewEmitter(brokers []string, topic string, log logger.Logger) *Emitter {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Emitter{
		writer:  w,
		breaker: middleware.NewCircuitBreaker(5, 30*time.Second),
		log:     log,
	}
}

// Notify 实现订单侧的通知接口：封装事件信封后投递，
// 以 driver_id 作为消息 key 保证同一司机的通知有序。
func (e *Emitter) Notify(ctx context.Context, driverID, title, message, orderID string) error {
	payload, err := json.Marshal(DriverNotifiedPayload{
		DriverID: driverID,
		Title:    title,
		Message:  message,
		Type:     TypeInfo,
		OrderID:  orderID,
	})
	if err != nil {
		return err
	}
	evt := Event{
		EventID:    uuid.NewString(),
		EventType:  EventDriverNotified,
		OccurredAt: time.Now().UTC(),
		Producer:   producerName,
		Payload:    payload,
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return e.breaker.Execute(func() error {
		return e.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(driverID),
			Value: value,
		})
	})
}

// Close 关闭底层 writer。
func (e *Emitter) Close() error {
	return e.writer.Close()
}
