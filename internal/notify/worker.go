package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/EVFleetLink/EVFleetLink/internal/common/logger"
	"github.com/segmentio/kafka-go"
)

// Worker 消费司机通知事件并落库。
// 处理失败时不提交 offset，由下次拉取重试；
// 无法解析的消息直接跳过并告警（毒丸不阻塞分区）。
type Worker struct {
	reader *kafka.Reader
	repo   *Repo
	log    logger.Logger
}

// NewWorker 创建通知消费者。
func NewWorker(brokers []string, topic, groupID string, repo *Repo, log logger.Logger) *Worker {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Worker{reader: r, repo: repo, log: log}
}

// Run 阻塞消费，ctx 取消后返回。
func (w *Worker) Run(ctx context.Context) error {
	defer w.reader.Close()

	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := w.handle(ctx, msg.Value); err != nil {
			w.log.Errorf("handle notification event failed (topic=%s offset=%d): %v", msg.Topic, msg.Offset, err)
			continue // 不提交，等待重试
		}
		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			w.log.Errorf("commit offset failed: %v", err)
		}
	}
}

func (w *Worker) handle(ctx context.Context, value []byte) error {
	var evt Event
	if err := json.Unmarshal(value, &evt); err != nil {
		w.log.Warnf("skip malformed event: %v", err)
		return nil
	}

	switch evt.EventType {
	case EventDriverNotified:
		var p DriverNotifiedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			w.log.Warnf("skip malformed payload (event_id=%s): %v", evt.EventID, err)
			return nil
		}
		n := &Notification{
			ID:          evt.EventID, // 事件 ID 即通知 ID，重复消费天然幂等
			UserID:      p.DriverID,
			Title:       p.Title,
			Message:     p.Message,
			Type:        p.Type,
			RelatedType: "order",
			RelatedID:   p.OrderID,
			CreatedAt:   evt.OccurredAt,
		}
		if n.Type == "" {
			n.Type = TypeInfo
		}
		err := w.repo.Create(ctx, n)
		if err != nil && isDuplicateKey(err) {
			return nil
		}
		return err
	default:
		w.log.Debugf("ignore event type %s", evt.EventType)
		return nil
	}
}

// isDuplicateKey 粗略判断主键冲突（重复消费）。
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}
