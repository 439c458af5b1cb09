package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// taskDraft 任务模板：标题、描述、相对 scheduledTime 的偏移。
type taskDraft struct {
	title       string
	description string
	offset      time.Duration
}

// draftTasks 按订单类型展开任务模板（顺序即司机看到的清单顺序）。
// 纯函数：只依赖 orderType / paymentStatus 以及用于文案的订单字段，
// 未知类型返回空列表（沿用线上行为，不报错）。
func draftTasks(o *Order) []taskDraft {
	switch o.OrderType {
	case TypeDelivery:
		drafts := []taskDraft{
			{"Pick up vehicle", fmt.Sprintf("Pick up %s from the depot", o.CarModel), -60 * time.Minute},
			{"Deliver to customer", fmt.Sprintf("Deliver %s to %s at %s", o.CarModel, o.CustomerName, o.Address), 0},
			{"Get documents signed", "Have customer sign delivery documents and explain vehicle features", 15 * time.Minute},
		}
		if o.PaymentStatus == PaymentToBeCollected {
			drafts = append(drafts, taskDraft{
				"Collect payment",
				fmt.Sprintf("Collect payment of %d VND from customer", o.PaymentAmount),
				30 * time.Minute,
			})
		}
		return drafts

	case TypePickup:
		return []taskDraft{
			{"Meet customer", fmt.Sprintf("Meet %s at %s", o.CustomerName, o.Address), 0},
			{"Inspect vehicle", "Inspect vehicle condition and document any issues", 15 * time.Minute},
			{"Get documents signed", "Have customer sign pickup documents", 30 * time.Minute},
			{"Return vehicle to depot", fmt.Sprintf("Return %s to the depot", o.CarModel), 90 * time.Minute},
		}

	case TypeChauffeur:
		drafts := []taskDraft{
			{"Pick up vehicle", fmt.Sprintf("Pick up %s from the depot", o.CarModel), -60 * time.Minute},
			{"Pick up customer", fmt.Sprintf("Pick up %s at %s", o.CustomerName, o.Address), 0},
			{"Provide chauffeur service", "Drive customer to their destinations as requested", 4 * time.Hour},
			{"Complete service", "Return customer to original location and complete service", 5 * time.Hour},
		}
		if o.PaymentStatus == PaymentToBeCollected {
			drafts = append(drafts, taskDraft{
				"Collect payment",
				fmt.Sprintf("Collect payment of %d VND from customer", o.PaymentAmount),
				5*time.Hour + 15*time.Minute,
			})
		}
		return drafts
	}

	return nil
}

// GenerateTasks 任务生成引擎：根据订单类型生成固定顺序的任务清单，
// dueDate 为 scheduledTime 的偏移。除 id 外对相同输入完全确定。
func GenerateTasks(o *Order, driverID string) []Task {
	drafts := draftTasks(o)
	tasks := make([]Task, 0, len(drafts))
	for _, d := range drafts {
		tasks = append(tasks, Task{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			DriverID:    driverID,
			Title:       d.title,
			Description: d.description,
			Status:      TaskPending,
			DueDate:     o.ScheduledTime.Add(d.offset),
			Completed:   false,
		})
	}
	return tasks
}
