package order

import (
	"time"

	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
)

// Status 订单状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending    Status = "pending"     // 已创建，待绑定资源
	StatusAssigned   Status = "assigned"    // 已绑定车辆+司机，任务已生成
	StatusInProgress Status = "in_progress" // 服务进行中
	StatusCompleted  Status = "completed"   // 已完成
	StatusCancelled  Status = "cancelled"   // 已取消
)

// AllowTransition 定义订单状态机的允许流转关系。
// cancelled 仅能从 pending / assigned 到达；终态不再流转。
var AllowTransition = map[Status][]Status{
	StatusPending:    {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对订单应用状态变更，并维护关键时间字段。
func ApplyTransition(o *Order, to Status, now time.Time) error {
	if o == nil {
		return errs.New(errs.KindValidation, "order is nil")
	}
	from := o.Status
	if !CanTransition(from, to) {
		return errs.Newf(errs.KindInvalidState, "illegal order status transition: %s -> %s", from, to)
	}

	o.Status = to

	switch to {
	case StatusAssigned:
		if o.AssignedAt == nil {
			t := now
			o.AssignedAt = &t
		}
	case StatusInProgress:
		if o.StartedAt == nil {
			t := now
			o.StartedAt = &t
		}
	case StatusCompleted:
		if o.CompletedAt == nil {
			t := now
			o.CompletedAt = &t
		}
	case StatusCancelled:
		if o.CanceledAt == nil {
			t := now
			o.CanceledAt = &t
		}
	}
	return nil
}

// AllowTaskTransition 任务状态流转：completed 为粘滞终态，
// 取消只允许发生在任务尚未完成时。
var AllowTaskTransition = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskInProgress, TaskCompleted, TaskCancelled},
	TaskInProgress: {TaskCompleted, TaskCancelled},
	TaskCompleted:  {},
	TaskCancelled:  {},
}

// CanTransitionTask 判断任务 from -> to 是否允许。
func CanTransitionTask(from, to TaskStatus) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTaskTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTaskTransition 对任务应用状态变更。
// 不变式：completedDate 有值 当且仅当 status = completed。
func ApplyTaskTransition(t *Task, to TaskStatus, now time.Time) error {
	if t == nil {
		return errs.New(errs.KindValidation, "task is nil")
	}
	if !CanTransitionTask(t.Status, to) {
		return errs.Newf(errs.KindInvalidState, "illegal task status transition: %s -> %s", t.Status, to)
	}

	t.Status = to
	if to == TaskCompleted {
		t.Completed = true
		if t.CompletedDate == nil {
			ts := now
			t.CompletedDate = &ts
		}
	} else {
		t.Completed = false
		t.CompletedDate = nil
	}
	return nil
}
