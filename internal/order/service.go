package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
	"github.com/EVFleetLink/EVFleetLink/internal/common/logger"
	"github.com/google/uuid"
)

// Store 订单存储契约（实现见 repo.go）。
// Update 必须以版本号条件更新实现，版本不匹配返回 Conflict。
type Store interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f ListOrdersFilter) ([]Order, int64, error)
	ListByDriver(ctx context.Context, driverID string) ([]Order, error)
	Update(ctx context.Context, o *Order) error
	AppendFee(ctx context.Context, fee *ExtraFee) error
	GetTask(ctx context.Context, taskID string) (*Task, error)
	UpdateTask(ctx context.Context, t *Task) error
	ListTasks(ctx context.Context, orderID string) ([]Task, error)
}

// ResourceDirectory 车队目录契约：原子的资源占用/释放。
// TryReserve* 必须是 available -> 占用态的 compare-and-set，
// 并发抢占同一资源时至多一个成功，失败方收到 Conflict。
type ResourceDirectory interface {
	TryReserveVehicle(ctx context.Context, vehicleID string) error
	TryReserveDriver(ctx context.Context, driverID, vehicleID string) error
	ReleaseVehicle(ctx context.Context, vehicleID string) error
	ReleaseDriver(ctx context.Context, driverID string) error
}

// Notifier 司机通知通道（fire-and-forget；发送失败不影响主流程）。
type Notifier interface {
	Notify(ctx context.Context, driverID, title, message, orderID string) error
}

// Service 封装订单分配工作流的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	store    Store
	fleet    ResourceDirectory
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

func NewService(store Store, fleet ResourceDirectory, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		store:    store,
		fleet:    fleet,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// CreateOrderInput 创建订单的入参（可作为传输层 DTO 的基础）。
type CreateOrderInput struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Address       string
	OrderType     OrderType
	ScheduledTime time.Time
	CarModel      string
	PaymentStatus PaymentStatus
	PaymentAmount int64
}

// ListOrdersFilter 查询条件。
type ListOrdersFilter struct {
	Status Status
	Offset int
	Limit  int
}

// CreateOrder 创建订单：初始 pending、未绑定任何资源。
// orderType 不做白名单校验（未知类型绑定司机时生成空任务清单）。
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, errs.New(errs.KindValidation, "customer name required")
	}
	if in.ScheduledTime.IsZero() {
		return nil, errs.New(errs.KindValidation, "scheduled time required")
	}
	if in.PaymentAmount < 0 {
		return nil, errs.New(errs.KindValidation, "payment amount must be non-negative")
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = PaymentPending
	}
	if !ValidPaymentStatus(in.PaymentStatus) {
		return nil, errs.Newf(errs.KindValidation, "unknown payment status: %s", in.PaymentStatus)
	}

	o := &Order{
		ID:            uuid.NewString(),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		Address:       strings.TrimSpace(in.Address),
		OrderType:     in.OrderType,
		ScheduledTime: in.ScheduledTime,
		CarModel:      strings.TrimSpace(in.CarModel),
		Status:        StatusPending,
		PaymentStatus: in.PaymentStatus,
		PaymentAmount: in.PaymentAmount,
		ExtraFees:     []ExtraFee{},
		Tasks:         []Task{},
	}

	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// AssignVehicle 绑定车辆：订单保持 pending（司机绑定后才进入 assigned）。
// 车辆占用通过目录的 CAS 完成；订单写回失败时回滚车辆占用。
func (s *Service) AssignVehicle(ctx context.Context, orderID, vehicleID string) (*Order, error) {
	vehicleID = strings.TrimSpace(vehicleID)
	if vehicleID == "" {
		return nil, errs.New(errs.KindValidation, "vehicle id required")
	}

	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, errs.Newf(errs.KindInvalidState, "cannot assign vehicle to %s order", o.Status)
	}
	if o.VehicleID != "" {
		return nil, errs.New(errs.KindInvalidState, "order already has a vehicle assigned")
	}

	if err := s.fleet.TryReserveVehicle(ctx, vehicleID); err != nil {
		return nil, err
	}

	o.VehicleID = vehicleID
	if err := s.store.Update(ctx, o); err != nil {
		// 订单写回失败，归还刚占用的车辆
		if relErr := s.fleet.ReleaseVehicle(ctx, vehicleID); relErr != nil && s.log != nil {
			s.log.Warnf("failed to release vehicle %s after update failure: %v", vehicleID, relErr)
		}
		return nil, err
	}
	return o, nil
}

// AssignDriver 绑定司机：订单进入 assigned，同步生成任务清单，
// 并向司机发送一条通知（通知失败只记日志，不回滚分配）。
func (s *Service) AssignDriver(ctx context.Context, orderID, driverID string) (*Order, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, errs.New(errs.KindValidation, "driver id required")
	}

	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, errs.Newf(errs.KindInvalidState, "cannot assign driver to %s order", o.Status)
	}
	if o.VehicleID == "" {
		return nil, errs.New(errs.KindInvalidState, "order does not have a vehicle assigned")
	}

	// 司机占用 CAS：并发抢同一司机时由目录仲裁，先写者赢
	if err := s.fleet.TryReserveDriver(ctx, driverID, o.VehicleID); err != nil {
		return nil, err
	}

	now := s.now()
	o.DriverID = driverID
	if err := ApplyTransition(o, StatusAssigned, now); err != nil {
		if relErr := s.fleet.ReleaseDriver(ctx, driverID); relErr != nil && s.log != nil {
			s.log.Warnf("failed to release driver %s: %v", driverID, relErr)
		}
		return nil, err
	}
	o.Tasks = append(o.Tasks, GenerateTasks(o, driverID)...)

	if err := s.store.Update(ctx, o); err != nil {
		if relErr := s.fleet.ReleaseDriver(ctx, driverID); relErr != nil && s.log != nil {
			s.log.Warnf("failed to release driver %s after update failure: %v", driverID, relErr)
		}
		return nil, err
	}

	if s.notifier != nil {
		title := "New order assigned"
		msg := fmt.Sprintf("You have been assigned a %s order for %s, scheduled at %s",
			o.OrderType, o.CustomerName, o.ScheduledTime.UTC().Format(time.RFC3339))
		if err := s.notifier.Notify(ctx, driverID, title, msg, o.ID); err != nil && s.log != nil {
			s.log.Warnf("failed to notify driver %s for order %s: %v", driverID, o.ID, err)
		}
	}
	return o, nil
}

// AdvanceTaskStatus 推进单个任务的状态；completed 时写入 completedDate。
func (s *Service) AdvanceTaskStatus(ctx context.Context, taskID string, to TaskStatus, notes string) (*Task, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := ApplyTaskTransition(t, to, s.now()); err != nil {
		return nil, err
	}
	if strings.TrimSpace(notes) != "" {
		t.Notes = notes
	}
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RecordPayment 收款登记：仅当支付状态为 to_be_collected 时合法。
func (s *Service) RecordPayment(ctx context.Context, orderID string, amount int64, method string) (*Order, error) {
	if amount < 0 {
		return nil, errs.New(errs.KindValidation, "amount must be non-negative")
	}

	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus != PaymentToBeCollected {
		return nil, errs.Newf(errs.KindInvalidState, "payment not collectable in status %s", o.PaymentStatus)
	}

	now := s.now()
	o.PaymentStatus = PaymentPaid
	o.PaymentMethod = strings.TrimSpace(method)
	note := fmt.Sprintf("payment of %d VND recorded via %s at %s", amount, o.PaymentMethod, now.UTC().Format(time.RFC3339))
	if o.Notes == "" {
		o.Notes = note
	} else {
		o.Notes = o.Notes + "\n" + note
	}

	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// SetPaymentStatus 直接设置支付状态（运营后台入口，带枚举校验）。
func (s *Service) SetPaymentStatus(ctx context.Context, orderID string, ps PaymentStatus) (*Order, error) {
	if !ValidPaymentStatus(ps) {
		return nil, errs.Newf(errs.KindValidation, "unknown payment status: %s", ps)
	}
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus = ps
	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// AddExtraFee 追加附加费（只增不删）。
func (s *Service) AddExtraFee(ctx context.Context, orderID, description string, amount int64) (*ExtraFee, error) {
	if strings.TrimSpace(description) == "" {
		return nil, errs.New(errs.KindValidation, "description required")
	}
	if amount < 0 {
		return nil, errs.New(errs.KindValidation, "amount must be non-negative")
	}

	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	fee := &ExtraFee{
		ID:          uuid.NewString(),
		OrderID:     o.ID,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Status:      PaymentPending,
	}
	if err := s.store.AppendFee(ctx, fee); err != nil {
		return nil, err
	}
	return fee, nil
}

// Cancel 取消订单：
// - pending / assigned 可取消；归还已绑定的车辆与司机，清空引用
// - 未完成的任务一并取消
// - 对已取消订单重复调用是无操作成功（简化调用方重试语义）
//
// 资源归还必须发生在版本条件更新成功之后：版本 CAS 是本操作的
// 提交点，先归还再提交会在输掉并发竞争时把仍被占用的资源放回池子。
func (s *Service) Cancel(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusCancelled {
		return o, nil
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return nil, errs.Newf(errs.KindInvalidState, "cannot cancel %s order", o.Status)
	}

	now := s.now()
	vehicleID, driverID := o.VehicleID, o.DriverID
	o.VehicleID = ""
	o.DriverID = ""
	for i := range o.Tasks {
		if o.Tasks[i].Status == TaskPending || o.Tasks[i].Status == TaskInProgress {
			_ = ApplyTaskTransition(&o.Tasks[i], TaskCancelled, now)
		}
	}
	if err := ApplyTransition(o, StatusCancelled, now); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}

	// CAS 成功，取消已生效；Release* 幂等，失败只记日志
	if vehicleID != "" {
		if err := s.fleet.ReleaseVehicle(ctx, vehicleID); err != nil && s.log != nil {
			s.log.Warnf("failed to release vehicle %s on cancel: %v", vehicleID, err)
		}
	}
	if driverID != "" {
		if err := s.fleet.ReleaseDriver(ctx, driverID); err != nil && s.log != nil {
			s.log.Warnf("failed to release driver %s on cancel: %v", driverID, err)
		}
	}
	return o, nil
}

// UpdateStatus 显式的状态流转入口（in_progress / completed 只能由此到达，
// 任务全部完成不会自动推进订单状态）。目标为 cancelled 时走 Cancel 以归还资源。
func (s *Service) UpdateStatus(ctx context.Context, orderID string, to Status) (*Order, error) {
	if to == "" {
		return nil, errs.New(errs.KindValidation, "target status required")
	}
	if to == StatusCancelled {
		return s.Cancel(ctx, orderID)
	}

	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := ApplyTransition(o, to, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateDetailsInput 可编辑的订单明细字段（nil 表示不修改）。
type UpdateDetailsInput struct {
	CustomerName  *string
	CustomerPhone *string
	CustomerEmail *string
	Address       *string
	CarModel      *string
	ScheduledTime *time.Time
	PaymentAmount *int64
}

// UpdateDetails 更新订单明细；状态/资源绑定/任务不经此入口修改。
func (s *Service) UpdateDetails(ctx context.Context, orderID string, in UpdateDetailsInput) (*Order, error) {
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if in.CustomerName != nil {
		if strings.TrimSpace(*in.CustomerName) == "" {
			return nil, errs.New(errs.KindValidation, "customer name required")
		}
		o.CustomerName = strings.TrimSpace(*in.CustomerName)
	}
	if in.CustomerPhone != nil {
		o.CustomerPhone = strings.TrimSpace(*in.CustomerPhone)
	}
	if in.CustomerEmail != nil {
		o.CustomerEmail = strings.TrimSpace(*in.CustomerEmail)
	}
	if in.Address != nil {
		o.Address = strings.TrimSpace(*in.Address)
	}
	if in.CarModel != nil {
		o.CarModel = strings.TrimSpace(*in.CarModel)
	}
	if in.ScheduledTime != nil {
		if in.ScheduledTime.IsZero() {
			return nil, errs.New(errs.KindValidation, "scheduled time required")
		}
		o.ScheduledTime = *in.ScheduledTime
	}
	if in.PaymentAmount != nil {
		if *in.PaymentAmount < 0 {
			return nil, errs.New(errs.KindValidation, "payment amount must be non-negative")
		}
		o.PaymentAmount = *in.PaymentAmount
	}

	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errs.New(errs.KindValidation, "id required")
	}
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, f ListOrdersFilter) ([]Order, int64, error) {
	return s.store.List(ctx, f)
}

func (s *Service) ListOrdersByDriver(ctx context.Context, driverID string) ([]Order, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, errs.New(errs.KindValidation, "driver id required")
	}
	return s.store.ListByDriver(ctx, driverID)
}

func (s *Service) GetTask(ctx context.Context, taskID string) (*Task, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, errs.New(errs.KindValidation, "id required")
	}
	return s.store.GetTask(ctx, taskID)
}

func (s *Service) ListTasks(ctx context.Context, orderID string) ([]Task, error) {
	if _, err := s.store.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx, orderID)
}
