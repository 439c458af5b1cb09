package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/EVFleetLink/EVFleetLink/internal/common/errs"
)

// fakeStore 内存版 Store：Update 模拟版本条件更新（版本不匹配返回 Conflict）。
type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*Order

	failNextUpdate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: map[string]*Order{}}
}

func cloneOrder(o *Order) *Order {
	c := *o
	c.Tasks = append([]Task(nil), o.Tasks...)
	c.ExtraFees = append([]ExtraFee(nil), o.ExtraFees...)
	return &c
}

func (s *fakeStore) Create(ctx context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, errs.Newf(errs.KindNotFound, "order %s not found", id)
	}
	return cloneOrder(o), nil
}

func (s *fakeStore) List(ctx context.Context, f ListOrdersFilter) ([]Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Order
	for _, o := range s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	return out, int64(len(out)), nil
}

func (s *fakeStore) ListByDriver(ctx context.Context, driverID string) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Order
	for _, o := range s.orders {
		if o.DriverID == driverID {
			out = append(out, *cloneOrder(o))
		}
	}
	return out, nil
}

func (s *fakeStore) Update(ctx context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNextUpdate {
		s.failNextUpdate = false
		return errs.New(errs.KindConflict, "simulated update failure")
	}
	cur, ok := s.orders[o.ID]
	if !ok {
		return errs.Newf(errs.KindNotFound, "order %s not found", o.ID)
	}
	if cur.Version != o.Version {
		return errs.Newf(errs.KindConflict, "order %s version conflict", o.ID)
	}
	o.Version++
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *fakeStore) AppendFee(ctx context.Context, fee *ExtraFee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[fee.OrderID]
	if !ok {
		return errs.Newf(errs.KindNotFound, "order %s not found", fee.OrderID)
	}
	o.ExtraFees = append(o.ExtraFees, *fee)
	return nil
}

func (s *fakeStore) GetTask(ctx context.Context, taskID string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		for i := range o.Tasks {
			if o.Tasks[i].ID == taskID {
				t := o.Tasks[i]
				return &t, nil
			}
		}
	}
	return nil, errs.Newf(errs.KindNotFound, "task %s not found", taskID)
}

func (s *fakeStore) UpdateTask(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[t.OrderID]
	if !ok {
		return errs.Newf(errs.KindNotFound, "order %s not found", t.OrderID)
	}
	for i := range o.Tasks {
		if o.Tasks[i].ID == t.ID {
			o.Tasks[i] = *t
			return nil
		}
	}
	return errs.Newf(errs.KindNotFound, "task %s not found", t.ID)
}

func (s *fakeStore) ListTasks(ctx context.Context, orderID string) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, errs.Newf(errs.KindNotFound, "order %s not found", orderID)
	}
	return append([]Task(nil), o.Tasks...), nil
}

// fakeFleet 内存版资源目录，TryReserve* 为锁内 compare-and-set。
type fakeFleet struct {
	mu       sync.Mutex
	vehicles map[string]bool // id -> available
	drivers  map[string]bool
}

func newFakeFleet() *fakeFleet {
	return &fakeFleet{vehicles: map[string]bool{}, drivers: map[string]bool{}}
}

func (f *fakeFleet) TryReserveVehicle(ctx context.Context, vehicleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	avail, ok := f.vehicles[vehicleID]
	if !ok {
		return errs.Newf(errs.KindNotFound, "vehicle %s not found", vehicleID)
	}
	if !avail {
		return errs.Newf(errs.KindConflict, "vehicle %s is not available", vehicleID)
	}
	f.vehicles[vehicleID] = false
	return nil
}

func (f *fakeFleet) TryReserveDriver(ctx context.Context, driverID, vehicleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	avail, ok := f.drivers[driverID]
	if !ok {
		return errs.Newf(errs.KindNotFound, "driver %s not found", driverID)
	}
	if !avail {
		return errs.Newf(errs.KindConflict, "driver %s is not available", driverID)
	}
	f.drivers[driverID] = false
	return nil
}

func (f *fakeFleet) ReleaseVehicle(ctx context.Context, vehicleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vehicles[vehicleID] = true
	return nil
}

func (f *fakeFleet) ReleaseDriver(ctx context.Context, driverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drivers[driverID] = true
	return nil
}

// hookStore 在一次 GetByID 返回后插入回调，用于确定性地重放
// "读到旧版本 → 并发写入先提交" 的交错。
type hookStore struct {
	*fakeStore
	hookMu sync.Mutex
	onGet  func()
}

func (h *hookStore) GetByID(ctx context.Context, id string) (*Order, error) {
	h.hookMu.Lock()
	fn := h.onGet
	h.onGet = nil
	h.hookMu.Unlock()

	o, err := h.fakeStore.GetByID(ctx, id)
	if fn != nil {
		fn()
	}
	return o, err
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string // driverID
}

func (n *fakeNotifier) Notify(ctx context.Context, driverID, title, message, orderID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, driverID)
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeFleet, *fakeNotifier) {
	store := newFakeStore()
	fleet := newFakeFleet()
	notifier := &fakeNotifier{}
	svc := NewService(store, fleet, notifier, nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC) }
	return svc, store, fleet, notifier
}

func mustCreateOrder(t *testing.T, svc *Service, orderType OrderType, ps PaymentStatus) *Order {
	t.Helper()
	o, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerName:  "Nguyen Van A",
		CustomerPhone: "0901234567",
		Address:       "123 Le Loi, District 1",
		OrderType:     orderType,
		ScheduledTime: time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
		CarModel:      "VF 8",
		PaymentStatus: ps,
		PaymentAmount: 1_500_000,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return o
}

func TestAssignmentWorkflowEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc, _, fleet, notifier := newTestService()
	fleet.vehicles["veh-1"] = true
	fleet.drivers["drv-1"] = true

	o := mustCreateOrder(t, svc, TypeDelivery, PaymentToBeCollected)
	if o.Status != StatusPending {
		t.Fatalf("new order must be pending, got %s", o.Status)
	}

	// 绑定车辆：订单仍为 pending，车辆被占用
	o, err := svc.AssignVehicle(ctx, o.ID, "veh-1")
	if err != nil {
		t.Fatalf("AssignVehicle: %v", err)
	}
	if o.Status != StatusPending || o.VehicleID != "veh-1" {
		t.Fatalf("after vehicle bind: status=%s vehicle=%s", o.Status, o.VehicleID)
	}
	if fleet.vehicles["veh-1"] {
		t.Fatalf("vehicle must be reserved")
	}

	// 绑定司机：进入 assigned，生成 4 个任务，通知一次
	o, err = svc.AssignDriver(ctx, o.ID, "drv-1")
	if err != nil {
		t.Fatalf("AssignDriver: %v", err)
	}
	if o.Status != StatusAssigned || o.DriverID != "drv-1" {
		t.Fatalf("after driver bind: status=%s driver=%s", o.Status, o.DriverID)
	}
	if o.AssignedAt == nil {
		t.Fatalf("assignedAt must be stamped")
	}
	if len(o.Tasks) != 4 {
		t.Fatalf("expected 4 generated tasks, got %d", len(o.Tasks))
	}
	wantDue := []time.Time{
		time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 10, 15, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 10, 30, 0, 0, time.UTC),
	}
	for i, task := range o.Tasks {
		if !task.DueDate.Equal(wantDue[i]) {
			t.Fatalf("task %d due %v, want %v", i, task.DueDate, wantDue[i])
		}
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "drv-1" {
		t.Fatalf("expected exactly one notification to drv-1, got %v", notifier.calls)
	}

	// 完成所有任务：订单不自动推进，仍为 assigned
	for _, task := range o.Tasks {
		if _, err := svc.AdvanceTaskStatus(ctx, task.ID, TaskCompleted, ""); err != nil {
			t.Fatalf("AdvanceTaskStatus(%s): %v", task.Title, err)
		}
	}
	o, err = svc.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if o.Status != StatusAssigned {
		t.Fatalf("completing tasks must not auto-advance order, got %s", o.Status)
	}
	for _, task := range o.Tasks {
		if task.Status != TaskCompleted || !task.Completed || task.CompletedDate == nil {
			t.Fatalf("task %s not fully completed: %+v", task.Title, task)
		}
	}

	// 显式推进：assigned -> in_progress -> completed
	if _, err := svc.UpdateStatus(ctx, o.ID, StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus(in_progress): %v", err)
	}
	o, err = svc.UpdateStatus(ctx, o.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus(completed): %v", err)
	}
	if o.StartedAt == nil || o.CompletedAt == nil {
		t.Fatalf("startedAt/completedAt must be stamped")
	}
}

func TestAssignVehicleGuards(t *testing.T) {
	ctx := context.Background()
	svc, _, fleet, _ := newTestService()
	fleet.vehicles["veh-1"] = true
	fleet.vehicles["veh-2"] = true

	o := mustCreateOrder(t, svc, TypeDelivery, PaymentPaid)

	if _, err := svc.AssignVehicle(ctx, o.ID, "missing"); !errs.IsNotFound(err) {
		t.Fatalf("expected NotFound for unknown vehicle, got %v", err)
	}

	if _, err := svc.AssignVehicle(ctx, o.ID, "veh-1"); err != nil {
		t.Fatalf("AssignVehicle: %v", err)
	}
	// 已绑定车辆的订单不能再次绑定
	if _, err := svc.AssignVehicle(ctx, o.ID, "veh-2"); !errs.IsInvalidState(err) {
		t.Fatalf("expected InvalidState on double vehicle bind, got %v", err)
	}

	// 已占用车辆无法被其他订单抢到
	other := mustCreateOrder(t, svc, TypePickup, PaymentPaid)
	if _, err := svc.AssignVehicle(ctx, other.ID, "veh-1"); !errs.IsConflict(err) {
		t.Fatalf("expected Conflict reserving taken vehicle, got %v", err)
	}
}

func TestAssignDriverRequiresVehicle(t *testing.T) {
	ctx := context.Background()
	svc, _, fleet, _ := newTestService()
	fleet.drivers["drv-1"] = true

	o := mustCreateOrder(t, svc, TypeDelivery, PaymentPaid)
	if _, err := svc.AssignDriver(ctx, o.ID, "drv-1"); !errs.IsInvalidState(err) {
		t.Fatalf("expected InvalidState without vehicle, got %v", err)
	}
	// 司机未被占用
	if !fleet.drivers["drv-1"] {
		t.Fatalf("driver must remain available after rejected assignment")
	}
}

func TestConcurrentDriverAssignmentSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc, _, fleet, notifier := newTestService()
	fleet.vehicles["veh-1"] = true
	fleet.vehicles["veh-2"] = true
	fleet.drivers["drv-1"] = true

	a := mustCreateOrder(t, svc, TypeDelivery, PaymentPaid)
	b := mustCreateOrder(t, svc, TypeDelivery, PaymentPaid)
	if _, err := svc.AssignVehicle(ctx, a.ID, "veh-1"); err != nil {
		t.Fatalf("AssignVehicle a: %v", err)
	}
	if _, err := svc.AssignVehicle(ctx, b.ID, "veh-2"); err != nil {
		t.Fatalf("AssignVehicle b: %v", err)
	}

	// 两个订单并发抢同一司机：至多一个成功，败者收到 Conflict
	var wg sync.WaitGroup
	errsCh := make(chan error, 2)
	for _, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			_, err := svc.AssignDriver(ctx, orderID, "drv-1")
			errsCh <- err
		}(id)
	}
	wg.Wait()
	close(errsCh)

	var okCount, conflictCount int
	for err := range errsCh {
		switch {
		case err == nil:
			okCount++
		case errs.IsConflict(err):
			conflictCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || conflictCount != 1 {
		t.Fatalf("expected exactly one winner, got ok=%d conflict=%d", okCount, conflictCount)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(notifier.calls))
	}
}

func TestAssignDriverReleasesOnUpdateFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, fleet, notifier := newTestService()
	fleet.vehicles["veh-1"] = true
	fleet.drivers["drv-1"] = true

	o := mustCreateOrder(t, svc, TypeDelivery, PaymentPaid)
	if _, err := svc.AssignVehicle(ctx, o.ID, "veh-1"); err != nil {
		t.Fatalf("AssignVehicle: %v", err)
	}

	store.failNextUpdate = true
	if _, err := svc.AssignDriver(ctx, o.ID, "drv-1"); !errs.IsConflict(err) {
		t.Fatalf("expected Conflict from failed update, got %v", err)
	}
	if !fleet.drivers["drv-1"] {
		t.Fatalf("driver must be released after update failure")
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("no notification on failed assignment")
	}

	// 恢复后重试成功
	if _, err := svc.AssignDriver(ctx, o.ID, "drv-1"); err != nil {
		t.Fatalf("retry AssignDriver: %v", err)
	}
}

func TestCancelReleasesResourcesAndTasks(t *testing.T) {
	ctx := context.Background()
	svc, _, fleet, _ := newTestService()
	fleet.vehicles["veh-1"] = true
	fleet.drivers["drv-1"] = true

	o := mustCreateOrder(t, svc, TypeDelivery, PaymentToBeCollected)
	if _, err := svc.AssignVehicle(ctx, o.ID, "veh-1"); err != nil {
		t.Fatalf("AssignVehicle: %v", err)
	}
	if _, err := svc.AssignDriver(ctx, o.ID, "drv-1"); err != nil {
		t.Fatalf("AssignDriver: %v", err)
	}

	o, err := svc.Cancel(ctx, o.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if o.Status != StatusCancelled || o.CanceledAt == nil {
		t.Fatalf("expected cancelled order, got %s", o.Status)
	}
	if o.VehicleID != "" || o.DriverID != "" {
		t.Fatalf("cancel must clear resource references")
	}
	if !fleet.vehicles["veh-1"] || !fleet.drivers["drv-1"] {
		t.Fatalf("cancel must release vehicle and driver")
	}
	for _, task := range o.Tasks {
		if task.Status != TaskCancelled {
			t.Fatalf("open task %s must be cancelled, got %s", task.Title, task.Status)
		}
	}

	// 重复取消是无操作成功
	if _, err := svc.Cancel(ctx, o.ID); err != nil {
		t.Fatalf("repeated Cancel must be a no-op, got %v", err)
	}

	// 终态订单不能再被操作
	if _, err := svc.AssignVehicle(ctx, o.ID, "veh-1"); !errs.IsInvalidState(err) {
		t.Fatalf("expected InvalidState assigning to cancelled order, got %v", err)
	}
}

func TestCancelLosingRaceKeepsReservations(t *testing.T) {
	ctx := context.Background()
	store := &hookStore{fakeStore: newFakeStore()}
	fleet := newFakeFleet()
	svc := NewService(store, fleet, &fakeNotifier{}, nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC) }
	fleet.vehicles["veh-1"] = true
	fleet.drivers["drv-1"] = true

	o := mustCreateOrder(t, svc, TypeDelivery, PaymentPaid)
	if _, err := svc.AssignVehicle(ctx, o.ID, "veh-1"); err != nil {
		t.Fatalf("AssignVehicle: %v", err)
	}

	// Cancel 读到旧版本后，并发的 AssignDriver 先提交
	store.onGet = func() {
		if _, err := svc.AssignDriver(ctx, o.ID, "drv-1"); err != nil {
			t.Errorf("concurrent AssignDriver: %v", err)
		}
	}
	if _, err := svc.Cancel(ctx, o.ID); !errs.IsConflict(err) {
		t.Fatalf("expected Conflict for losing cancel, got %v", err)
	}

	// 输掉版本竞争的 Cancel 不得归还资源：赢家的绑定必须保持占用
	if fleet.vehicles["veh-1"] {
		t.Fatalf("vehicle must remain reserved for the winning assignment")
	}
	if fleet.drivers["drv-1"] {
		t.Fatalf("driver must remain reserved for the winning assignment")
	}
	got, err := svc.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Status != StatusAssigned || got.VehicleID != "veh-1" || got.DriverID != "drv-1" {
		t.Fatalf("winning assignment must hold: status=%s vehicle=%s driver=%s",
			got.Status, got.VehicleID, got.DriverID)
	}

	// 重读后的取消正常生效并归还资源
	got, err = svc.Cancel(ctx, o.ID)
	if err != nil {
		t.Fatalf("retry Cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("expected cancelled order, got %s", got.Status)
	}
	if !fleet.vehicles["veh-1"] || !fleet.drivers["drv-1"] {
		t.Fatalf("successful cancel must release both resources")
	}
}

func TestCancelCompletedOrderRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, fleet, _ := newTestService()
	fleet.vehicles["veh-1"] = true
	fleet.drivers["drv-1"] = true

	o := mustCreateOrder(t, svc, TypePickup, PaymentPaid)
	if _, err := svc.AssignVehicle(ctx, o.ID, "veh-1"); err != nil {
		t.Fatalf("AssignVehicle: %v", err)
	}
	if _, err := svc.AssignDriver(ctx, o.ID, "drv-1"); err != nil {
		t.Fatalf("AssignDriver: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, o.ID, StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, o.ID, StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if _, err := svc.Cancel(ctx, o.ID); !errs.IsInvalidState(err) {
		t.Fatalf("expected InvalidState cancelling completed order, got %v", err)
	}
}

func TestRecordPayment(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	o := mustCreateOrder(t, svc, TypeDelivery, PaymentToBeCollected)
	o, err := svc.RecordPayment(ctx, o.ID, 1_500_000, "cash")
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if o.PaymentStatus != PaymentPaid || o.PaymentMethod != "cash" {
		t.Fatalf("expected paid via cash, got %s/%s", o.PaymentStatus, o.PaymentMethod)
	}
	if o.Notes == "" {
		t.Fatalf("payment must leave an audit note")
	}

	// 已支付订单不能再次收款
	if _, err := svc.RecordPayment(ctx, o.ID, 100, "cash"); !errs.IsInvalidState(err) {
		t.Fatalf("expected InvalidState on double collection, got %v", err)
	}
}

func TestAddExtraFeeAndTotal(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	o := mustCreateOrder(t, svc, TypeDelivery, PaymentPaid)
	if _, err := svc.AddExtraFee(ctx, o.ID, "Toll fee", 50_000); err != nil {
		t.Fatalf("AddExtraFee: %v", err)
	}
	if _, err := svc.AddExtraFee(ctx, o.ID, "", 10); !errs.IsValidation(err) {
		t.Fatalf("expected Validation for empty description, got %v", err)
	}
	if _, err := svc.AddExtraFee(ctx, o.ID, "Negative", -1); !errs.IsValidation(err) {
		t.Fatalf("expected Validation for negative amount, got %v", err)
	}

	o, err := svc.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got := o.TotalPayable(); got != 1_550_000 {
		t.Fatalf("TotalPayable = %d, want 1550000", got)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	if _, err := svc.CreateOrder(ctx, CreateOrderInput{ScheduledTime: time.Now()}); !errs.IsValidation(err) {
		t.Fatalf("expected Validation for missing name, got %v", err)
	}
	if _, err := svc.CreateOrder(ctx, CreateOrderInput{CustomerName: "A"}); !errs.IsValidation(err) {
		t.Fatalf("expected Validation for missing scheduledTime, got %v", err)
	}
	if _, err := svc.CreateOrder(ctx, CreateOrderInput{
		CustomerName: "A", ScheduledTime: time.Now(), PaymentStatus: PaymentStatus("refunded"),
	}); !errs.IsValidation(err) {
		t.Fatalf("expected Validation for unknown payment status, got %v", err)
	}

	// 未知订单类型可以创建；绑定司机时生成空任务清单
	o, err := svc.CreateOrder(ctx, CreateOrderInput{
		CustomerName:  "A",
		OrderType:     OrderType("towing"),
		ScheduledTime: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateOrder with unknown type: %v", err)
	}
	if o.PaymentStatus != PaymentPending {
		t.Fatalf("empty payment status must default to pending, got %s", o.PaymentStatus)
	}
}

func TestUpdateDetails(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	o := mustCreateOrder(t, svc, TypeDelivery, PaymentPaid)
	newName := "Tran Thi B"
	newAmount := int64(2_000_000)
	o, err := svc.UpdateDetails(ctx, o.ID, UpdateDetailsInput{
		CustomerName:  &newName,
		PaymentAmount: &newAmount,
	})
	if err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if o.CustomerName != "Tran Thi B" || o.PaymentAmount != 2_000_000 {
		t.Fatalf("details not applied: %s / %d", o.CustomerName, o.PaymentAmount)
	}

	empty := "  "
	if _, err := svc.UpdateDetails(ctx, o.ID, UpdateDetailsInput{CustomerName: &empty}); !errs.IsValidation(err) {
		t.Fatalf("expected Validation for blank name, got %v", err)
	}
}
