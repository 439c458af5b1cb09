package order

import (
	"testing"
	"time"
)

var scheduled = time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

func baseOrder(orderType OrderType, ps PaymentStatus) *Order {
	return &Order{
		ID:            "order-1",
		CustomerName:  "Nguyen Van A",
		Address:       "123 Le Loi, District 1",
		OrderType:     orderType,
		ScheduledTime: scheduled,
		CarModel:      "VF 8",
		Status:        StatusPending,
		PaymentStatus: ps,
		PaymentAmount: 1_500_000,
	}
}

func TestGenerateTasksDeliveryCollectable(t *testing.T) {
	o := baseOrder(TypeDelivery, PaymentToBeCollected)
	tasks := GenerateTasks(o, "driver-1")

	if len(tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(tasks))
	}
	wantDue := []time.Time{
		scheduled.Add(-60 * time.Minute),
		scheduled,
		scheduled.Add(15 * time.Minute),
		scheduled.Add(30 * time.Minute),
	}
	wantTitles := []string{"Pick up vehicle", "Deliver to customer", "Get documents signed", "Collect payment"}
	for i, task := range tasks {
		if task.Title != wantTitles[i] {
			t.Fatalf("task %d title = %q, want %q", i, task.Title, wantTitles[i])
		}
		if !task.DueDate.Equal(wantDue[i]) {
			t.Fatalf("task %d dueDate = %v, want %v", i, task.DueDate, wantDue[i])
		}
		if task.Status != TaskPending || task.Completed {
			t.Fatalf("task %d must start pending/incomplete", i)
		}
		if task.OrderID != o.ID || task.DriverID != "driver-1" {
			t.Fatalf("task %d must reference order and driver", i)
		}
	}
	if tasks[3].Description != "Collect payment of 1500000 VND from customer" {
		t.Fatalf("unexpected collect payment description: %q", tasks[3].Description)
	}
}

func TestGenerateTasksDeliveryPaidSkipsCollection(t *testing.T) {
	o := baseOrder(TypeDelivery, PaymentPaid)
	tasks := GenerateTasks(o, "driver-1")
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks for paid delivery, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.Title == "Collect payment" {
			t.Fatalf("paid order must not include collection task")
		}
	}
}

func TestGenerateTasksPickup(t *testing.T) {
	o := baseOrder(TypePickup, PaymentPaid)
	tasks := GenerateTasks(o, "driver-1")
	if len(tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(tasks))
	}
	if !tasks[0].DueDate.Equal(scheduled) {
		t.Fatalf("first pickup task due at scheduledTime, got %v", tasks[0].DueDate)
	}
	if !tasks[3].DueDate.Equal(scheduled.Add(90 * time.Minute)) {
		t.Fatalf("depot return due at T+90m, got %v", tasks[3].DueDate)
	}
}

func TestGenerateTasksChauffeur(t *testing.T) {
	o := baseOrder(TypeChauffeur, PaymentToBeCollected)
	tasks := GenerateTasks(o, "driver-1")
	if len(tasks) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(tasks))
	}
	if !tasks[3].DueDate.Equal(scheduled.Add(5 * time.Hour)) {
		t.Fatalf("complete service due at T+5h, got %v", tasks[3].DueDate)
	}
	if !tasks[4].DueDate.Equal(scheduled.Add(5*time.Hour + 15*time.Minute)) {
		t.Fatalf("collection due at T+5h15m, got %v", tasks[4].DueDate)
	}
}

func TestGenerateTasksUnknownType(t *testing.T) {
	o := baseOrder(OrderType("towing"), PaymentPaid)
	if tasks := GenerateTasks(o, "driver-1"); len(tasks) != 0 {
		t.Fatalf("unknown order type must yield empty task list, got %d", len(tasks))
	}
}

func TestGenerateTasksDeterministicExceptIDs(t *testing.T) {
	o := baseOrder(TypeDelivery, PaymentToBeCollected)
	a := GenerateTasks(o, "driver-1")
	b := GenerateTasks(o, "driver-1")
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Title != b[i].Title || a[i].Description != b[i].Description || !a[i].DueDate.Equal(b[i].DueDate) {
			t.Fatalf("task %d differs between runs", i)
		}
		if a[i].ID == b[i].ID {
			t.Fatalf("task ids must be freshly generated")
		}
	}
}
