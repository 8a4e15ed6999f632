package model

import "testing"

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"pending", OrderStatusPending, "pending"},
		{"priced", OrderStatusPriced, "priced"},
		{"assigned", OrderStatusAssigned, "assigned"},
		{"in progress", OrderStatusInProgress, "in_progress"},
		{"completed", OrderStatusCompleted, "completed"},
		{"cancelled", OrderStatusCancelled, "cancelled"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
			if !tc.got.Valid() {
				t.Fatalf("expected %s to be valid", tc.got)
			}
		})
	}
	if OrderStatus("unknown").Valid() {
		t.Fatal("unexpected valid status")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	terminal := map[OrderStatus]bool{
		OrderStatusCompleted: true,
		OrderStatusCancelled: true,
	}
	for _, s := range OrderStatuses() {
		if s.Terminal() != terminal[s] {
			t.Fatalf("unexpected terminal flag for %s", s)
		}
	}
}

func TestRoles(t *testing.T) {
	for _, r := range Roles() {
		parsed, ok := ParseRole(string(r))
		if !ok || parsed != r {
			t.Fatalf("expected %s to parse", r)
		}
	}
	if _, ok := ParseRole("root"); ok {
		t.Fatal("unexpected role parsed")
	}

	staff := map[Role]bool{RoleAdmin: true, RoleApprovalSupervisor: true, RoleMonitoring: true}
	for _, r := range Roles() {
		if r.Staff() != staff[r] {
			t.Fatalf("unexpected staff flag for %s", r)
		}
	}
}

func TestOrderKind(t *testing.T) {
	if !OrderKindFuel.Valid() || !OrderKindProduct.Valid() {
		t.Fatal("expected known kinds to be valid")
	}
	if OrderKind("gas").Valid() {
		t.Fatal("unexpected valid kind")
	}
}

func TestPage(t *testing.T) {
	p := NewPage(0, 0)
	if p.Number != 1 || p.Size != DefaultPageSize {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	p = NewPage(3, 1000)
	if p.Size != MaxPageSize || p.Offset() != 2*MaxPageSize {
		t.Fatalf("unexpected page: %+v offset=%d", p, p.Offset())
	}
	if got := NewPage(1, 10).Pages(21); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := NewPage(1, 10).Pages(0); got != 0 {
		t.Fatalf("expected 0 pages, got %d", got)
	}
}
