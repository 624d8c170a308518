package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusCollected, true},
		{OrderStatusReady, OrderStatusDelivered, true},
		{OrderStatusPreparing, OrderStatusCollected, false},
		{OrderStatusPreparing, OrderStatusDelivered, false},
		{OrderStatusReady, OrderStatusPreparing, false},
		{OrderStatusCollected, OrderStatusReady, false},
		{OrderStatusCollected, OrderStatusDelivered, false},
		{OrderStatusDelivered, OrderStatusCollected, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestResolveCategory(t *testing.T) {
	clothing := CartLine{Category: CategoryClothing}
	food := CartLine{Category: CategoryFood}
	other := CartLine{Category: CategoryOther}

	if got := ResolveCategory([]CartLine{food, clothing}); got != CategoryClothing {
		t.Fatalf("clothing+food: got %s", got)
	}
	if got := ResolveCategory([]CartLine{other, food}); got != CategoryFood {
		t.Fatalf("food+other: got %s", got)
	}
	if got := ResolveCategory([]CartLine{other}); got != CategoryOther {
		t.Fatalf("other: got %s", got)
	}
	if got := ResolveCategory(nil); got != CategoryOther {
		t.Fatalf("empty: got %s", got)
	}
}

func TestParseHelpers(t *testing.T) {
	if c, err := ParseCategory(" Food "); err != nil || c != CategoryFood {
		t.Fatalf("ParseCategory: %v %v", c, err)
	}
	if _, err := ParseCategory("toys"); err != ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if m, err := ParseServiceMode(""); err != nil || m != "" {
		t.Fatalf("empty service mode should be accepted: %v %v", m, err)
	}
	if _, err := ParseServiceMode("drive-thru"); err != ErrInvalidServiceMode {
		t.Fatalf("expected ErrInvalidServiceMode, got %v", err)
	}
	if _, err := ParsePaymentMethod("cash"); err != ErrInvalidPaymentMethod {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
	if s, ok := ParseOrderStatus("READY"); !ok || s != OrderStatusReady {
		t.Fatalf("ParseOrderStatus: %v %v", s, ok)
	}
}
