package order

import (
	"testing"
	"time"

	"shopping-matrix/internal/domain"
)

func TestBasePrepMinutes(t *testing.T) {
	cases := map[string]int{
		"Big Mac Combo":       15,
		"Happy Meal":          15,
		"Chicken Burger":      12,
		"Club Sandwich":       12,
		"Large Fries":         5,
		"Cold Drink":          5,
		"Iced Coffee":         8,
		"Caffe Latte":         8,
		"Chocolate Muffin":    10,
		"Burger and Fries":    12,
		"Coffee Meal Special": 15,
		"Oatmeal Cookie":      10,
		"iced coffee":         10,
	}
	for name, want := range cases {
		if got := BasePrepMinutes(name); got != want {
			t.Fatalf("%s: expected %d, got %d", name, want, got)
		}
	}
}

func TestEstimatePrepMinutes(t *testing.T) {
	food := func(name string, qty int) domain.CartLine {
		return domain.CartLine{Name: name, Quantity: qty, Category: domain.CategoryFood}
	}

	if _, ok := EstimatePrepMinutes([]domain.CartLine{{Name: "Shirt", Quantity: 2, Category: domain.CategoryClothing}}); ok {
		t.Fatalf("expected no estimate without food lines")
	}

	got, ok := EstimatePrepMinutes([]domain.CartLine{food("Burger", 1), food("Fries", 1)})
	if !ok || got != 17 {
		t.Fatalf("expected 17, got %d (ok=%v)", got, ok)
	}

	got, _ = EstimatePrepMinutes([]domain.CartLine{food("Fries", 1), food("Drink", 1), food("Latte", 1), food("Muffin", 1)})
	if got != 33 {
		t.Fatalf("expected buffer applied above three lines, got %d", got)
	}

	got, _ = EstimatePrepMinutes([]domain.CartLine{food("Combo", 4)})
	if got != 45 {
		t.Fatalf("expected cap at 45, got %d", got)
	}
}

func TestFormatReadyTime(t *testing.T) {
	at := time.Date(2026, 1, 2, 21, 7, 0, 0, time.UTC)
	if got := FormatReadyTime(at, time.UTC); got != "21:07" {
		t.Fatalf("expected 21:07, got %q", got)
	}
	ist := time.FixedZone("IST", 5*3600+1800)
	if got := FormatReadyTime(at, ist); got != "02:37" {
		t.Fatalf("expected 02:37, got %q", got)
	}
}
