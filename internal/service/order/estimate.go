package order

import (
	"strings"
	"time"

	"shopping-matrix/internal/domain"
)

const (
	defaultPrepMinutes = 10
	bufferMinutes      = 5
	bufferAfterLines   = 3
	maxPrepMinutes     = 45
)

// Checked in order; the first matching keyword wins. Matching is
// case-sensitive on the capitalized menu words, so "Oatmeal" is not a meal.
var prepRules = []struct {
	keywords []string
	minutes  int
}{
	{[]string{"Combo", "Meal"}, 15},
	{[]string{"Sandwich", "Burger"}, 12},
	{[]string{"Fries", "Drink"}, 5},
	{[]string{"Coffee", "Latte"}, 8},
}

// BasePrepMinutes is the per-unit preparation time for a food item, chosen by
// keyword in its name.
func BasePrepMinutes(name string) int {
	for _, rule := range prepRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.minutes
			}
		}
	}
	return defaultPrepMinutes
}

// EstimatePrepMinutes sums base time times quantity over the food lines, adds a
// buffer for large orders and caps the result. ok is false when there are no
// food lines. The figure is a display estimate only.
func EstimatePrepMinutes(lines []domain.CartLine) (minutes int, ok bool) {
	foodLines := 0
	for _, l := range lines {
		if l.Category != domain.CategoryFood {
			continue
		}
		foodLines++
		minutes += BasePrepMinutes(l.Name) * l.Quantity
	}
	if foodLines == 0 {
		return 0, false
	}
	if foodLines > bufferAfterLines {
		minutes += bufferMinutes
	}
	if minutes > maxPrepMinutes {
		minutes = maxPrepMinutes
	}
	return minutes, true
}

// FormatReadyTime renders a 24-hour HH:MM wall clock in loc.
func FormatReadyTime(at time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return at.In(loc).Format("15:04")
}
