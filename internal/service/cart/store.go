package cart

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopping-matrix/internal/domain"
)

// Store holds the lines a shopper intends to buy or try on. All operations are
// total: there is no input for which they fail.
type Store struct {
	mu    sync.Mutex
	lines []domain.CartLine
	newID func() string
}

func New() *Store {
	return &Store{newID: uuid.NewString}
}

// Add merges the line into an existing one with the same product options, or
// appends it with quantity 1. The incoming quantity is ignored.
func (s *Store) Add(line domain.CartLine) domain.CartLine {
	if line.AcquisitionMode == "" {
		line.AcquisitionMode = domain.AcquisitionPurchase
	}
	if line.Category != domain.CategoryFood {
		line.ServiceMode = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].SameOptions(line) {
			s.lines[i].Quantity++
			return s.lines[i]
		}
	}

	line.ID = s.newID()
	line.Quantity = 1
	s.lines = append(s.lines, line)
	return line
}

// Remove drops a line. Unknown ids are ignored.
func (s *Store) Remove(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(lineID)
}

// SetQuantity overwrites a line's quantity; n <= 0 removes the line.
// It reports whether the line existed.
func (s *Store) SetQuantity(lineID string, n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return s.removeLocked(lineID)
	}
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines[i].Quantity = n
			return true
		}
	}
	return false
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.lines...)
}

func (s *Store) Get(lineID string) (domain.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

// TotalCount is the badge number: the sum of quantities across lines.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, l := range s.lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// ProductNames lists distinct product names in cart order.
func (s *Store) ProductNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(s.lines))
	var names []string
	for _, l := range s.lines {
		name := strings.TrimSpace(l.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func (s *Store) removeLocked(lineID string) bool {
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return true
		}
	}
	return false
}
