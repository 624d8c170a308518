package session

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/mirror"
	"shopping-matrix/internal/service/cart"
	"shopping-matrix/internal/service/order"
	"shopping-matrix/internal/service/stock"
)

// Session owns one shopper's cart, stock view and order journal. Sessions
// never share state.
type Session struct {
	ID        string
	CreatedAt time.Time

	Cart   *cart.Store
	Stock  *stock.Ledger
	Orders *order.Journal

	// mu serialises multi-store operations such as checkout and storefront loads.
	mu       sync.Mutex
	loaded   map[domain.Category]bool
	lastSeen time.Time
}

// Lock acquires the session-wide lock held across checkout and storefront loads.
func (s *Session) Lock() { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// StorefrontLoaded reports whether the category was seeded into this session's
// ledger. Callers hold the session lock.
func (s *Session) StorefrontLoaded(c domain.Category) bool {
	return s.loaded[c]
}

// MarkStorefrontLoaded records a seeded category. Callers hold the session lock.
func (s *Session) MarkStorefrontLoaded(c domain.Category) {
	s.loaded[c] = true
}

// Checkout runs CreateOrder under the session lock.
func (s *Session) Checkout(in order.CreateInput) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Orders.CreateOrder(in)
}

type Options struct {
	TaxRate   *decimal.Decimal
	Location  *time.Location
	Publisher mirror.Publisher
	Logger    *log.Logger
	Now       func() time.Time
}

// Manager issues and tracks sessions in memory.
type Manager struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create issues a new session with fresh, empty stores.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	now := m.opts.Now()
	ledger := stock.New()
	c := cart.New()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		Cart:      c,
		Stock:     ledger,
		Orders: order.New(c, ledger, order.Options{
			SessionID: id,
			TaxRate:   m.opts.TaxRate,
			Location:  m.opts.Location,
			Publisher: m.opts.Publisher,
			Logger:    m.opts.Logger,
			Now:       m.opts.Now,
		}),
		loaded:   make(map[domain.Category]bool),
		lastSeen: now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.opts.Logger.Printf("session: created id=%s", id)
	return s
}

// Get returns the session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	s.lastSeen = m.opts.Now()
	return s, nil
}

// Each calls fn for every live session.
func (m *Manager) Each(fn func(*Session)) {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()
	for _, s := range list {
		fn(s)
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions not seen for longer than maxIdle and returns how many
// were removed.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := m.opts.Now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.opts.Logger.Printf("session: swept removed=%d remaining=%d", removed, len(m.sessions))
	}
	return removed
}
