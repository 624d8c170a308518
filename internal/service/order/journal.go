package order

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/mirror"
)

type cartStore interface {
	Lines() []domain.CartLine
	Clear()
}

type stockLedger interface {
	Decrement(itemID string, amount int) (int, error)
}

type Options struct {
	SessionID string
	// TaxRate defaults to DefaultTaxRate when nil; a zero rate is honored.
	TaxRate   *decimal.Decimal
	// Location renders estimated ready times; defaults to time.Local.
	Location  *time.Location
	Publisher mirror.Publisher
	Logger    *log.Logger
	Now       func() time.Time
}

// Journal is a session's list of placed orders, most recent first.
type Journal struct {
	cart  cartStore
	stock stockLedger

	sessionID string
	taxRate   decimal.Decimal
	loc       *time.Location
	pub       mirror.Publisher
	logger    *log.Logger
	now       func() time.Time

	mu     sync.RWMutex
	orders []domain.Order
}

func New(cart cartStore, stock stockLedger, opts Options) *Journal {
	j := &Journal{
		cart:      cart,
		stock:     stock,
		sessionID: opts.SessionID,
		taxRate:   DefaultTaxRate,
		loc:       opts.Location,
		pub:       opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if opts.TaxRate != nil {
		j.taxRate = *opts.TaxRate
	}
	if j.loc == nil {
		j.loc = time.Local
	}
	if j.pub == nil {
		j.pub = mirror.Discard{}
	}
	if j.logger == nil {
		j.logger = log.New(io.Discard, "", 0)
	}
	if j.now == nil {
		j.now = time.Now
	}
	return j
}

type CreateInput struct {
	PaymentMethod string `json:"paymentMethod"`
	ServiceMode   string `json:"serviceMode,omitempty"`
}

// Quote prices the current cart contents.
func (j *Journal) Quote() Quote {
	return NewQuote(j.cart.Lines(), j.taxRate)
}

// CreateOrder turns the current cart into an order, decrements stock for every
// line and clears the cart. The returned order is a copy.
func (j *Journal) CreateOrder(in CreateInput) (domain.Order, error) {
	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return domain.Order{}, err
	}
	mode, err := domain.ParseServiceMode(in.ServiceMode)
	if err != nil {
		return domain.Order{}, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	items := j.cart.Lines()
	if len(items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	for i := range items {
		if items[i].Category == domain.CategoryFood && items[i].ServiceMode == "" {
			items[i].ServiceMode = mode
		}
	}

	quote := NewQuote(items, j.taxRate)
	category := domain.ResolveCategory(items)
	status := domain.OrderStatusReady
	if category == domain.CategoryFood {
		status = domain.OrderStatusPreparing
	}

	now := j.now()
	o := domain.Order{
		ID:            j.nextOrderIDLocked(now),
		SessionID:     j.sessionID,
		Items:         items,
		Subtotal:      quote.Subtotal,
		Tax:           quote.Tax,
		Total:         quote.Total,
		Status:        status,
		Category:      category,
		OrderTime:     now,
		QRCode:        j.nextQRCodeLocked(),
		PaymentMethod: method,
		ServiceMode:   mode,
	}
	if minutes, ok := EstimatePrepMinutes(items); ok {
		readyAt := now.Add(time.Duration(minutes) * time.Minute)
		o.EstimatedMinutes = minutes
		o.EstimatedReadyAt = &readyAt
		o.EstimatedReadyTime = FormatReadyTime(readyAt, j.loc)
	}

	j.orders = append([]domain.Order{o}, j.orders...)
	snapshot := o.Clone()
	j.pub.Publish(mirror.Event{Kind: mirror.KindOrderCreated, SessionID: j.sessionID, At: now, Order: &snapshot})
	j.logger.Printf("order journal: created id=%s session=%s category=%s status=%s total=%s", o.ID, j.sessionID, o.Category, o.Status, o.Total)

	for _, line := range o.Items {
		remaining, err := j.stock.Decrement(line.ProductID, line.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownItem) {
				j.logger.Printf("order journal: warning order=%s item=%s not in stock ledger, catalog and cart out of sync", o.ID, line.ProductID)
				continue
			}
			j.logger.Printf("order journal: decrement order=%s item=%s error=%v", o.ID, line.ProductID, err)
			continue
		}
		j.pub.Publish(mirror.Event{
			Kind:      mirror.KindStockDecrease,
			SessionID: j.sessionID,
			At:        now,
			ItemID:    line.ProductID,
			Delta:     -line.Quantity,
			Remaining: remaining,
		})
	}

	j.cart.Clear()
	return o.Clone(), nil
}

// AdvanceStatus moves an order forward. Backward moves and skipped stages fail
// with ErrInvalidTransition; asking for the current status is a no-op.
func (j *Journal) AdvanceStatus(orderID string, next domain.OrderStatus) (domain.Order, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	idx := j.indexLocked(orderID)
	if idx < 0 {
		return domain.Order{}, domain.ErrNotFound
	}
	current := j.orders[idx].Status
	if current == next {
		return j.orders[idx].Clone(), nil
	}
	if !domain.CanTransition(current, next) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, next)
	}

	j.orders[idx].Status = next
	snapshot := j.orders[idx].Clone()
	j.pub.Publish(mirror.Event{Kind: mirror.KindOrderStatus, SessionID: j.sessionID, At: j.now(), Order: &snapshot})
	j.logger.Printf("order journal: status id=%s %s -> %s", orderID, current, next)
	return j.orders[idx].Clone(), nil
}

func (j *Journal) Get(orderID string) (domain.Order, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	idx := j.indexLocked(orderID)
	if idx < 0 {
		return domain.Order{}, domain.ErrNotFound
	}
	return j.orders[idx].Clone(), nil
}

func (j *Journal) FindByQRCode(code string) (domain.Order, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, o := range j.orders {
		if o.QRCode == code {
			return o.Clone(), nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

// Orders returns every order, most recent first.
func (j *Journal) Orders() []domain.Order {
	return j.filter(func(domain.OrderStatus) bool { return true })
}

// ActiveOrders returns preparing and ready orders, most recent first.
func (j *Journal) ActiveOrders() []domain.Order {
	return j.filter(domain.OrderStatus.Active)
}

// CompletedOrders returns collected and delivered orders, most recent first.
func (j *Journal) CompletedOrders() []domain.Order {
	return j.filter(domain.OrderStatus.Completed)
}

func (j *Journal) filter(keep func(domain.OrderStatus) bool) []domain.Order {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]domain.Order, 0, len(j.orders))
	for _, o := range j.orders {
		if keep(o.Status) {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (j *Journal) indexLocked(orderID string) int {
	for i := range j.orders {
		if j.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

// Order ids carry the last six digits of the creation millisecond; a numeric
// suffix keeps them unique within the session.
func (j *Journal) nextOrderIDLocked(now time.Time) string {
	base := fmt.Sprintf("ORD-%06d", now.UnixMilli()%1_000_000)
	id := base
	for n := 2; j.indexLocked(id) >= 0; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

const qrAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func (j *Journal) nextQRCodeLocked() string {
	for {
		code := "QR" + randomToken(6)
		taken := false
		for _, o := range j.orders {
			if o.QRCode == code {
				taken = true
				break
			}
		}
		if !taken {
			return code
		}
	}
}

func randomToken(n int) string {
	buf := make([]byte, n)
	limit := big.NewInt(int64(len(qrAlphabet)))
	for i := range buf {
		v, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(fmt.Sprintf("order journal: read random: %v", err))
		}
		buf[i] = qrAlphabet[v.Int64()]
	}
	return string(buf)
}
