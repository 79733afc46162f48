// Package ledger owns the canonical inventory state: aggregate product stock,
// the per-location partition of that stock, and the order, purchase order and
// return history that moves it. Every mutation validates its preconditions
// before touching state, so a failed call leaves the ledger unchanged.
package ledger

import (
	"sync"
	"time"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/google/uuid"
)

// Subscriber receives the records emitted by a committed mutation. It is
// invoked synchronously after the ledger lock is released.
type Subscriber func(domain.Event)

type Option func(*Ledger)

// WithClock overrides the time source used for dates and timestamps.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// Ledger is safe for concurrent use: all mutations go through a single
// writer lock and readers receive copies.
type Ledger struct {
	mu    sync.RWMutex
	clock func() time.Time

	products       []domain.Product
	locations      []domain.Location
	stocks         []domain.LocationStock
	orders         []domain.Order
	purchaseOrders []domain.PurchaseOrder
	returns        []domain.Return
	suppliers      []domain.Supplier
	activities     []domain.Activity
	notifications  []domain.Notification
	tasks          []domain.Task
	dismissed      []string

	subscribers []Subscriber
}

func New(opts ...Option) *Ledger {
	l := &Ledger{clock: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the ledger clock reading.
func (l *Ledger) Now() time.Time {
	return l.clock()
}

// Subscribe registers fn for every committed mutation.
func (l *Ledger) Subscribe(fn Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

// txn collects the side-channel records of one mutation.
type txn struct {
	l             *Ledger
	op            string
	now           time.Time
	dirty         bool
	activities    []domain.Activity
	notifications []domain.Notification
}

func (tx *txn) today() time.Time {
	return startOfDay(tx.now)
}

func (tx *txn) activity(kind domain.ActivityType, message string) {
	tx.dirty = true
	tx.activities = append(tx.activities, domain.Activity{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		Timestamp: tx.now,
	})
}

func (tx *txn) notify(title, message string, kind domain.NotificationType, link string) domain.Notification {
	n := domain.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Type:      kind,
		Timestamp: tx.now,
		Link:      link,
	}
	tx.notifications = append(tx.notifications, n)
	return n
}

func (tx *txn) commit() (domain.Event, bool) {
	tx.l.activities = append(tx.l.activities, tx.activities...)
	tx.l.notifications = append(tx.l.notifications, tx.notifications...)

	emitted := tx.dirty || len(tx.activities) > 0 || len(tx.notifications) > 0
	return domain.Event{
		Op:            tx.op,
		Activities:    tx.activities,
		Notifications: tx.notifications,
		At:            tx.now,
	}, emitted
}

// mutate runs fn under the writer lock. Records emitted by fn are committed
// even when fn fails, so failure notifications reach the feed; fn itself must
// not change entity state before its validation has passed.
func (l *Ledger) mutate(op string, fn func(tx *txn) error) error {
	event, emitted, subs, err := l.run(op, fn)
	if emitted {
		for _, sub := range subs {
			sub(event)
		}
	}
	return err
}

// run holds the writer lock for one mutation. A panic in fn releases the
// lock and commits nothing.
func (l *Ledger) run(op string, fn func(tx *txn) error) (event domain.Event, emitted bool, subs []Subscriber, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &txn{l: l, op: op, now: l.clock()}
	err = fn(tx)
	event, emitted = tx.commit()
	subs = append([]Subscriber(nil), l.subscribers...)
	return event, emitted, subs, err
}

func startOfDay(t time.Time) time.Time {
	return domain.StartOfDay(t)
}

func shortID() string {
	return uuid.NewString()[:8]
}

func (l *Ledger) productIndex(id string) int {
	for i := range l.products {
		if l.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) locationIndex(id string) int {
	for i := range l.locations {
		if l.locations[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) orderIndex(id string) int {
	for i := range l.orders {
		if l.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) purchaseOrderIndex(id string) int {
	for i := range l.purchaseOrders {
		if l.purchaseOrders[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) returnIndex(id string) int {
	for i := range l.returns {
		if l.returns[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) supplierIndex(id string) int {
	for i := range l.suppliers {
		if l.suppliers[i].ID == id {
			return i
		}
	}
	return -1
}

// setStock is the single place where product stock changes. It keeps the
// status derived and reports the status before the change.
func (l *Ledger) setStock(idx, stock int) domain.StockStatus {
	p := &l.products[idx]
	prev := p.Status
	if stock < 0 {
		stock = 0
	}
	p.Stock = stock
	p.Status = domain.DeriveStatus(p.Stock, p.ReorderLevel)
	return prev
}
