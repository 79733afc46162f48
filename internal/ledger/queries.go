package ledger

import (
	"fmt"
	"slices"

	"github.com/andresuchdata/stockledger/internal/domain"
)

func (l *Ledger) Products() []domain.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Product, len(l.products))
	for i, p := range l.products {
		out[i] = cloneProduct(p)
	}
	return out
}

func (l *Ledger) Product(id string) (domain.Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.productIndex(id)
	if idx < 0 {
		return domain.Product{}, domain.Unknown("get_product", "product", id)
	}
	return cloneProduct(l.products[idx]), nil
}

func (l *Ledger) Locations() []domain.Location {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.locations)
}

// LocationStocks returns the partition. An empty productID returns every
// entry.
func (l *Ledger) LocationStocks(productID string) []domain.LocationStock {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.LocationStock, 0, len(l.stocks))
	for _, ls := range l.stocks {
		if productID == "" || ls.ProductID == productID {
			out = append(out, ls)
		}
	}
	return out
}

func (l *Ledger) Orders() []domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Order, len(l.orders))
	for i, o := range l.orders {
		out[i] = cloneOrder(o)
	}
	return out
}

func (l *Ledger) PurchaseOrders() []domain.PurchaseOrder {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.PurchaseOrder, len(l.purchaseOrders))
	for i, po := range l.purchaseOrders {
		out[i] = clonePurchaseOrder(po)
	}
	return out
}

func (l *Ledger) Returns() []domain.Return {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Return, len(l.returns))
	for i, r := range l.returns {
		out[i] = cloneReturn(r)
	}
	return out
}

func (l *Ledger) Suppliers() []domain.Supplier {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.suppliers)
}

// Activities returns the feed newest first.
func (l *Ledger) Activities() []domain.Activity {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := slices.Clone(l.activities)
	slices.Reverse(out)
	return out
}

// Notifications returns the feed newest first.
func (l *Ledger) Notifications() []domain.Notification {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := slices.Clone(l.notifications)
	slices.Reverse(out)
	return out
}

// Tasks returns the task list newest first.
func (l *Ledger) Tasks() []domain.Task {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := slices.Clone(l.tasks)
	slices.Reverse(out)
	return out
}

// PartitionDrift lists every product whose partition does not add up to its
// aggregate stock.
func (l *Ledger) PartitionDrift() []domain.PartitionDrift {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.PartitionDrift
	for _, p := range l.products {
		allocated := l.partitionSum(p.ID)
		if allocated == p.Stock {
			continue
		}
		out = append(out, domain.PartitionDrift{
			ProductID:  p.ID,
			Stock:      p.Stock,
			Allocated:  allocated,
			Unassigned: p.Stock - allocated,
		})
	}
	return out
}

// Snapshot copies the full state.
func (l *Ledger) Snapshot() *domain.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := &domain.Snapshot{
		Schema:         domain.SnapshotSchema,
		TakenAt:        l.clock(),
		Products:       make([]domain.Product, len(l.products)),
		Locations:      slices.Clone(l.locations),
		LocationStocks: slices.Clone(l.stocks),
		Orders:         make([]domain.Order, len(l.orders)),
		PurchaseOrders: make([]domain.PurchaseOrder, len(l.purchaseOrders)),
		Returns:        make([]domain.Return, len(l.returns)),
		Suppliers:      slices.Clone(l.suppliers),
		Activities:     slices.Clone(l.activities),
		Notifications:  slices.Clone(l.notifications),
		Tasks:          slices.Clone(l.tasks),

		DismissedInsights: slices.Clone(l.dismissed),
	}
	for i, p := range l.products {
		snap.Products[i] = cloneProduct(p)
	}
	for i, o := range l.orders {
		snap.Orders[i] = cloneOrder(o)
	}
	for i, po := range l.purchaseOrders {
		snap.PurchaseOrders[i] = clonePurchaseOrder(po)
	}
	for i, r := range l.returns {
		snap.Returns[i] = cloneReturn(r)
	}
	return snap
}

// Restore replaces the state with snap. Statuses are re-derived from stock
// and negative quantities are rejected. Subscribers are not notified.
func (l *Ledger) Restore(snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("restore: nil snapshot")
	}
	if err := snap.CheckSchema(); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	products := make([]domain.Product, len(snap.Products))
	for i, p := range snap.Products {
		if p.Stock < 0 || p.ReorderLevel < 0 {
			return domain.NewLedgerError("restore", "product", p.ID, domain.ErrInvalidQuantity, "negative stock or reorder level")
		}
		p = cloneProduct(p)
		p.Status = domain.DeriveStatus(p.Stock, p.ReorderLevel)
		products[i] = p
	}
	for _, ls := range snap.LocationStocks {
		if ls.Quantity < 0 {
			return domain.NewLedgerError("restore", "product", ls.ProductID, domain.ErrInvalidQuantity,
				fmt.Sprintf("negative quantity at %s", ls.LocationID))
		}
	}

	orders := make([]domain.Order, len(snap.Orders))
	for i, o := range snap.Orders {
		orders[i] = cloneOrder(o)
	}
	pos := make([]domain.PurchaseOrder, len(snap.PurchaseOrders))
	for i, po := range snap.PurchaseOrders {
		pos[i] = clonePurchaseOrder(po)
	}
	returns := make([]domain.Return, len(snap.Returns))
	for i, r := range snap.Returns {
		returns[i] = cloneReturn(r)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.products = products
	l.locations = slices.Clone(snap.Locations)
	l.stocks = slices.Clone(snap.LocationStocks)
	l.orders = orders
	l.purchaseOrders = pos
	l.returns = returns
	l.suppliers = slices.Clone(snap.Suppliers)
	l.activities = slices.Clone(snap.Activities)
	l.notifications = slices.Clone(snap.Notifications)
	l.tasks = slices.Clone(snap.Tasks)
	l.dismissed = slices.Clone(snap.DismissedInsights)
	return nil
}

func cloneProduct(p domain.Product) domain.Product {
	if p.LastRestockDate != nil {
		d := *p.LastRestockDate
		p.LastRestockDate = &d
	}
	return p
}
