package ledger

import (
	"fmt"
	"sort"

	"github.com/andresuchdata/stockledger/internal/domain"
)

// allocation records how many units were taken from one location.
type allocation struct {
	LocationID string
	Quantity   int
}

// deductLargestFirst drains up to qty units of a product from the partition,
// taking from the location holding the most first and moving on to the next
// largest. Ties keep partition order. Entries are floored at zero and the
// returned allocations sum to the quantity actually removed, which is less
// than qty when the partition holds fewer units than requested.
func (l *Ledger) deductLargestFirst(productID string, qty int) []allocation {
	indexes := make([]int, 0)
	for i := range l.stocks {
		if l.stocks[i].ProductID == productID && l.stocks[i].Quantity > 0 {
			indexes = append(indexes, i)
		}
	}
	sort.SliceStable(indexes, func(a, b int) bool {
		return l.stocks[indexes[a]].Quantity > l.stocks[indexes[b]].Quantity
	})

	remaining := qty
	var taken []allocation
	for _, i := range indexes {
		if remaining <= 0 {
			break
		}
		deduct := min(l.stocks[i].Quantity, remaining)
		l.stocks[i].Quantity -= deduct
		remaining -= deduct
		taken = append(taken, allocation{LocationID: l.stocks[i].LocationID, Quantity: deduct})
	}
	return taken
}

// credit adds qty to a (product, location) cell, creating it on first use.
func (l *Ledger) credit(productID, locationID string, qty int) {
	if locationID == "" || qty <= 0 {
		return
	}
	for i := range l.stocks {
		if l.stocks[i].ProductID == productID && l.stocks[i].LocationID == locationID {
			l.stocks[i].Quantity += qty
			return
		}
	}
	l.stocks = append(l.stocks, domain.LocationStock{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   qty,
	})
}

func (l *Ledger) quantityAt(productID, locationID string) int {
	for _, ls := range l.stocks {
		if ls.ProductID == productID && ls.LocationID == locationID {
			return ls.Quantity
		}
	}
	return 0
}

func (l *Ledger) partitionSum(productID string) int {
	sum := 0
	for _, ls := range l.stocks {
		if ls.ProductID == productID {
			sum += ls.Quantity
		}
	}
	return sum
}

// receivingLocation is where purchase order receipts land: the first
// warehouse, else the first location, else nowhere.
func (l *Ledger) receivingLocation() string {
	for _, loc := range l.locations {
		if loc.Type == domain.LocationWarehouse {
			return loc.ID
		}
	}
	return l.firstLocation()
}

func (l *Ledger) firstLocation() string {
	if len(l.locations) == 0 {
		return ""
	}
	return l.locations[0].ID
}

func (l *Ledger) locationName(id string) string {
	if idx := l.locationIndex(id); idx >= 0 {
		return l.locations[idx].Name
	}
	return id
}

// alertOnWorsening emits a stock alert when a product's status moved to a
// more severe level than prev.
func (tx *txn) alertOnWorsening(p domain.Product, prev domain.StockStatus) {
	if !p.Status.WorseThan(prev) {
		return
	}
	switch p.Status {
	case domain.StatusOutOfStock:
		tx.notify("Out of Stock Alert", fmt.Sprintf("%s is out of stock.", p.Name), domain.NotificationAlert, domain.LinkProducts)
	case domain.StatusLowStock:
		tx.notify("Low Stock Warning", fmt.Sprintf("%s is now low on stock (%d remaining).", p.Name, p.Stock), domain.NotificationAlert, domain.LinkProducts)
	}
}
