package ledger

import (
	"fmt"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// FulfillOrder records a customer order and deducts its lines from stock.
// All lines are checked before anything is applied: a line for an unknown
// product is skipped, and a product whose requested total exceeds its stock
// fails the whole order with ErrInsufficientStock. Submitting an order id
// that is already recorded returns the stored order and changes nothing.
func (l *Ledger) FulfillOrder(order domain.Order) (domain.Order, error) {
	const op = "fulfill_order"
	var out domain.Order

	order = cloneOrder(order)
	err := l.mutate(op, func(tx *txn) error {
		if order.ID == "" {
			order.ID = "ORD-" + shortID()
		}
		if idx := l.orderIndex(order.ID); idx >= 0 {
			log.Info().Str("order_id", order.ID).Msg("order already recorded, skipping")
			out = cloneOrder(l.orders[idx])
			return nil
		}
		if len(order.Items) == 0 {
			return domain.NewLedgerError(op, "order", order.ID, domain.ErrInvalidInput, "order has no items")
		}
		if order.Status == "" {
			order.Status = domain.OrderPending
		}
		if !order.Status.Valid() || order.Status == domain.OrderCancelled {
			return domain.NewLedgerError(op, "order", order.ID, domain.ErrInvalidInput, fmt.Sprintf("cannot record an order as %q", order.Status))
		}

		requested := make(map[string]int)
		var touched []string
		for _, item := range order.Items {
			if item.Quantity <= 0 {
				return domain.NewLedgerError(op, "order", order.ID, domain.ErrInvalidQuantity,
					fmt.Sprintf("line for %s has quantity %d", item.ProductID, item.Quantity))
			}
			if l.productIndex(item.ProductID) < 0 {
				continue
			}
			if _, seen := requested[item.ProductID]; !seen {
				touched = append(touched, item.ProductID)
			}
			requested[item.ProductID] += item.Quantity
		}
		for _, id := range touched {
			p := l.products[l.productIndex(id)]
			if requested[id] > p.Stock {
				return domain.NewLedgerError(op, "order", order.ID, domain.ErrInsufficientStock,
					fmt.Sprintf("%s: requested %d, available %d", p.Name, requested[id], p.Stock))
			}
		}

		before := make(map[string]domain.StockStatus, len(touched))
		for i := range order.Items {
			item := &order.Items[i]
			idx := l.productIndex(item.ProductID)
			if idx < 0 {
				log.Warn().
					Str("order_id", order.ID).
					Str("product_id", item.ProductID).
					Msg("order line references unknown product, skipping")
				continue
			}
			if item.ProductName == "" {
				item.ProductName = l.products[idx].Name
			}
			prev := l.setStock(idx, l.products[idx].Stock-item.Quantity)
			if _, ok := before[item.ProductID]; !ok {
				before[item.ProductID] = prev
			}
			l.deductLargestFirst(item.ProductID, item.Quantity)
		}

		if order.Date.IsZero() {
			order.Date = tx.now
		}
		if order.Total.IsZero() {
			order.Total = order.ComputeTotal()
		}
		l.orders = append(l.orders, cloneOrder(order))

		tx.activity(domain.ActivityOrder, fmt.Sprintf("New Order #%s received", order.ID))
		for _, id := range touched {
			tx.alertOnWorsening(l.products[l.productIndex(id)], before[id])
		}
		out = cloneOrder(order)
		return nil
	})
	return out, err
}

// UpdateOrderStatus moves an order along Pending → Shipped → Delivered, or to
// Cancelled from any non-terminal state. Stock is not affected.
func (l *Ledger) UpdateOrderStatus(id string, status domain.OrderStatus) (domain.Order, error) {
	const op = "update_order_status"
	var out domain.Order

	err := l.mutate(op, func(tx *txn) error {
		idx := l.orderIndex(id)
		if idx < 0 {
			return domain.Unknown(op, "order", id)
		}
		current := l.orders[idx].Status
		if current == status {
			out = cloneOrder(l.orders[idx])
			return nil
		}
		if !current.CanTransitionTo(status) {
			return domain.NewLedgerError(op, "order", id, domain.ErrInvalidTransition,
				fmt.Sprintf("%s -> %s", current, status))
		}
		l.orders[idx].Status = status
		tx.activity(domain.ActivityOrder, fmt.Sprintf("Order #%s marked %s", id, status))
		out = cloneOrder(l.orders[idx])
		return nil
	})
	return out, err
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}
