package ledger

import (
	"fmt"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// ProcessReturn records a customer return against an existing order. A
// return without a status is Processed immediately: Restock lines go back
// into stock at the first location and Discard lines are only recorded.
// Pending returns wait for ResolveReturn.
func (l *Ledger) ProcessReturn(ret domain.Return) (domain.Return, error) {
	const op = "process_return"
	var out domain.Return

	ret = cloneReturn(ret)
	err := l.mutate(op, func(tx *txn) error {
		if ret.ID == "" {
			ret.ID = "RET-" + shortID()
		}
		if idx := l.returnIndex(ret.ID); idx >= 0 {
			return domain.NewLedgerError(op, "return", ret.ID, domain.ErrDuplicateOperation, "return already recorded")
		}
		oidx := l.orderIndex(ret.OrderID)
		if oidx < 0 {
			return domain.Unknown(op, "order", ret.OrderID)
		}
		if len(ret.Items) == 0 {
			return domain.NewLedgerError(op, "return", ret.ID, domain.ErrInvalidInput, "return has no items")
		}
		for i := range ret.Items {
			item := &ret.Items[i]
			if item.Quantity <= 0 {
				return domain.NewLedgerError(op, "return", ret.ID, domain.ErrInvalidQuantity,
					fmt.Sprintf("line for %s has quantity %d", item.ProductID, item.Quantity))
			}
			if item.Action == "" {
				item.Action = domain.ActionDiscard
			}
			if !item.Action.Valid() {
				return domain.NewLedgerError(op, "return", ret.ID, domain.ErrInvalidInput, fmt.Sprintf("unknown action %q", item.Action))
			}
			if pidx := l.productIndex(item.ProductID); pidx >= 0 && item.ProductName == "" {
				item.ProductName = l.products[pidx].Name
			}
		}
		if ret.Status == "" {
			ret.Status = domain.ReturnProcessed
		}
		if !ret.Status.Valid() {
			return domain.NewLedgerError(op, "return", ret.ID, domain.ErrInvalidInput, fmt.Sprintf("unknown status %q", ret.Status))
		}
		if ret.Customer == "" {
			ret.Customer = l.orders[oidx].Customer
		}
		if ret.Date.IsZero() {
			ret.Date = tx.now
		}
		if ret.TotalRefund.IsZero() {
			ret.TotalRefund = ret.ComputeTotalRefund()
		}

		switch ret.Status {
		case domain.ReturnProcessed:
			l.restock(ret)
			tx.activity(domain.ActivityReturn, fmt.Sprintf("Return processed for Order #%s", ret.OrderID))
			tx.notify("Return Processed",
				fmt.Sprintf("Return #%s for Order #%s refunded %s.", ret.ID, ret.OrderID, ret.TotalRefund.StringFixed(2)),
				domain.NotificationInfo, domain.LinkReturns)
		case domain.ReturnPending:
			tx.activity(domain.ActivityReturn, fmt.Sprintf("Return #%s logged for Order #%s, pending review", ret.ID, ret.OrderID))
		case domain.ReturnRejected:
			tx.activity(domain.ActivityReturn, fmt.Sprintf("Return #%s for Order #%s rejected", ret.ID, ret.OrderID))
		}

		l.returns = append(l.returns, cloneReturn(ret))
		out = cloneReturn(ret)
		return nil
	})
	return out, err
}

// ResolveReturn settles a Pending return. Approving applies its restock
// lines; rejecting only records the outcome.
func (l *Ledger) ResolveReturn(id string, approve bool) (domain.Return, error) {
	const op = "resolve_return"
	var out domain.Return

	err := l.mutate(op, func(tx *txn) error {
		idx := l.returnIndex(id)
		if idx < 0 {
			return domain.Unknown(op, "return", id)
		}
		ret := &l.returns[idx]
		if ret.Status != domain.ReturnPending {
			return domain.NewLedgerError(op, "return", id, domain.ErrInvalidTransition,
				fmt.Sprintf("return is already %s", ret.Status))
		}
		if approve {
			ret.Status = domain.ReturnProcessed
			l.restock(*ret)
			tx.activity(domain.ActivityReturn, fmt.Sprintf("Return processed for Order #%s", ret.OrderID))
			tx.notify("Return Processed",
				fmt.Sprintf("Return #%s for Order #%s refunded %s.", ret.ID, ret.OrderID, ret.TotalRefund.StringFixed(2)),
				domain.NotificationInfo, domain.LinkReturns)
		} else {
			ret.Status = domain.ReturnRejected
			tx.activity(domain.ActivityReturn, fmt.Sprintf("Return #%s for Order #%s rejected", ret.ID, ret.OrderID))
		}
		out = cloneReturn(*ret)
		return nil
	})
	return out, err
}

func (l *Ledger) restock(ret domain.Return) {
	target := l.firstLocation()
	for _, item := range ret.Items {
		if item.Action != domain.ActionRestock {
			continue
		}
		idx := l.productIndex(item.ProductID)
		if idx < 0 {
			log.Warn().
				Str("return_id", ret.ID).
				Str("product_id", item.ProductID).
				Msg("return line references unknown product, skipping restock")
			continue
		}
		l.setStock(idx, l.products[idx].Stock+item.Quantity)
		l.credit(item.ProductID, target, item.Quantity)
	}
}

func cloneReturn(r domain.Return) domain.Return {
	r.Items = append([]domain.ReturnItem(nil), r.Items...)
	return r
}
