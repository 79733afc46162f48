package ledger

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/stockledger/internal/domain"
)

// TransferStock moves qty units of a product between two locations. The
// aggregate stock does not change. When the source holds too few units a
// failure notification is raised and nothing moves.
func (l *Ledger) TransferStock(productID, fromID, toID string, qty int, reason string) error {
	const op = "transfer_stock"
	return l.mutate(op, func(tx *txn) error {
		if qty <= 0 {
			return domain.NewLedgerError(op, "product", productID, domain.ErrInvalidQuantity, fmt.Sprintf("quantity %d", qty))
		}
		if fromID == toID {
			return domain.NewLedgerError(op, "location", fromID, domain.ErrSameLocation, "")
		}
		pidx := l.productIndex(productID)
		if pidx < 0 {
			return domain.Unknown(op, "product", productID)
		}
		if l.locationIndex(fromID) < 0 {
			return domain.Unknown(op, "location", fromID)
		}
		if l.locationIndex(toID) < 0 {
			return domain.Unknown(op, "location", toID)
		}

		available := l.quantityAt(productID, fromID)
		if available < qty {
			tx.notify("Transfer Failed", "Insufficient stock in source location.", domain.NotificationAlert, domain.LinkWarehouses)
			return domain.NewLedgerError(op, "product", productID, domain.ErrInsufficientStock,
				fmt.Sprintf("%s holds %d, requested %d", l.locationName(fromID), available, qty))
		}

		for i := range l.stocks {
			if l.stocks[i].ProductID == productID && l.stocks[i].LocationID == fromID {
				l.stocks[i].Quantity -= qty
				break
			}
		}
		l.credit(productID, toID, qty)

		message := fmt.Sprintf("Transferred %d %s from %s to %s", qty, l.products[pidx].Name, l.locationName(fromID), l.locationName(toID))
		if r := strings.TrimSpace(reason); r != "" {
			message += ". Reason: " + r
		}
		tx.activity(domain.ActivityTransfer, message)
		tx.notify("Transfer Complete",
			fmt.Sprintf("Moved %d units of %s to %s.", qty, l.products[pidx].Name, l.locationName(toID)),
			domain.NotificationSuccess, domain.LinkWarehouses)
		return nil
	})
}

// WriteOffProduct removes damaged or lost units from stock, draining the
// largest locations first.
func (l *Ledger) WriteOffProduct(productID string, qty int, reason string) error {
	const op = "write_off_product"
	return l.mutate(op, func(tx *txn) error {
		if qty <= 0 {
			return domain.NewLedgerError(op, "product", productID, domain.ErrInvalidQuantity, fmt.Sprintf("quantity %d", qty))
		}
		idx := l.productIndex(productID)
		if idx < 0 {
			return domain.Unknown(op, "product", productID)
		}
		p := l.products[idx]
		if qty > p.Stock {
			return domain.NewLedgerError(op, "product", productID, domain.ErrInsufficientStock,
				fmt.Sprintf("%s: write-off %d, on hand %d", p.Name, qty, p.Stock))
		}

		prev := l.setStock(idx, p.Stock-qty)
		l.deductLargestFirst(productID, qty)

		if strings.TrimSpace(reason) == "" {
			reason = "unspecified"
		}
		tx.activity(domain.ActivityStock, fmt.Sprintf("Write-off: %d units of %s. Reason: %s", qty, p.Name, reason))
		tx.alertOnWorsening(l.products[idx], prev)
		return nil
	})
}
