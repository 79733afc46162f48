package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultSupplierLeadDays sets the expected delivery date when a PO is
// raised without one.
const DefaultSupplierLeadDays = 14

// AddPurchaseOrder records a new PO. It cannot be created as Received; stock
// only arrives through ReceivePurchaseOrder.
func (l *Ledger) AddPurchaseOrder(po domain.PurchaseOrder) (domain.PurchaseOrder, error) {
	const op = "add_purchase_order"
	var out domain.PurchaseOrder

	po = clonePurchaseOrder(po)
	err := l.mutate(op, func(tx *txn) error {
		if po.ID == "" {
			po.ID = "PO-" + shortID()
		}
		if l.purchaseOrderIndex(po.ID) >= 0 {
			return domain.NewLedgerError(op, "purchase order", po.ID, domain.ErrDuplicateOperation, "id already exists")
		}
		if len(po.Items) == 0 {
			return domain.NewLedgerError(op, "purchase order", po.ID, domain.ErrInvalidInput, "purchase order has no items")
		}
		for _, item := range po.Items {
			if item.Quantity <= 0 {
				return domain.NewLedgerError(op, "purchase order", po.ID, domain.ErrInvalidQuantity,
					fmt.Sprintf("line for %s has quantity %d", item.ProductID, item.Quantity))
			}
			if l.productIndex(item.ProductID) < 0 {
				return domain.Unknown(op, "product", item.ProductID)
			}
		}
		if po.Status == "" {
			po.Status = domain.POPending
		}
		if !po.Status.Open() {
			return domain.NewLedgerError(op, "purchase order", po.ID, domain.ErrInvalidTransition,
				fmt.Sprintf("cannot create a purchase order as %q", po.Status))
		}

		if idx := l.supplierIndex(po.SupplierID); idx >= 0 && po.SupplierName == "" {
			po.SupplierName = l.suppliers[idx].Name
		}
		if strings.TrimSpace(po.SupplierName) == "" {
			return domain.NewLedgerError(op, "purchase order", po.ID, domain.ErrInvalidInput, "supplier is required")
		}
		for i := range po.Items {
			if idx := l.productIndex(po.Items[i].ProductID); idx >= 0 && po.Items[i].ProductName == "" {
				po.Items[i].ProductName = l.products[idx].Name
			}
		}
		if po.Date.IsZero() {
			po.Date = tx.today()
		}
		if po.ExpectedDeliveryDate.IsZero() {
			po.ExpectedDeliveryDate = po.Date.AddDate(0, 0, DefaultSupplierLeadDays)
		}
		if po.TotalCost.IsZero() {
			po.TotalCost = po.ComputeTotalCost()
		}
		po.ReceivedDate = nil

		l.purchaseOrders = append(l.purchaseOrders, clonePurchaseOrder(po))
		tx.activity(domain.ActivityOrder, fmt.Sprintf("Purchase Order #%s created for %s", po.ID, po.SupplierName))
		tx.notify("Purchase Order Created",
			fmt.Sprintf("PO #%s sent to %s.", po.ID, po.SupplierName),
			domain.NotificationInfo, domain.LinkPurchaseOrders)
		out = clonePurchaseOrder(po)
		return nil
	})
	return out, err
}

// MarkPurchaseOrderDelayed flags an open PO as late. Marking a Delayed PO
// again is a no-op; a Received PO cannot go back.
func (l *Ledger) MarkPurchaseOrderDelayed(id string) (domain.PurchaseOrder, error) {
	const op = "mark_purchase_order_delayed"
	var out domain.PurchaseOrder

	err := l.mutate(op, func(tx *txn) error {
		idx := l.purchaseOrderIndex(id)
		if idx < 0 {
			return domain.Unknown(op, "purchase order", id)
		}
		po := &l.purchaseOrders[idx]
		switch po.Status {
		case domain.PODelayed:
		case domain.POPending:
			po.Status = domain.PODelayed
			tx.activity(domain.ActivityAlert, fmt.Sprintf("Purchase Order #%s from %s is delayed", po.ID, po.SupplierName))
			tx.notify("Purchase Order Delayed",
				fmt.Sprintf("PO #%s from %s has been marked as delayed.", po.ID, po.SupplierName),
				domain.NotificationWarning, domain.LinkPurchaseOrders)
		default:
			return domain.NewLedgerError(op, "purchase order", id, domain.ErrInvalidTransition,
				fmt.Sprintf("%s -> %s", po.Status, domain.PODelayed))
		}
		out = clonePurchaseOrder(*po)
		return nil
	})
	return out, err
}

// ReceivePurchaseOrder books a PO's lines into stock at the receiving
// location and closes it. Receiving a PO that is already Received returns
// it unchanged.
func (l *Ledger) ReceivePurchaseOrder(id string) (domain.PurchaseOrder, error) {
	const op = "receive_purchase_order"
	var out domain.PurchaseOrder

	err := l.mutate(op, func(tx *txn) error {
		idx := l.purchaseOrderIndex(id)
		if idx < 0 {
			return domain.Unknown(op, "purchase order", id)
		}
		po := &l.purchaseOrders[idx]
		if po.Status == domain.POReceived {
			log.Info().Str("po_id", id).Msg("purchase order already received, skipping")
			out = clonePurchaseOrder(*po)
			return nil
		}

		target := l.receivingLocation()
		today := tx.today()
		for _, item := range po.Items {
			pidx := l.productIndex(item.ProductID)
			if pidx < 0 {
				log.Warn().
					Str("po_id", id).
					Str("product_id", item.ProductID).
					Msg("purchase order line references unknown product, skipping")
				continue
			}
			l.setStock(pidx, l.products[pidx].Stock+item.Quantity)
			restocked := today
			l.products[pidx].LastRestockDate = &restocked
			l.credit(item.ProductID, target, item.Quantity)
		}
		if target == "" {
			log.Warn().Str("po_id", id).Msg("no locations defined, received stock left unassigned")
		}

		po.Status = domain.POReceived
		received := today
		po.ReceivedDate = &received

		tx.activity(domain.ActivityStock, fmt.Sprintf("Received Purchase Order #%s from %s", po.ID, po.SupplierName))
		tx.notify("Stock Received", fmt.Sprintf("Inventory updated from PO #%s.", po.ID),
			domain.NotificationSuccess, domain.LinkPurchaseOrders)
		out = clonePurchaseOrder(*po)
		return nil
	})
	return out, err
}

// CheckOverduePurchaseOrders raises a warning for every open PO older than
// afterDays whole days. A PO is warned about at most once per calendar day.
// It returns the number of notifications raised.
func (l *Ledger) CheckOverduePurchaseOrders(afterDays int) (int, error) {
	const op = "check_overdue_purchase_orders"
	raised := 0

	err := l.mutate(op, func(tx *txn) error {
		today := tx.today()
		for _, po := range l.purchaseOrders {
			if !po.Status.Open() {
				continue
			}
			age := domain.DaysBetween(po.Date, today)
			if age <= afterDays {
				continue
			}
			message := fmt.Sprintf("PO #%s from %s is pending for more than %d days.", po.ID, po.SupplierName, afterDays)
			if l.notifiedToday(message, today) {
				continue
			}
			tx.notify("Overdue Purchase Order", message, domain.NotificationWarning, domain.LinkPurchaseOrders)
			raised++
		}
		return nil
	})
	return raised, err
}

func (l *Ledger) notifiedToday(message string, today time.Time) bool {
	for _, n := range l.notifications {
		if n.Link == domain.LinkPurchaseOrders && n.Message == message && startOfDay(n.Timestamp.In(today.Location())).Equal(today) {
			return true
		}
	}
	return false
}

func clonePurchaseOrder(po domain.PurchaseOrder) domain.PurchaseOrder {
	po.Items = append([]domain.PurchaseOrderItem(nil), po.Items...)
	if po.ReceivedDate != nil {
		d := *po.ReceivedDate
		po.ReceivedDate = &d
	}
	return po
}
