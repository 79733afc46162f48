package service

import (
	"context"

	"github.com/andresuchdata/stockledger/internal/domain"
)

func (s *LedgerService) AddProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var out domain.Product
	err := s.apply(ctx, "add_product", func() (err error) {
		out, err = s.ledger.AddProduct(p)
		return err
	})
	return out, err
}

func (s *LedgerService) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var out domain.Product
	err := s.apply(ctx, "update_product", func() (err error) {
		out, err = s.ledger.UpdateProduct(p)
		return err
	})
	return out, err
}

func (s *LedgerService) DeleteProduct(ctx context.Context, id string) error {
	return s.apply(ctx, "delete_product", func() error {
		return s.ledger.DeleteProduct(id)
	})
}

func (s *LedgerService) AddLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	var out domain.Location
	err := s.apply(ctx, "add_location", func() (err error) {
		out, err = s.ledger.AddLocation(loc)
		return err
	})
	return out, err
}

func (s *LedgerService) UpdateLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	var out domain.Location
	err := s.apply(ctx, "update_location", func() (err error) {
		out, err = s.ledger.UpdateLocation(loc)
		return err
	})
	return out, err
}

func (s *LedgerService) DeleteLocation(ctx context.Context, id string) error {
	return s.apply(ctx, "delete_location", func() error {
		return s.ledger.DeleteLocation(id)
	})
}

func (s *LedgerService) AddSupplier(ctx context.Context, sup domain.Supplier) (domain.Supplier, error) {
	var out domain.Supplier
	err := s.apply(ctx, "add_supplier", func() (err error) {
		out, err = s.ledger.AddSupplier(sup)
		return err
	})
	return out, err
}

func (s *LedgerService) UpdateSupplier(ctx context.Context, sup domain.Supplier) (domain.Supplier, error) {
	var out domain.Supplier
	err := s.apply(ctx, "update_supplier", func() (err error) {
		out, err = s.ledger.UpdateSupplier(sup)
		return err
	})
	return out, err
}

func (s *LedgerService) DeleteSupplier(ctx context.Context, id string) error {
	return s.apply(ctx, "delete_supplier", func() error {
		return s.ledger.DeleteSupplier(id)
	})
}

func (s *LedgerService) AddTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	var out domain.Task
	err := s.apply(ctx, "add_task", func() (err error) {
		out, err = s.ledger.AddTask(t)
		return err
	})
	return out, err
}

func (s *LedgerService) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	var out domain.Task
	err := s.apply(ctx, "update_task", func() (err error) {
		out, err = s.ledger.UpdateTask(t)
		return err
	})
	return out, err
}

func (s *LedgerService) DeleteTask(ctx context.Context, id string) error {
	return s.apply(ctx, "delete_task", func() error {
		return s.ledger.DeleteTask(id)
	})
}

// FulfillOrder records a customer order and deducts its stock.
func (s *LedgerService) FulfillOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	var out domain.Order
	err := s.apply(ctx, "fulfill_order", func() (err error) {
		out, err = s.ledger.FulfillOrder(o)
		return err
	})
	return out, err
}

func (s *LedgerService) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	var out domain.Order
	err := s.apply(ctx, "update_order_status", func() (err error) {
		out, err = s.ledger.UpdateOrderStatus(id, status)
		return err
	})
	return out, err
}

func (s *LedgerService) AddPurchaseOrder(ctx context.Context, po domain.PurchaseOrder) (domain.PurchaseOrder, error) {
	var out domain.PurchaseOrder
	err := s.apply(ctx, "add_purchase_order", func() (err error) {
		out, err = s.ledger.AddPurchaseOrder(po)
		return err
	})
	return out, err
}

func (s *LedgerService) MarkPurchaseOrderDelayed(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	var out domain.PurchaseOrder
	err := s.apply(ctx, "mark_po_delayed", func() (err error) {
		out, err = s.ledger.MarkPurchaseOrderDelayed(id)
		return err
	})
	return out, err
}

func (s *LedgerService) ReceivePurchaseOrder(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	var out domain.PurchaseOrder
	err := s.apply(ctx, "receive_purchase_order", func() (err error) {
		out, err = s.ledger.ReceivePurchaseOrder(id)
		return err
	})
	return out, err
}

func (s *LedgerService) ProcessReturn(ctx context.Context, r domain.Return) (domain.Return, error) {
	var out domain.Return
	err := s.apply(ctx, "process_return", func() (err error) {
		out, err = s.ledger.ProcessReturn(r)
		return err
	})
	return out, err
}

func (s *LedgerService) ResolveReturn(ctx context.Context, id string, approve bool) (domain.Return, error) {
	var out domain.Return
	err := s.apply(ctx, "resolve_return", func() (err error) {
		out, err = s.ledger.ResolveReturn(id, approve)
		return err
	})
	return out, err
}

func (s *LedgerService) TransferStock(ctx context.Context, productID, fromID, toID string, qty int, reason string) error {
	return s.apply(ctx, "transfer", func() error {
		return s.ledger.TransferStock(productID, fromID, toID, qty, reason)
	})
}

func (s *LedgerService) WriteOffProduct(ctx context.Context, productID string, qty int, reason string) error {
	return s.apply(ctx, "write_off", func() error {
		return s.ledger.WriteOffProduct(productID, qty, reason)
	})
}

func (s *LedgerService) Notify(ctx context.Context, title, message string, kind domain.NotificationType, link string) (domain.Notification, error) {
	var out domain.Notification
	err := s.apply(ctx, "notify", func() error {
		out = s.ledger.Notify(title, message, kind, link)
		return nil
	})
	return out, err
}

func (s *LedgerService) MarkNotificationRead(ctx context.Context, id string) error {
	return s.apply(ctx, "mark_notification_read", func() error {
		return s.ledger.MarkNotificationRead(id)
	})
}

func (s *LedgerService) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	var n int
	err := s.apply(ctx, "mark_all_notifications_read", func() error {
		n = s.ledger.MarkAllNotificationsRead()
		return nil
	})
	return n, err
}

func (s *LedgerService) DeleteNotification(ctx context.Context, id string) error {
	return s.apply(ctx, "delete_notification", func() error {
		return s.ledger.DeleteNotification(id)
	})
}

func (s *LedgerService) DismissCopilotInsight(ctx context.Context, id string) error {
	return s.apply(ctx, "dismiss_insight", func() error {
		return s.ledger.DismissInsight(id)
	})
}
