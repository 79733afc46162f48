package domain

import "strings"

type StockStatus string

const (
	StatusInStock    StockStatus = "In Stock"
	StatusLowStock   StockStatus = "Low Stock"
	StatusOutOfStock StockStatus = "Out of Stock"
)

// DeriveStatus is the only way a product status is produced.
func DeriveStatus(stock, reorderLevel int) StockStatus {
	switch {
	case stock <= 0:
		return StatusOutOfStock
	case stock <= reorderLevel:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// severity orders stock statuses from healthy to empty.
func (s StockStatus) severity() int {
	switch s {
	case StatusLowStock:
		return 1
	case StatusOutOfStock:
		return 2
	default:
		return 0
	}
}

// WorseThan reports whether s is a more severe status than other.
func (s StockStatus) WorseThan(other StockStatus) bool {
	return s.severity() > other.severity()
}

type LocationType string

const (
	LocationWarehouse LocationType = "Warehouse"
	LocationStore     LocationType = "Store"
)

func (t LocationType) Valid() bool {
	return t == LocationWarehouse || t == LocationStore
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PurchaseOrderStatus string

const (
	POPending  PurchaseOrderStatus = "Pending"
	POReceived PurchaseOrderStatus = "Received"
	PODelayed  PurchaseOrderStatus = "Delayed"
)

func (s PurchaseOrderStatus) Valid() bool {
	return s == POPending || s == POReceived || s == PODelayed
}

// Open reports whether the PO is still awaiting delivery.
func (s PurchaseOrderStatus) Open() bool {
	return s == POPending || s == PODelayed
}

type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "Pending"
	ReturnProcessed ReturnStatus = "Processed"
	ReturnRejected  ReturnStatus = "Rejected"
)

func (s ReturnStatus) Valid() bool {
	return s == ReturnPending || s == ReturnProcessed || s == ReturnRejected
}

type ReturnAction string

const (
	ActionRestock ReturnAction = "Restock"
	ActionDiscard ReturnAction = "Discard"
)

func (a ReturnAction) Valid() bool {
	return a == ActionRestock || a == ActionDiscard
}

type ReturnReason string

const (
	ReasonDamaged        ReturnReason = "Damaged"
	ReasonWrongItem      ReturnReason = "Wrong Item"
	ReasonNoLongerNeeded ReturnReason = "No Longer Needed"
	ReasonDefective      ReturnReason = "Defective"
)

type ItemCondition string

const (
	ConditionNew     ItemCondition = "New"
	ConditionOpened  ItemCondition = "Opened"
	ConditionDamaged ItemCondition = "Damaged"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

func (p TaskPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	return s == TaskPending || s == TaskInProgress || s == TaskCompleted
}

var stockStatusCodes = map[string]StockStatus{
	"in stock":     StatusInStock,
	"in_stock":     StatusInStock,
	"low stock":    StatusLowStock,
	"low_stock":    StatusLowStock,
	"out of stock": StatusOutOfStock,
	"out_of_stock": StatusOutOfStock,
}

// ParseStockStatus returns the status for a given label (case-insensitive).
func ParseStockStatus(label string) (StockStatus, bool) {
	status, ok := stockStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}
