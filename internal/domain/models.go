package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCostRatio is applied to the sale price when a product is added
// without a unit cost.
var DefaultCostRatio = decimal.NewFromFloat(0.6)

// Product is a stock-keeping unit tracked by the ledger. Stock is the
// aggregate on-hand quantity across every location; Status is derived from
// Stock and ReorderLevel and is never set independently.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	Cost            decimal.Decimal `json:"cost"`
	Stock           int             `json:"stock"`
	ReorderLevel    int             `json:"reorder_level"`
	Supplier        string          `json:"supplier"`
	Status          StockStatus     `json:"status"`
	LastRestockDate *time.Time      `json:"last_restock_date,omitempty"`
}

// Location is a warehouse or store holding part of the stock.
type Location struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Address  string       `json:"address"`
	Type     LocationType `json:"type"`
	Capacity *int         `json:"capacity,omitempty"`
}

// LocationStock is one cell of the sparse (product, location) partition.
type LocationStock struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
}

// OrderItem captures the price at order time.
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type Order struct {
	ID       string          `json:"id"`
	Customer string          `json:"customer"`
	Date     time.Time       `json:"date"`
	Status   OrderStatus     `json:"status"`
	Total    decimal.Decimal `json:"total"`
	Items    []OrderItem     `json:"items"`
}

// ComputeTotal sums quantity * price over the order lines.
func (o Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

type PurchaseOrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

type PurchaseOrder struct {
	ID                   string              `json:"id"`
	SupplierID           string              `json:"supplier_id"`
	SupplierName         string              `json:"supplier_name"`
	Date                 time.Time           `json:"date"`
	ExpectedDeliveryDate time.Time           `json:"expected_delivery_date"`
	ReceivedDate         *time.Time          `json:"received_date,omitempty"`
	Status               PurchaseOrderStatus `json:"status"`
	TotalCost            decimal.Decimal     `json:"total_cost"`
	Items                []PurchaseOrderItem `json:"items"`
}

// ComputeTotalCost sums quantity * unit cost over the PO lines.
func (po PurchaseOrder) ComputeTotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range po.Items {
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

type ReturnItem struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	Reason       ReturnReason    `json:"reason"`
	Condition    ItemCondition   `json:"condition"`
	Action       ReturnAction    `json:"action"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type Return struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	Customer    string          `json:"customer"`
	Date        time.Time       `json:"date"`
	Status      ReturnStatus    `json:"status"`
	TotalRefund decimal.Decimal `json:"total_refund"`
	Items       []ReturnItem    `json:"items"`
}

// ComputeTotalRefund is a pass-through sum of the line refunds.
func (r Return) ComputeTotalRefund() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.RefundAmount)
	}
	return total
}

// Supplier holds contact data only; performance is derived from purchase
// order history.
type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
}

// Task is a unit of follow-up work assigned to a team member.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Assignee    string       `json:"assignee"`
	DueDate     time.Time    `json:"due_date"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
}

// OperationResult is what user-facing callers see for a mutation.
type OperationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
