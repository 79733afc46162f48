package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysOfInventory is stock divided by sales velocity. Unbounded is set when
// the product did not sell in the window; Days is zero in that case.
type DaysOfInventory struct {
	Days      float64 `json:"days"`
	Unbounded bool    `json:"unbounded"`
}

// SalesVelocity is the trailing-window sales rate for one product.
type SalesVelocity struct {
	WindowDays    int     `json:"window_days"`
	UnitsSold     int     `json:"units_sold"`
	AvgDailySales float64 `json:"avg_daily_sales"`
}

// AgingItem is a row of the aging report.
type AgingItem struct {
	ProductID       string     `json:"product_id"`
	Name            string     `json:"name"`
	SKU             string     `json:"sku"`
	Stock           int        `json:"stock"`
	LastRestockDate *time.Time `json:"last_restock_date,omitempty"`
	LastSoldDate    *time.Time `json:"last_sold_date,omitempty"`
	DaysSinceSale   *int       `json:"days_since_sale,omitempty"`
	DaysInStock     int        `json:"days_in_stock"`
	SlowMoving      bool       `json:"slow_moving"`
}

type ReorderSuggestion struct {
	ProductID        string  `json:"product_id"`
	ProductName      string  `json:"product_name"`
	CurrentStock     int     `json:"current_stock"`
	AvgDailySales    float64 `json:"avg_daily_sales"`
	LeadTimeDays     int     `json:"lead_time_days"`
	SafetyBufferDays int     `json:"safety_buffer_days"`
	CoverageUnits    int     `json:"coverage_units"`
	SuggestedQty     int     `json:"suggested_qty"`
}

// SupplierPerformance represents a supplier's delivery metrics over its
// received purchase orders.
type SupplierPerformance struct {
	SupplierID      string          `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	ReceivedPOs     int             `json:"received_pos"`
	TotalSpend      decimal.Decimal `json:"total_spend"`
	AvgLeadTime     float64         `json:"avg_lead_time"`
	MinLeadTime     int             `json:"min_lead_time"`
	MaxLeadTime     int             `json:"max_lead_time"`
	OnTimeRate      float64         `json:"on_time_rate"`
	LeadTimeHistory []int           `json:"lead_time_history"`
}

// StockStatusSummary counts products per derived status.
type StockStatusSummary struct {
	Status StockStatus `json:"status"`
	Count  int         `json:"count"`
}

type DailySales struct {
	Date     string `json:"date"`
	Quantity int    `json:"quantity"`
}

type MonthlySales struct {
	Month    string          `json:"month"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// ProductAnalysis is the detail view for a single product.
type ProductAnalysis struct {
	Product        Product           `json:"product"`
	Velocity       SalesVelocity     `json:"velocity"`
	UnitsSold30    int               `json:"units_sold_30"`
	DOI            DaysOfInventory   `json:"doi"`
	InventoryValue decimal.Decimal   `json:"inventory_value"`
	GrossMarginPct float64           `json:"gross_margin_pct"`
	Reorder        ReorderSuggestion `json:"reorder"`
	Daily          []DailySales      `json:"daily"`
	Monthly        []MonthlySales    `json:"monthly"`
	StockoutRisk   bool              `json:"stockout_risk"`
	Overstocked    bool              `json:"overstocked"`
}

// POAging represents an open PO in the aging table
type POAging struct {
	PONumber     string              `json:"po_number"`
	SupplierName string              `json:"supplier_name"`
	Status       PurchaseOrderStatus `json:"status"`
	Quantity     int                 `json:"quantity"`
	Value        decimal.Decimal     `json:"value"`
	DaysOpen     int                 `json:"days_open"`
	Overdue      bool                `json:"overdue"`
}

// DashboardSummary aggregates the summary cards.
type DashboardSummary struct {
	GeneratedAt         time.Time             `json:"generated_at"`
	WindowDays          int                   `json:"window_days"`
	TotalProducts       int                   `json:"total_products"`
	TotalUnits          int                   `json:"total_units"`
	InventoryValue      decimal.Decimal       `json:"inventory_value"`
	Revenue             decimal.Decimal       `json:"revenue"`
	Refunds             decimal.Decimal       `json:"refunds"`
	Orders              int                   `json:"orders"`
	AvgDaysOfInventory  float64               `json:"avg_days_of_inventory"`
	StatusSummaries     []StockStatusSummary  `json:"status_summaries"`
	LowStock            []Product             `json:"low_stock"`
	OpenPurchaseOrders  []POAging             `json:"open_purchase_orders"`
	SupplierPerformance []SupplierPerformance `json:"supplier_performance"`
	UnreadAlerts        int                   `json:"unread_alerts"`
}

// PartitionDrift reports how far a product's location partition is from its
// aggregate stock. Unassigned is stock - sum(partition).
type PartitionDrift struct {
	ProductID  string `json:"product_id"`
	Stock      int    `json:"stock"`
	Allocated  int    `json:"allocated"`
	Unassigned int    `json:"unassigned"`
}

// FinancialSummary is the revenue and margin view over a trailing number of
// calendar months.
type FinancialSummary struct {
	WindowMonths   int                 `json:"window_months"`
	Orders         int                 `json:"orders"`
	ItemsSold      int                 `json:"items_sold"`
	GrossRevenue   decimal.Decimal     `json:"gross_revenue"`
	Returns        decimal.Decimal     `json:"returns"`
	NetRevenue     decimal.Decimal     `json:"net_revenue"`
	COGS           decimal.Decimal     `json:"cogs"`
	GrossProfit    decimal.Decimal     `json:"gross_profit"`
	GrossMarginPct float64             `json:"gross_margin_pct"`
	AvgOrderValue  decimal.Decimal     `json:"avg_order_value"`
	Trend          []MonthlyFinancials `json:"trend"`
}

type MonthlyFinancials struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

type CopilotInsightType string

const (
	InsightReorder   CopilotInsightType = "Reorder"
	InsightDeadStock CopilotInsightType = "DeadStock"
	InsightMover     CopilotInsightType = "Mover"
	InsightSupplier  CopilotInsightType = "Supplier"
	InsightPrice     CopilotInsightType = "Price"
)

// CopilotInsight is one rule-based suggestion. IDs are stable per rule and
// subject so a dismissal sticks across recomputation.
type CopilotInsight struct {
	ID          string             `json:"id"`
	Type        CopilotInsightType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Action      string             `json:"action"`
	ActionLink  string             `json:"action_link"`
	Metric      string             `json:"metric,omitempty"`
	History     []int              `json:"history,omitempty"`
}
