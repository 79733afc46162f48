package analytics

import (
	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Dashboard assembles the summary cards over the summary window.
func (c *Calculator) Dashboard() domain.DashboardSummary {
	window := c.params.SummaryWindowDays
	summary := domain.DashboardSummary{
		GeneratedAt:         c.now,
		WindowDays:          window,
		TotalProducts:       len(c.snap.Products),
		InventoryValue:      decimal.Zero,
		Revenue:             decimal.Zero,
		Refunds:             decimal.Zero,
		StatusSummaries:     c.StatusSummary(),
		LowStock:            make([]domain.Product, 0),
		OpenPurchaseOrders:  c.OpenPurchaseOrders(),
		SupplierPerformance: c.SupplierPerformance(),
	}

	var doiSum float64
	doiCount := 0
	for _, p := range c.snap.Products {
		summary.TotalUnits += p.Stock
		summary.InventoryValue = summary.InventoryValue.Add(p.Cost.Mul(decimal.NewFromInt(int64(p.Stock))))
		if domain.DeriveStatus(p.Stock, p.ReorderLevel) != domain.StatusInStock {
			summary.LowStock = append(summary.LowStock, p)
		}
		doi := DaysOfInventory(p.Stock, c.SalesVelocity(p.ID, window).AvgDailySales)
		if !doi.Unbounded {
			doiSum += doi.Days
			doiCount++
		}
	}
	if doiCount > 0 {
		summary.AvgDaysOfInventory = roundFloat(doiSum/float64(doiCount), 1)
	}

	for _, o := range c.snap.Orders {
		if o.Status == domain.OrderCancelled || !c.inWindow(o.Date, window) {
			continue
		}
		summary.Orders++
		summary.Revenue = summary.Revenue.Add(o.Total)
	}
	for _, r := range c.snap.Returns {
		if r.Status == domain.ReturnRejected || !c.inWindow(r.Date, window) {
			continue
		}
		summary.Refunds = summary.Refunds.Add(r.TotalRefund)
	}
	for _, n := range c.snap.Notifications {
		if !n.Read && n.Type == domain.NotificationAlert {
			summary.UnreadAlerts++
		}
	}
	return summary
}
