package analytics

import (
	"time"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/shopspring/decimal"
)

// defaultCostRatio estimates unit cost for products that carry none.
var defaultCostRatio = decimal.NewFromFloat(0.6)

// Financials summarizes revenue, returns and cost of goods over the trailing
// number of calendar months, with one trend bucket per month oldest first.
func (c *Calculator) Financials(months int) domain.FinancialSummary {
	if months <= 0 {
		months = 6
	}
	start := c.now.AddDate(0, -months, 0)

	summary := domain.FinancialSummary{
		WindowMonths:  months,
		GrossRevenue:  decimal.Zero,
		Returns:       decimal.Zero,
		COGS:          decimal.Zero,
		AvgOrderValue: decimal.Zero,
	}

	loc := c.now.Location()
	first := time.Date(c.now.Year(), c.now.Month(), 1, 0, 0, 0, 0, loc)
	buckets := make(map[string]*domain.MonthlyFinancials, months)
	trend := make([]*domain.MonthlyFinancials, 0, months)
	for i := months - 1; i >= 0; i-- {
		key := first.AddDate(0, -i, 0).Format("2006-01")
		m := &domain.MonthlyFinancials{Month: key, Revenue: decimal.Zero, Cost: decimal.Zero, Profit: decimal.Zero}
		buckets[key] = m
		trend = append(trend, m)
	}

	for _, o := range c.snap.Orders {
		if o.Status == domain.OrderCancelled || o.Date.Before(start) || o.Date.After(c.now) {
			continue
		}
		summary.Orders++

		orderRevenue, orderCost := decimal.Zero, decimal.Zero
		for _, item := range o.Items {
			p, ok := c.snap.ProductByID(item.ProductID)
			if !ok {
				continue
			}
			qty := decimal.NewFromInt(int64(item.Quantity))
			unitCost := p.Cost
			if unitCost.IsZero() {
				unitCost = p.Price.Mul(defaultCostRatio)
			}
			orderRevenue = orderRevenue.Add(item.Price.Mul(qty))
			orderCost = orderCost.Add(unitCost.Mul(qty))
			summary.ItemsSold += item.Quantity
		}
		summary.GrossRevenue = summary.GrossRevenue.Add(orderRevenue)
		summary.COGS = summary.COGS.Add(orderCost)

		if m, ok := buckets[o.Date.In(loc).Format("2006-01")]; ok {
			m.Revenue = m.Revenue.Add(orderRevenue)
			m.Cost = m.Cost.Add(orderCost)
			m.Profit = m.Revenue.Sub(m.Cost)
		}
	}

	for _, r := range c.snap.Returns {
		if r.Status == domain.ReturnRejected || r.Date.Before(start) || r.Date.After(c.now) {
			continue
		}
		summary.Returns = summary.Returns.Add(r.TotalRefund)
	}

	summary.NetRevenue = summary.GrossRevenue.Sub(summary.Returns)
	summary.GrossProfit = summary.NetRevenue.Sub(summary.COGS)
	if summary.NetRevenue.IsPositive() {
		margin, _ := summary.GrossProfit.Div(summary.NetRevenue).Mul(decimal.NewFromInt(100)).Float64()
		summary.GrossMarginPct = roundFloat(margin, 1)
	}
	if summary.Orders > 0 {
		summary.AvgOrderValue = summary.GrossRevenue.Div(decimal.NewFromInt(int64(summary.Orders))).Round(2)
	}

	summary.Trend = make([]domain.MonthlyFinancials, 0, len(trend))
	for _, m := range trend {
		summary.Trend = append(summary.Trend, *m)
	}
	return summary
}
