// Package analytics derives read-only inventory metrics from a ledger
// snapshot. Nothing here mutates the snapshot it is given.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/stockledger/internal/config"
	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Params holds the planning constants used by the calculator.
type Params struct {
	LeadTimeDays       int
	SafetyBufferDays   int
	DetailWindowDays   int
	SummaryWindowDays  int
	SlowMovingDays     int
	NeverSoldAgeDays   int
	OverduePOAfterDays int
}

func DefaultParams() Params {
	return Params{
		LeadTimeDays:       14,
		SafetyBufferDays:   7,
		DetailWindowDays:   90,
		SummaryWindowDays:  30,
		SlowMovingDays:     90,
		NeverSoldAgeDays:   120,
		OverduePOAfterDays: 7,
	}
}

// ParamsFromConfig overlays the configured constants on the defaults. Zero or
// negative values keep the default.
func ParamsFromConfig(cfg config.AnalyticsConfig) Params {
	p := DefaultParams()
	pick := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	pick(&p.LeadTimeDays, cfg.LeadTimeDays)
	pick(&p.SafetyBufferDays, cfg.SafetyBufferDays)
	pick(&p.DetailWindowDays, cfg.DetailWindowDays)
	pick(&p.SummaryWindowDays, cfg.SummaryWindowDays)
	pick(&p.SlowMovingDays, cfg.SlowMovingDays)
	pick(&p.NeverSoldAgeDays, cfg.NeverSoldAgeDays)
	pick(&p.OverduePOAfterDays, cfg.OverduePOAfterDays)
	return p
}

const (
	stockoutRiskDays = 10
	overstockDays    = 90
)

type sale struct {
	date     time.Time
	quantity int
	revenue  decimal.Decimal
}

// Calculator indexes a snapshot's sales history once and answers metric
// queries against a fixed "now".
type Calculator struct {
	params Params
	snap   *domain.Snapshot
	now    time.Time
	sales  map[string][]sale
}

// NewCalculator builds the per-product sales index. Cancelled orders are not
// sales.
func NewCalculator(snap *domain.Snapshot, now time.Time, params Params) *Calculator {
	c := &Calculator{
		params: params,
		snap:   snap,
		now:    now,
		sales:  make(map[string][]sale),
	}
	for _, o := range snap.Orders {
		if o.Status == domain.OrderCancelled {
			continue
		}
		for _, item := range o.Items {
			c.sales[item.ProductID] = append(c.sales[item.ProductID], sale{
				date:     o.Date,
				quantity: item.Quantity,
				revenue:  item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			})
		}
	}
	for id := range c.sales {
		s := c.sales[id]
		sort.SliceStable(s, func(i, j int) bool { return s[i].date.Before(s[j].date) })
	}
	return c
}

func (c *Calculator) Params() Params {
	return c.params
}

// windowStart is the first day counted by a trailing window that includes
// today.
func (c *Calculator) windowStart(windowDays int) time.Time {
	return domain.StartOfDay(c.now).AddDate(0, 0, -(windowDays - 1))
}

func (c *Calculator) inWindow(t time.Time, windowDays int) bool {
	return !t.Before(c.windowStart(windowDays)) && !t.After(c.now)
}

// SalesVelocity is units sold in the trailing window divided by its length.
func (c *Calculator) SalesVelocity(productID string, windowDays int) domain.SalesVelocity {
	v := domain.SalesVelocity{WindowDays: windowDays}
	if windowDays <= 0 {
		return v
	}
	for _, s := range c.sales[productID] {
		if c.inWindow(s.date, windowDays) {
			v.UnitsSold += s.quantity
		}
	}
	v.AvgDailySales = float64(v.UnitsSold) / float64(windowDays)
	return v
}

// DaysOfInventory divides stock by velocity, reporting an unbounded cover when
// nothing sold.
func DaysOfInventory(stock int, avgDailySales float64) domain.DaysOfInventory {
	if avgDailySales <= 0 {
		return domain.DaysOfInventory{Unbounded: true}
	}
	return domain.DaysOfInventory{Days: roundFloat(float64(stock)/avgDailySales, 1)}
}

// Reorder suggests ceil(avg * (lead + buffer) - stock), floored at zero.
func (c *Calculator) Reorder(p domain.Product, avgDailySales float64) domain.ReorderSuggestion {
	horizon := c.params.LeadTimeDays + c.params.SafetyBufferDays
	coverage := avgDailySales * float64(horizon)

	return domain.ReorderSuggestion{
		ProductID:        p.ID,
		ProductName:      p.Name,
		CurrentStock:     p.Stock,
		AvgDailySales:    roundFloat(avgDailySales, 2),
		LeadTimeDays:     c.params.LeadTimeDays,
		SafetyBufferDays: c.params.SafetyBufferDays,
		CoverageUnits:    int(math.Ceil(coverage)),
		SuggestedQty:     int(math.Max(0, math.Ceil(coverage-float64(p.Stock)))),
	}
}

// ReorderSuggestions returns products that need replenishing, largest
// suggestion first.
func (c *Calculator) ReorderSuggestions() []domain.ReorderSuggestion {
	out := make([]domain.ReorderSuggestion, 0)
	for _, p := range c.snap.Products {
		v := c.SalesVelocity(p.ID, c.params.DetailWindowDays)
		r := c.Reorder(p, v.AvgDailySales)
		if r.SuggestedQty > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SuggestedQty > out[j].SuggestedQty })
	return out
}

func (c *Calculator) lastSold(productID string) (time.Time, bool) {
	s := c.sales[productID]
	if len(s) == 0 {
		return time.Time{}, false
	}
	return s[len(s)-1].date, true
}

// AgingItem describes how long a product has sat. A product with stock is
// slow moving when its last sale is older than SlowMovingDays, or when it
// never sold and was restocked more than NeverSoldAgeDays ago (or has no
// restock date at all).
func (c *Calculator) AgingItem(p domain.Product) domain.AgingItem {
	item := domain.AgingItem{
		ProductID:       p.ID,
		Name:            p.Name,
		SKU:             p.SKU,
		Stock:           p.Stock,
		LastRestockDate: p.LastRestockDate,
	}
	if p.LastRestockDate != nil {
		item.DaysInStock = max(0, domain.DaysBetween(*p.LastRestockDate, c.now))
	}

	last, sold := c.lastSold(p.ID)
	if sold {
		days := max(0, domain.DaysBetween(last, c.now))
		item.LastSoldDate = &last
		item.DaysSinceSale = &days
	}

	if p.Stock > 0 {
		switch {
		case sold:
			item.SlowMoving = *item.DaysSinceSale > c.params.SlowMovingDays
		case p.LastRestockDate == nil:
			item.SlowMoving = true
		default:
			item.SlowMoving = item.DaysInStock > c.params.NeverSoldAgeDays
		}
	}
	return item
}

// Aging lists every product, slow movers first, then by days in stock.
func (c *Calculator) Aging() []domain.AgingItem {
	out := make([]domain.AgingItem, 0, len(c.snap.Products))
	for _, p := range c.snap.Products {
		out = append(out, c.AgingItem(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SlowMoving != out[j].SlowMoving {
			return out[i].SlowMoving
		}
		return out[i].DaysInStock > out[j].DaysInStock
	})
	return out
}

// StatusSummary counts products per status in severity order.
func (c *Calculator) StatusSummary() []domain.StockStatusSummary {
	counts := map[domain.StockStatus]int{}
	for _, p := range c.snap.Products {
		counts[domain.DeriveStatus(p.Stock, p.ReorderLevel)]++
	}
	return []domain.StockStatusSummary{
		{Status: domain.StatusInStock, Count: counts[domain.StatusInStock]},
		{Status: domain.StatusLowStock, Count: counts[domain.StatusLowStock]},
		{Status: domain.StatusOutOfStock, Count: counts[domain.StatusOutOfStock]},
	}
}

// ProductAnalysis builds the product detail view.
func (c *Calculator) ProductAnalysis(productID string) (domain.ProductAnalysis, error) {
	p, ok := c.snap.ProductByID(productID)
	if !ok {
		return domain.ProductAnalysis{}, domain.Unknown("product_analysis", "product", productID)
	}

	velocity := c.SalesVelocity(p.ID, c.params.DetailWindowDays)
	doi := DaysOfInventory(p.Stock, velocity.AvgDailySales)

	a := domain.ProductAnalysis{
		Product:        p,
		Velocity:       velocity,
		UnitsSold30:    c.SalesVelocity(p.ID, c.params.SummaryWindowDays).UnitsSold,
		DOI:            doi,
		InventoryValue: p.Cost.Mul(decimal.NewFromInt(int64(p.Stock))),
		Reorder:        c.Reorder(p, velocity.AvgDailySales),
		Daily:          c.dailySales(p.ID, c.params.DetailWindowDays),
		Monthly:        c.monthlySales(p.ID, 12),
		StockoutRisk:   !doi.Unbounded && doi.Days < stockoutRiskDays,
		Overstocked:    p.Stock > 0 && (doi.Unbounded || doi.Days > overstockDays),
	}
	if p.Price.IsPositive() {
		margin, _ := p.Price.Sub(p.Cost).Div(p.Price).Mul(decimal.NewFromInt(100)).Float64()
		a.GrossMarginPct = roundFloat(margin, 1)
	}
	return a, nil
}

// dailySales returns one point per day of the window, oldest first.
func (c *Calculator) dailySales(productID string, windowDays int) []domain.DailySales {
	start := c.windowStart(windowDays)
	byDay := make(map[string]int)
	for _, s := range c.sales[productID] {
		if c.inWindow(s.date, windowDays) {
			byDay[s.date.In(c.now.Location()).Format(time.DateOnly)] += s.quantity
		}
	}

	out := make([]domain.DailySales, 0, windowDays)
	for i := 0; i < windowDays; i++ {
		key := start.AddDate(0, 0, i).Format(time.DateOnly)
		out = append(out, domain.DailySales{Date: key, Quantity: byDay[key]})
	}
	return out
}

// monthlySales returns up to limit months that had sales, newest first.
func (c *Calculator) monthlySales(productID string, limit int) []domain.MonthlySales {
	byMonth := make(map[string]*domain.MonthlySales)
	for _, s := range c.sales[productID] {
		key := s.date.In(c.now.Location()).Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &domain.MonthlySales{Month: key, Revenue: decimal.Zero}
			byMonth[key] = m
		}
		m.Quantity += s.quantity
		m.Revenue = m.Revenue.Add(s.revenue)
	}

	out := make([]domain.MonthlySales, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
