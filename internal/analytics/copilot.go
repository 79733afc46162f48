package analytics

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	deadStockDays        = 60
	priceReviewStock     = 50
	priceReviewDays      = 30
	reorderHeadroom      = 20
	fastMoverShare       = 0.1
	moverHistoryBuckets  = 5
	moverBucketDays      = 7
	supplierMinReceived  = 5
	supplierDelayFactor  = 1.5
	deadStockFallbackMos = 4
)

// CopilotInsights runs the rule set over the snapshot and drops every insight
// whose id the snapshot lists as dismissed. Insights come out grouped by
// rule: reorder, dead stock, fast movers, supplier delays, then pricing.
func (c *Calculator) CopilotInsights() []domain.CopilotInsight {
	out := make([]domain.CopilotInsight, 0)
	out = append(out, c.reorderInsights()...)
	out = append(out, c.deadStockInsights()...)
	out = append(out, c.fastMoverInsights()...)
	out = append(out, c.supplierDelayInsights()...)
	out = append(out, c.priceInsights()...)

	dismissed := c.snap.DismissedInsights
	if len(dismissed) == 0 {
		return out
	}
	return slices.DeleteFunc(out, func(in domain.CopilotInsight) bool {
		return slices.Contains(dismissed, in.ID)
	})
}

func (c *Calculator) reorderInsights() []domain.CopilotInsight {
	var out []domain.CopilotInsight
	for _, p := range c.snap.Products {
		if p.Stock > p.ReorderLevel {
			continue
		}
		out = append(out, domain.CopilotInsight{
			ID:          "reorder-" + p.ID,
			Type:        domain.InsightReorder,
			Title:       "Restock Needed",
			Description: fmt.Sprintf("%s is below reorder level (%d). Current: %d.", p.Name, p.ReorderLevel, p.Stock),
			Action:      "Create PO",
			ActionLink:  domain.LinkPurchaseOrders,
			Metric:      fmt.Sprintf("%d suggested", p.ReorderLevel-p.Stock+reorderHeadroom),
		})
	}
	return out
}

// lastActivity is the last sale, else the last restock, else the first of
// the month a few months back.
func (c *Calculator) lastActivity(p domain.Product) time.Time {
	if last, ok := c.lastSold(p.ID); ok {
		return last
	}
	if p.LastRestockDate != nil {
		return *p.LastRestockDate
	}
	y, m, _ := c.now.Date()
	return time.Date(y, m-deadStockFallbackMos, 1, 0, 0, 0, 0, c.now.Location())
}

func (c *Calculator) deadStockInsights() []domain.CopilotInsight {
	var out []domain.CopilotInsight
	for _, p := range c.snap.Products {
		if p.Stock <= 0 {
			continue
		}
		inactive := domain.DaysBetween(c.lastActivity(p), c.now)
		if inactive <= deadStockDays {
			continue
		}
		tiedUp := p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
		out = append(out, domain.CopilotInsight{
			ID:          "dead-" + p.ID,
			Type:        domain.InsightDeadStock,
			Title:       "Dead Stock Alert",
			Description: fmt.Sprintf("%s hasn't moved in %d days.", p.Name, inactive),
			Action:      "Discount Item",
			ActionLink:  domain.LinkProducts,
			Metric:      tiedUp.StringFixed(0) + " tied up",
		})
	}
	return out
}

// fastMoverInsights flags the top tenth (rounded up) of sold products by
// lifetime units. Ties break on product id.
func (c *Calculator) fastMoverInsights() []domain.CopilotInsight {
	type ranked struct {
		id    string
		units int
	}
	ranking := make([]ranked, 0, len(c.sales))
	for id, sales := range c.sales {
		units := 0
		for _, s := range sales {
			units += s.quantity
		}
		ranking = append(ranking, ranked{id: id, units: units})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].units != ranking[j].units {
			return ranking[i].units > ranking[j].units
		}
		return ranking[i].id < ranking[j].id
	})
	top := int(math.Ceil(float64(len(ranking)) * fastMoverShare))

	names := make(map[string]string, len(c.snap.Products))
	for _, p := range c.snap.Products {
		names[p.ID] = p.Name
	}

	var out []domain.CopilotInsight
	for _, r := range ranking[:top] {
		name, ok := names[r.id]
		if !ok {
			continue
		}
		out = append(out, domain.CopilotInsight{
			ID:          "fast-" + r.id,
			Type:        domain.InsightMover,
			Title:       "Fast Mover",
			Description: fmt.Sprintf("%s is performing in the top 10%%.", name),
			Action:      "View Analysis",
			ActionLink:  "/analytics",
			Metric:      "High Demand",
			History:     c.weeklyUnits(r.id),
		})
	}
	return out
}

// weeklyUnits buckets recent units sold into trailing seven-day periods,
// oldest first. The last bucket ends today.
func (c *Calculator) weeklyUnits(productID string) []int {
	history := make([]int, moverHistoryBuckets)
	for _, s := range c.sales[productID] {
		if s.date.After(c.now) {
			continue
		}
		age := domain.DaysBetween(s.date, c.now) / moverBucketDays
		if age < moverHistoryBuckets {
			history[moverHistoryBuckets-1-age] += s.quantity
		}
	}
	return history
}

func leadDays(po domain.PurchaseOrder) float64 {
	return math.Max(0, po.ReceivedDate.Sub(po.Date).Hours()/24)
}

// supplierDelayInsights compares each supplier's mean lead time with the
// mean over all received POs. It stays quiet until enough deliveries exist
// for the comparison to mean anything.
func (c *Calculator) supplierDelayInsights() []domain.CopilotInsight {
	var received []domain.PurchaseOrder
	for _, po := range c.snap.PurchaseOrders {
		if po.Status == domain.POReceived && po.ReceivedDate != nil {
			received = append(received, po)
		}
	}
	if len(received) <= supplierMinReceived {
		return nil
	}

	total := 0.0
	for _, po := range received {
		total += leadDays(po)
	}
	globalAvg := total / float64(len(received))

	var out []domain.CopilotInsight
	for _, s := range c.snap.Suppliers {
		sum, n := 0.0, 0
		for _, po := range received {
			if po.SupplierID == s.ID || (po.SupplierID == "" && po.SupplierName == s.Name) {
				sum += leadDays(po)
				n++
			}
		}
		if n == 0 {
			continue
		}
		avg := sum / float64(n)
		if avg <= globalAvg*supplierDelayFactor {
			continue
		}
		out = append(out, domain.CopilotInsight{
			ID:    "supp-" + s.ID,
			Type:  domain.InsightSupplier,
			Title: "Supplier Delay Risk",
			Description: fmt.Sprintf("%s lead time (%.0fd) is significantly higher than avg (%.0fd).",
				s.Name, math.Round(avg), math.Round(globalAvg)),
			Action:     "Find Alternative",
			ActionLink: "/suppliers",
		})
	}
	return out
}

func (c *Calculator) soldWithin(productID string, days int) bool {
	for _, s := range c.sales[productID] {
		if s.date.After(c.now) {
			continue
		}
		if domain.DaysBetween(s.date, c.now) <= days {
			return true
		}
	}
	return false
}

func (c *Calculator) priceInsights() []domain.CopilotInsight {
	var out []domain.CopilotInsight
	for _, p := range c.snap.Products {
		if p.Stock <= priceReviewStock || c.soldWithin(p.ID, priceReviewDays) {
			continue
		}
		out = append(out, domain.CopilotInsight{
			ID:          "price-" + p.ID,
			Type:        domain.InsightPrice,
			Title:       "Price Optimization",
			Description: fmt.Sprintf("%s has high stock but no sales in 30 days.", p.Name),
			Action:      "Edit Price",
			ActionLink:  domain.LinkProducts,
			Metric:      "Review Pricing",
		})
	}
	return out
}
