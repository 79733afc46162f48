package analytics

import (
	"math"
	"sort"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/shopspring/decimal"
)

type supplierKey struct {
	id   string
	name string
}

// SupplierPerformance aggregates lead time and on-time delivery over each
// supplier's Received purchase orders. Registered suppliers without
// deliveries are listed with zero metrics. Rows are ordered by average lead
// time, then name.
func (c *Calculator) SupplierPerformance() []domain.SupplierPerformance {
	rows := make([]*domain.SupplierPerformance, 0, len(c.snap.Suppliers))
	byKey := make(map[supplierKey]*domain.SupplierPerformance)
	onTime := make(map[*domain.SupplierPerformance]int)

	for _, s := range c.snap.Suppliers {
		row := &domain.SupplierPerformance{SupplierID: s.ID, SupplierName: s.Name, TotalSpend: decimal.Zero, LeadTimeHistory: []int{}}
		rows = append(rows, row)
		byKey[supplierKey{id: s.ID}] = row
		byKey[supplierKey{name: s.Name}] = row
	}

	received := make([]domain.PurchaseOrder, 0)
	for _, po := range c.snap.PurchaseOrders {
		if po.Status == domain.POReceived && po.ReceivedDate != nil {
			received = append(received, po)
		}
	}
	sort.SliceStable(received, func(i, j int) bool { return received[i].ReceivedDate.Before(*received[j].ReceivedDate) })

	for _, po := range received {
		row, ok := byKey[supplierKey{id: po.SupplierID}]
		if !ok || po.SupplierID == "" {
			row, ok = byKey[supplierKey{name: po.SupplierName}]
		}
		if !ok {
			row = &domain.SupplierPerformance{SupplierID: po.SupplierID, SupplierName: po.SupplierName, TotalSpend: decimal.Zero, LeadTimeHistory: []int{}}
			rows = append(rows, row)
			byKey[supplierKey{name: po.SupplierName}] = row
		}

		// 1. Lead time in whole days, floored at zero
		lead := int(math.Max(0, math.Floor(po.ReceivedDate.Sub(po.Date).Hours()/24)))

		// 2. On time when received no later than expected
		if !po.ReceivedDate.After(po.ExpectedDeliveryDate) {
			onTime[row]++
		}

		if row.ReceivedPOs == 0 || lead < row.MinLeadTime {
			row.MinLeadTime = lead
		}
		if lead > row.MaxLeadTime {
			row.MaxLeadTime = lead
		}
		row.ReceivedPOs++
		row.TotalSpend = row.TotalSpend.Add(po.TotalCost)
		row.LeadTimeHistory = append(row.LeadTimeHistory, lead)
	}

	out := make([]domain.SupplierPerformance, 0, len(rows))
	for _, row := range rows {
		if row.ReceivedPOs > 0 {
			sum := 0
			for _, lt := range row.LeadTimeHistory {
				sum += lt
			}
			row.AvgLeadTime = roundFloat(float64(sum)/float64(row.ReceivedPOs), 1)
			row.OnTimeRate = roundFloat(float64(onTime[row])/float64(row.ReceivedPOs)*100, 0)
		}
		out = append(out, *row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].ReceivedPOs == 0) != (out[j].ReceivedPOs == 0) {
			return out[i].ReceivedPOs > 0
		}
		if out[i].AvgLeadTime != out[j].AvgLeadTime {
			return out[i].AvgLeadTime < out[j].AvgLeadTime
		}
		return out[i].SupplierName < out[j].SupplierName
	})
	return out
}

// OpenPurchaseOrders lists Pending and Delayed POs, oldest first.
func (c *Calculator) OpenPurchaseOrders() []domain.POAging {
	out := make([]domain.POAging, 0)
	for _, po := range c.snap.PurchaseOrders {
		if !po.Status.Open() {
			continue
		}
		qty := 0
		for _, item := range po.Items {
			qty += item.Quantity
		}
		daysOpen := max(0, domain.DaysBetween(po.Date, c.now))
		out = append(out, domain.POAging{
			PONumber:     po.ID,
			SupplierName: po.SupplierName,
			Status:       po.Status,
			Quantity:     qty,
			Value:        po.TotalCost,
			DaysOpen:     daysOpen,
			Overdue:      daysOpen > c.params.OverduePOAfterDays,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysOpen > out[j].DaysOpen })
	return out
}
