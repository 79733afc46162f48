// Package seed builds the demo dataset loaded into an empty ledger. Dates are
// relative to the supplied clock reading so the analytics views stay populated.
package seed

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	historicalOrders = 150
	historyDays      = 180
	orderSeed        = 1000
)

type productRow struct {
	id, name, sku, category, supplier string
	price, cost                       string
	stock, reorder, restockDaysAgo    int
}

var products = []productRow{
	{"1", "Wireless Headphones", "WH-001", "Electronics", "TechSounds Inc.", "129.99", "85.00", 45, 20, 47},
	{"2", "Ergonomic Office Chair", "EC-202", "Furniture", "ComfySeating", "259.50", "150.00", 8, 10, 92},
	{"3", "Mechanical Keyboard", "MK-104", "Electronics", "KeyMasters", "89.99", "45.00", 120, 30, 22},
	{"4", "USB-C Docking Station", "UD-555", "Accessories", "Connex", "149.00", "90.00", 2, 15, 139},
	{"5", "27-inch 4K Monitor", "MN-400", "Electronics", "Visionary", "399.99", "280.00", 0, 5, 165},
	{"6", "Standing Desk Frame", "SD-101", "Furniture", "ComfySeating", "350.00", "210.00", 25, 10, 295},
	{"7", "Webcam 1080p", "WC-720", "Accessories", "Visionary", "49.99", "25.00", 200, 50, 31},
}

var locations = []domain.Location{
	{ID: "L1", Name: "Main Warehouse", Address: "123 Logistics Way, Industrial Park", Type: domain.LocationWarehouse},
	{ID: "L2", Name: "Downtown Store", Address: "456 Retail Blvd, City Center", Type: domain.LocationStore},
	{ID: "L3", Name: "Westside Depot", Address: "789 West Ave, Suburbia", Type: domain.LocationWarehouse},
}

var partition = []domain.LocationStock{
	{ProductID: "1", LocationID: "L1", Quantity: 30},
	{ProductID: "1", LocationID: "L2", Quantity: 15},
	{ProductID: "2", LocationID: "L1", Quantity: 8},
	{ProductID: "3", LocationID: "L1", Quantity: 100},
	{ProductID: "3", LocationID: "L2", Quantity: 20},
	{ProductID: "4", LocationID: "L2", Quantity: 2},
	{ProductID: "6", LocationID: "L1", Quantity: 20},
	{ProductID: "6", LocationID: "L3", Quantity: 5},
	{ProductID: "7", LocationID: "L1", Quantity: 150},
	{ProductID: "7", LocationID: "L2", Quantity: 50},
}

var suppliers = []domain.Supplier{
	{ID: "1", Name: "TechSounds Inc.", Contact: "Alice Smith", Email: "alice@techsounds.com"},
	{ID: "2", Name: "ComfySeating", Contact: "Bob Jones", Email: "sales@comfyseating.com"},
	{ID: "3", Name: "Visionary", Contact: "Carol Danvers", Email: "support@visionary.com"},
	{ID: "4", Name: "KeyMasters", Contact: "Dave Click", Email: "dave@keymasters.io"},
	{ID: "5", Name: "Connex", Contact: "Eve Wire", Email: "eve@connex.net"},
}

type poRow struct {
	id, supplierID             string
	placed, expected, received int
	productID                  string
	quantity                   int
	unitCost                   int64
}

var purchaseOrders = []poRow{
	{"PO-101", "1", 61, 52, 47, "1", 20, 100},
	{"PO-102", "1", 92, 86, 88, "1", 15, 100},
	{"PO-201", "2", 109, 99, 99, "2", 25, 200},
	{"PO-202", "2", 61, 47, 50, "6", 15, 200},
	{"PO-301", "3", 42, 37, 34, "5", 15, 300},
	{"PO-401", "4", 31, 27, 22, "3", 20, 60},
}

var customers = []string{"Acme Corp", "Global Tech", "Startup Hub", "Design Studio", "Freelancer John", "Cyberdyne", "Massive Dynamic"}

// Snapshot returns the demo dataset as a restorable snapshot.
func Snapshot(now time.Time) *domain.Snapshot {
	today := domain.StartOfDay(now)
	daysAgo := func(n int) time.Time { return today.AddDate(0, 0, -n) }

	snap := &domain.Snapshot{
		Schema:         domain.SnapshotSchema,
		TakenAt:        now,
		Locations:      append([]domain.Location(nil), locations...),
		LocationStocks: append([]domain.LocationStock(nil), partition...),
		Suppliers:      append([]domain.Supplier(nil), suppliers...),
	}

	byID := make(map[string]domain.Product, len(products))
	for _, row := range products {
		restock := daysAgo(row.restockDaysAgo)
		p := domain.Product{
			ID:              row.id,
			Name:            row.name,
			SKU:             row.sku,
			Category:        row.category,
			Price:           decimal.RequireFromString(row.price),
			Cost:            decimal.RequireFromString(row.cost),
			Stock:           row.stock,
			ReorderLevel:    row.reorder,
			Supplier:        row.supplier,
			Status:          domain.DeriveStatus(row.stock, row.reorder),
			LastRestockDate: &restock,
		}
		snap.Products = append(snap.Products, p)
		byID[p.ID] = p
	}

	snap.Orders = historicalOrderSet(snap.Products, today)

	supplierNames := make(map[string]string, len(suppliers))
	for _, s := range suppliers {
		supplierNames[s.ID] = s.Name
	}
	for _, row := range purchaseOrders {
		received := daysAgo(row.received)
		po := domain.PurchaseOrder{
			ID:                   row.id,
			SupplierID:           row.supplierID,
			SupplierName:         supplierNames[row.supplierID],
			Date:                 daysAgo(row.placed),
			ExpectedDeliveryDate: daysAgo(row.expected),
			ReceivedDate:         &received,
			Status:               domain.POReceived,
			Items: []domain.PurchaseOrderItem{{
				ProductID:   row.productID,
				ProductName: byID[row.productID].Name,
				Quantity:    row.quantity,
				UnitCost:    decimal.NewFromInt(row.unitCost),
			}},
		}
		po.TotalCost = po.ComputeTotalCost()
		snap.PurchaseOrders = append(snap.PurchaseOrders, po)
	}

	headphones := byID["1"]
	ret := domain.Return{
		ID:       "RET-001",
		OrderID:  snap.Orders[len(snap.Orders)-1].ID,
		Customer: snap.Orders[len(snap.Orders)-1].Customer,
		Date:     daysAgo(4),
		Status:   domain.ReturnProcessed,
		Items: []domain.ReturnItem{{
			ProductID:    headphones.ID,
			ProductName:  headphones.Name,
			Quantity:     1,
			Reason:       domain.ReasonDefective,
			Condition:    domain.ConditionOpened,
			Action:       domain.ActionDiscard,
			RefundAmount: headphones.Price,
		}},
	}
	ret.TotalRefund = ret.ComputeTotalRefund()
	snap.Returns = []domain.Return{ret}

	latest := snap.Orders[len(snap.Orders)-1]
	snap.Activities = []domain.Activity{
		{ID: "1", Type: domain.ActivityOrder, Message: fmt.Sprintf("Order #%s shipped to Global Tech", snap.Orders[len(snap.Orders)-2].ID), Timestamp: now.Add(-24 * time.Hour)},
		{ID: "2", Type: domain.ActivitySystem, Message: "System maintenance scheduled for Sunday", Timestamp: now.Add(-5 * time.Hour)},
		{ID: "3", Type: domain.ActivityStock, Message: "Restocked 50 units of Mechanical Keyboard", Timestamp: now.Add(-2 * time.Hour)},
		{ID: "4", Type: domain.ActivityAlert, Message: "Low stock alert: USB-C Docking Station", Timestamp: now.Add(-1 * time.Hour)},
		{ID: "5", Type: domain.ActivityOrder, Message: fmt.Sprintf("New order #%s from %s", latest.ID, latest.Customer), Timestamp: now.Add(-10 * time.Minute)},
	}
	snap.Notifications = []domain.Notification{
		{ID: "4", Title: "Urgent: PO Overdue", Message: "PO #PO-102 from TechSounds Inc. is overdue by 3 days.", Type: domain.NotificationAlert, Timestamp: now.Add(-48 * time.Hour), Link: domain.LinkPurchaseOrders},
		{ID: "3", Title: "System Update", Message: "Stock ledger was successfully updated to v2.0.", Type: domain.NotificationSuccess, Timestamp: now.Add(-24 * time.Hour), Read: true},
		{ID: "2", Title: "New Order Received", Message: fmt.Sprintf("Order #%s from %s requires processing.", latest.ID, latest.Customer), Type: domain.NotificationInfo, Timestamp: now.Add(-2 * time.Hour), Link: "/orders"},
		{ID: "1", Title: "Low Stock Alert", Message: "Wireless Headphones stock (45) is approaching reorder level (20).", Type: domain.NotificationWarning, Timestamp: now.Add(-30 * time.Minute), Link: domain.LinkProducts},
	}
	snap.Tasks = []domain.Task{
		{ID: "T1", Title: "Contact TechSounds Supplier", Description: "Negotiate better rates for headphones", Assignee: "John Smith", DueDate: today.AddDate(0, 0, -5), Priority: domain.PriorityMedium, Status: domain.TaskInProgress},
		{ID: "T2", Title: "Update Safety Protocols", Description: "Warehouse safety guidelines update", Assignee: "Mike Johnson", DueDate: today.AddDate(0, 0, -10), Priority: domain.PriorityLow, Status: domain.TaskCompleted},
		{ID: "T3", Title: "Review Q3 Inventory", Description: "Analyze stock levels and prepare report", Assignee: "Jane Doe", DueDate: today.AddDate(0, 0, 5), Priority: domain.PriorityHigh, Status: domain.TaskPending},
	}
	return snap
}

// historicalOrderSet spreads orders over the last 180 days, oldest first. The
// generator is seeded so every run yields the same history.
func historicalOrderSet(catalog []domain.Product, today time.Time) []domain.Order {
	rng := rand.New(rand.NewSource(orderSeed))

	orders := make([]domain.Order, 0, historicalOrders)
	for i := 0; i < historicalOrders; i++ {
		date := today.AddDate(0, 0, -rng.Intn(historyDays))

		lines := rng.Intn(3) + 1
		items := make([]domain.OrderItem, 0, lines)
		for j := 0; j < lines; j++ {
			p := catalog[rng.Intn(len(catalog))]
			items = append(items, domain.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    rng.Intn(5) + 1,
				Price:       p.Price,
			})
		}

		status := domain.OrderDelivered
		if rng.Float64() <= 0.2 {
			status = domain.OrderPending
		}

		o := domain.Order{
			ID:       fmt.Sprintf("ORD-%d", 1000+i),
			Customer: customers[rng.Intn(len(customers))],
			Date:     date,
			Status:   status,
			Items:    items,
		}
		o.Total = o.ComputeTotal().Round(2)
		orders = append(orders, o)
	}

	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Date.Before(orders[j].Date) })
	return orders
}
