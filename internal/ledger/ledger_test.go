package ledger

import (
	"testing"
	"time"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)

type fixture struct {
	products  []domain.Product
	locations []domain.Location
	stocks    []domain.LocationStock
	orders    []domain.Order
	pos       []domain.PurchaseOrder
}

func newLedger(t *testing.T, f fixture) *Ledger {
	t.Helper()
	l := New(WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, l.Restore(&domain.Snapshot{
		Schema:         domain.SnapshotSchema,
		Products:       f.products,
		Locations:      f.locations,
		LocationStocks: f.stocks,
		Orders:         f.orders,
		PurchaseOrders: f.pos,
	}))
	return l
}

func product(id string, stock, reorder int) domain.Product {
	return domain.Product{
		ID:           id,
		Name:         "Product " + id,
		SKU:          "SKU-" + id,
		Category:     "Electronics",
		Price:        decimal.NewFromInt(100),
		Cost:         decimal.NewFromInt(60),
		Stock:        stock,
		ReorderLevel: reorder,
	}
}

func warehouse(id string) domain.Location {
	return domain.Location{ID: id, Name: "Warehouse " + id, Type: domain.LocationWarehouse}
}

func store(id string) domain.Location {
	return domain.Location{ID: id, Name: "Store " + id, Type: domain.LocationStore}
}

func orderFor(id, productID string, qty int) domain.Order {
	return domain.Order{
		ID:       id,
		Customer: "Alice",
		Items: []domain.OrderItem{
			{ProductID: productID, Quantity: qty, Price: decimal.NewFromInt(100)},
		},
	}
}

func mustProduct(t *testing.T, l *Ledger, id string) domain.Product {
	t.Helper()
	p, err := l.Product(id)
	require.NoError(t, err)
	return p
}

func qtyAt(l *Ledger, productID, locationID string) int {
	for _, ls := range l.LocationStocks(productID) {
		if ls.LocationID == locationID {
			return ls.Quantity
		}
	}
	return 0
}

func assertInvariants(t *testing.T, l *Ledger) {
	t.Helper()
	for _, p := range l.Products() {
		assert.GreaterOrEqual(t, p.Stock, 0, "stock of %s", p.ID)
		assert.Equal(t, domain.DeriveStatus(p.Stock, p.ReorderLevel), p.Status, "status of %s", p.ID)
	}
	for _, ls := range l.LocationStocks("") {
		assert.GreaterOrEqual(t, ls.Quantity, 0, "partition %s@%s", ls.ProductID, ls.LocationID)
	}
}

func TestFulfillOrder_DrainsToOutOfStock(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 5, 10)},
		locations: []domain.Location{warehouse("L1")},
		stocks:    []domain.LocationStock{{ProductID: "p1", LocationID: "L1", Quantity: 5}},
	})

	_, err := l.FulfillOrder(orderFor("ORD-1", "p1", 5))
	require.NoError(t, err)

	p := mustProduct(t, l, "p1")
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, domain.StatusOutOfStock, p.Status)
	assert.Equal(t, 0, qtyAt(l, "p1", "L1"))

	notes := l.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationAlert, notes[0].Type)
	assert.Equal(t, domain.LinkProducts, notes[0].Link)
	assertInvariants(t, l)
}

func TestFulfillOrder_CrossesLowStockThreshold(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 25, 20)},
		locations: []domain.Location{warehouse("L1")},
		stocks:    []domain.LocationStock{{ProductID: "p1", LocationID: "L1", Quantity: 25}},
	})

	_, err := l.FulfillOrder(orderFor("ORD-1", "p1", 10))
	require.NoError(t, err)

	p := mustProduct(t, l, "p1")
	assert.Equal(t, 15, p.Stock)
	assert.Equal(t, domain.StatusLowStock, p.Status)

	notes := l.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Low Stock Warning", notes[0].Title)

	// already low: a further sale does not repeat the warning
	_, err = l.FulfillOrder(orderFor("ORD-2", "p1", 1))
	require.NoError(t, err)
	assert.Len(t, l.Notifications(), 1)
}

func TestFulfillOrder_DeductsLargestLocationFirst(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 10, 2)},
		locations: []domain.Location{warehouse("L1"), store("L2")},
		stocks: []domain.LocationStock{
			{ProductID: "p1", LocationID: "L1", Quantity: 3},
			{ProductID: "p1", LocationID: "L2", Quantity: 7},
		},
	})

	_, err := l.FulfillOrder(orderFor("ORD-1", "p1", 8))
	require.NoError(t, err)

	assert.Equal(t, 2, mustProduct(t, l, "p1").Stock)
	assert.Equal(t, 0, qtyAt(l, "p1", "L2"))
	assert.Equal(t, 2, qtyAt(l, "p1", "L1"))
}

func TestFulfillOrder_InsufficientStockChangesNothing(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 4, 1), product("p2", 50, 5)},
		locations: []domain.Location{warehouse("L1")},
		stocks: []domain.LocationStock{
			{ProductID: "p1", LocationID: "L1", Quantity: 4},
			{ProductID: "p2", LocationID: "L1", Quantity: 50},
		},
	})
	before := l.Snapshot()

	order := domain.Order{
		ID: "ORD-1",
		Items: []domain.OrderItem{
			{ProductID: "p2", Quantity: 10},
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p1", Quantity: 2},
		},
	}
	_, err := l.FulfillOrder(order)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	after := l.Snapshot()
	assert.Equal(t, before.Products, after.Products)
	assert.Equal(t, before.LocationStocks, after.LocationStocks)
	assert.Empty(t, l.Orders())
	assert.Empty(t, l.Activities())
}

func TestFulfillOrder_RejectsBadInput(t *testing.T) {
	l := newLedger(t, fixture{products: []domain.Product{product("p1", 10, 1)}})

	tests := []struct {
		name  string
		order domain.Order
		want  error
	}{
		{"no items", domain.Order{ID: "A"}, domain.ErrInvalidInput},
		{"zero quantity", orderFor("B", "p1", 0), domain.ErrInvalidQuantity},
		{"negative quantity", orderFor("C", "p1", -2), domain.ErrInvalidQuantity},
		{"cancelled on creation", domain.Order{ID: "D", Status: domain.OrderCancelled, Items: orderFor("", "p1", 1).Items}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.FulfillOrder(tt.order)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 10, mustProduct(t, l, "p1").Stock)
}

func TestFulfillOrder_SkipsUnknownProductAndIgnoresDuplicate(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 10, 1)},
		locations: []domain.Location{warehouse("L1")},
		stocks:    []domain.LocationStock{{ProductID: "p1", LocationID: "L1", Quantity: 10}},
	})

	order := domain.Order{
		ID: "ORD-1",
		Items: []domain.OrderItem{
			{ProductID: "ghost", Quantity: 99, Price: decimal.NewFromInt(1)},
			{ProductID: "p1", Quantity: 4, Price: decimal.NewFromInt(100)},
		},
	}
	got, err := l.FulfillOrder(order)
	require.NoError(t, err)
	assert.Equal(t, 6, mustProduct(t, l, "p1").Stock)
	assert.Equal(t, fixedNow, got.Date)
	assert.Equal(t, domain.OrderPending, got.Status)
	assert.True(t, decimal.NewFromInt(499).Equal(got.Total))

	_, err = l.FulfillOrder(order)
	require.NoError(t, err)
	assert.Equal(t, 6, mustProduct(t, l, "p1").Stock)
	assert.Len(t, l.Orders(), 1)
	assert.Len(t, l.Activities(), 1)
}

func TestUpdateOrderStatus(t *testing.T) {
	l := newLedger(t, fixture{products: []domain.Product{product("p1", 10, 1)}})
	_, err := l.FulfillOrder(orderFor("ORD-1", "p1", 1))
	require.NoError(t, err)

	o, err := l.UpdateOrderStatus("ORD-1", domain.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, o.Status)

	_, err = l.UpdateOrderStatus("ORD-1", domain.OrderPending)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = l.UpdateOrderStatus("ORD-1", domain.OrderDelivered)
	require.NoError(t, err)
	_, err = l.UpdateOrderStatus("ORD-1", domain.OrderCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = l.UpdateOrderStatus("missing", domain.OrderShipped)
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
	assert.Equal(t, 9, mustProduct(t, l, "p1").Stock)
}

func TestTransferStock_InsufficientSource(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 5, 1)},
		locations: []domain.Location{warehouse("L1"), store("L2")},
		stocks:    []domain.LocationStock{{ProductID: "p1", LocationID: "L1", Quantity: 5}},
	})

	err := l.TransferStock("p1", "L1", "L2", 10, "rebalance")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, []domain.LocationStock{{ProductID: "p1", LocationID: "L1", Quantity: 5}}, l.LocationStocks("p1"))
	notes := l.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Transfer Failed", notes[0].Title)
	assert.Equal(t, "Insufficient stock in source location.", notes[0].Message)
	assert.Equal(t, domain.NotificationAlert, notes[0].Type)
	assert.Empty(t, l.Activities())
}

func TestTransferStock_ConservesAggregate(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 20, 1)},
		locations: []domain.Location{warehouse("L1"), store("L2")},
		stocks:    []domain.LocationStock{{ProductID: "p1", LocationID: "L1", Quantity: 20}},
	})

	require.NoError(t, l.TransferStock("p1", "L1", "L2", 8, "store restock"))

	assert.Equal(t, 20, mustProduct(t, l, "p1").Stock)
	assert.Equal(t, 12, qtyAt(l, "p1", "L1"))
	assert.Equal(t, 8, qtyAt(l, "p1", "L2"))

	acts := l.Activities()
	require.Len(t, acts, 1)
	assert.Equal(t, domain.ActivityTransfer, acts[0].Type)
	assert.Contains(t, acts[0].Message, "Reason: store restock")
}

func TestTransferStock_Validation(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 20, 1)},
		locations: []domain.Location{warehouse("L1"), store("L2")},
		stocks:    []domain.LocationStock{{ProductID: "p1", LocationID: "L1", Quantity: 20}},
	})

	assert.ErrorIs(t, l.TransferStock("p1", "L1", "L1", 1, ""), domain.ErrSameLocation)
	assert.ErrorIs(t, l.TransferStock("p1", "L1", "L2", 0, ""), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, l.TransferStock("nope", "L1", "L2", 1, ""), domain.ErrUnknownEntity)
	assert.ErrorIs(t, l.TransferStock("p1", "L1", "L9", 1, ""), domain.ErrUnknownEntity)
	assert.Equal(t, 20, qtyAt(l, "p1", "L1"))
	assert.Empty(t, l.Notifications())
}

func TestReceivePurchaseOrder_PrefersWarehouse(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 2, 5)},
		locations: []domain.Location{store("L2"), warehouse("L1")},
		pos: []domain.PurchaseOrder{{
			ID:           "PO-1",
			SupplierName: "TechGlobal",
			Date:         fixedNow.AddDate(0, 0, -5),
			Status:       domain.POPending,
			Items:        []domain.PurchaseOrderItem{{ProductID: "p1", Quantity: 30, UnitCost: decimal.NewFromInt(50)}},
		}},
	})

	po, err := l.ReceivePurchaseOrder("PO-1")
	require.NoError(t, err)

	p := mustProduct(t, l, "p1")
	assert.Equal(t, 32, p.Stock)
	assert.Equal(t, domain.StatusInStock, p.Status)
	assert.Equal(t, 30, qtyAt(l, "p1", "L1"))
	assert.Equal(t, 0, qtyAt(l, "p1", "L2"))
	assert.Equal(t, domain.POReceived, po.Status)
	require.NotNil(t, po.ReceivedDate)
	assert.Equal(t, startOfDay(fixedNow), *po.ReceivedDate)
	require.NotNil(t, p.LastRestockDate)
	assert.Equal(t, startOfDay(fixedNow), *p.LastRestockDate)
	assert.Len(t, l.Activities(), 1)

	// receiving again is a no-op
	_, err = l.ReceivePurchaseOrder("PO-1")
	require.NoError(t, err)
	assert.Equal(t, 32, mustProduct(t, l, "p1").Stock)
	assert.Equal(t, 30, qtyAt(l, "p1", "L1"))
	assert.Len(t, l.Activities(), 1)
	assert.Len(t, l.Notifications(), 1)

	_, err = l.ReceivePurchaseOrder("PO-404")
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
}

func TestReceivePurchaseOrder_NoLocations(t *testing.T) {
	l := newLedger(t, fixture{
		products: []domain.Product{product("p1", 0, 5)},
		pos: []domain.PurchaseOrder{{
			ID: "PO-1", SupplierName: "S", Date: fixedNow, Status: domain.PODelayed,
			Items: []domain.PurchaseOrderItem{{ProductID: "p1", Quantity: 12}},
		}},
	})

	_, err := l.ReceivePurchaseOrder("PO-1")
	require.NoError(t, err)
	assert.Equal(t, 12, mustProduct(t, l, "p1").Stock)
	assert.Empty(t, l.LocationStocks("p1"))
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	l := newLedger(t, fixture{products: []domain.Product{product("p1", 0, 5)}})
	_, err := l.AddSupplier(domain.Supplier{ID: "S1", Name: "TechGlobal"})
	require.NoError(t, err)

	po, err := l.AddPurchaseOrder(domain.PurchaseOrder{
		ID:         "PO-9",
		SupplierID: "S1",
		Items:      []domain.PurchaseOrderItem{{ProductID: "p1", Quantity: 10, UnitCost: decimal.NewFromInt(7)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "TechGlobal", po.SupplierName)
	assert.Equal(t, "Product p1", po.Items[0].ProductName)
	assert.Equal(t, domain.POPending, po.Status)
	assert.Equal(t, startOfDay(fixedNow).AddDate(0, 0, DefaultSupplierLeadDays), po.ExpectedDeliveryDate)
	assert.True(t, decimal.NewFromInt(70).Equal(po.TotalCost))

	_, err = l.AddPurchaseOrder(po)
	assert.ErrorIs(t, err, domain.ErrDuplicateOperation)
	_, err = l.AddPurchaseOrder(domain.PurchaseOrder{ID: "PO-Y", SupplierName: "S",
		Items: []domain.PurchaseOrderItem{{ProductID: "p1", Quantity: 1}, {ProductID: "ghost", Quantity: 4}}})
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
	assert.Len(t, l.PurchaseOrders(), 1, "nothing recorded for a line with an unknown product")
	_, err = l.AddPurchaseOrder(domain.PurchaseOrder{ID: "PO-X", SupplierName: "S", Status: domain.POReceived,
		Items: []domain.PurchaseOrderItem{{ProductID: "p1", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	po, err = l.MarkPurchaseOrderDelayed("PO-9")
	require.NoError(t, err)
	assert.Equal(t, domain.PODelayed, po.Status)

	po, err = l.ReceivePurchaseOrder("PO-9")
	require.NoError(t, err)
	assert.Equal(t, domain.POReceived, po.Status)

	_, err = l.MarkPurchaseOrderDelayed("PO-9")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 10, mustProduct(t, l, "p1").Stock)
}

func TestCheckOverduePurchaseOrders_DedupesPerDay(t *testing.T) {
	now := fixedNow
	l := New(WithClock(func() time.Time { return now }))
	require.NoError(t, l.Restore(&domain.Snapshot{
		Schema: domain.SnapshotSchema,
		PurchaseOrders: []domain.PurchaseOrder{
			{ID: "PO-old", SupplierName: "A", Date: fixedNow.AddDate(0, 0, -8), Status: domain.POPending},
			{ID: "PO-late", SupplierName: "B", Date: fixedNow.AddDate(0, 0, -30), Status: domain.PODelayed},
			{ID: "PO-edge", SupplierName: "C", Date: fixedNow.AddDate(0, 0, -7), Status: domain.POPending},
			{ID: "PO-done", SupplierName: "D", Date: fixedNow.AddDate(0, 0, -40), Status: domain.POReceived},
		},
	}))

	raised, err := l.CheckOverduePurchaseOrders(7)
	require.NoError(t, err)
	assert.Equal(t, 2, raised)

	raised, err = l.CheckOverduePurchaseOrders(7)
	require.NoError(t, err)
	assert.Zero(t, raised)
	assert.Len(t, l.Notifications(), 2)

	now = fixedNow.AddDate(0, 0, 1)
	raised, err = l.CheckOverduePurchaseOrders(7)
	require.NoError(t, err)
	assert.Equal(t, 3, raised)
}

func TestDeleteLocation_CascadesPartition(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 10, 1), product("p2", 5, 1)},
		locations: []domain.Location{warehouse("L"), store("S")},
		stocks: []domain.LocationStock{
			{ProductID: "p1", LocationID: "L", Quantity: 10},
			{ProductID: "p2", LocationID: "L", Quantity: 5},
		},
	})

	require.NoError(t, l.DeleteLocation("L"))

	assert.Empty(t, l.LocationStocks(""))
	assert.Equal(t, 10, mustProduct(t, l, "p1").Stock)
	assert.Equal(t, 5, mustProduct(t, l, "p2").Stock)
	assert.Len(t, l.Locations(), 1)

	drift := l.PartitionDrift()
	require.Len(t, drift, 2)
	assert.Equal(t, domain.PartitionDrift{ProductID: "p1", Stock: 10, Allocated: 0, Unassigned: 10}, drift[0])

	assert.ErrorIs(t, l.DeleteLocation("L"), domain.ErrUnknownEntity)
}

func TestProcessReturn(t *testing.T) {
	setup := func(t *testing.T) *Ledger {
		l := newLedger(t, fixture{
			products:  []domain.Product{product("p1", 3, 5)},
			locations: []domain.Location{store("S1"), warehouse("W1")},
			stocks:    []domain.LocationStock{{ProductID: "p1", LocationID: "W1", Quantity: 3}},
			orders:    []domain.Order{{ID: "ORD-1", Customer: "Bob", Status: domain.OrderDelivered, Date: fixedNow}},
		})
		return l
	}

	t.Run("restock credits first location", func(t *testing.T) {
		l := setup(t)
		ret, err := l.ProcessReturn(domain.Return{
			OrderID: "ORD-1",
			Items: []domain.ReturnItem{
				{ProductID: "p1", Quantity: 4, Action: domain.ActionRestock, RefundAmount: decimal.NewFromInt(40)},
				{ProductID: "p1", Quantity: 2, Action: domain.ActionDiscard, RefundAmount: decimal.NewFromInt(20)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ReturnProcessed, ret.Status)
		assert.Equal(t, "Bob", ret.Customer)
		assert.True(t, decimal.NewFromInt(60).Equal(ret.TotalRefund))

		p := mustProduct(t, l, "p1")
		assert.Equal(t, 7, p.Stock)
		assert.Equal(t, domain.StatusInStock, p.Status)
		assert.Equal(t, 4, qtyAt(l, "p1", "S1"))
		assert.Equal(t, domain.ActivityReturn, l.Activities()[0].Type)
	})

	t.Run("unknown order", func(t *testing.T) {
		l := setup(t)
		_, err := l.ProcessReturn(domain.Return{OrderID: "nope", Items: []domain.ReturnItem{{ProductID: "p1", Quantity: 1}}})
		assert.ErrorIs(t, err, domain.ErrUnknownEntity)
	})

	t.Run("pending then approved", func(t *testing.T) {
		l := setup(t)
		ret, err := l.ProcessReturn(domain.Return{
			ID: "RET-1", OrderID: "ORD-1", Status: domain.ReturnPending,
			Items: []domain.ReturnItem{{ProductID: "p1", Quantity: 2, Action: domain.ActionRestock}},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ReturnPending, ret.Status)
		assert.Equal(t, 3, mustProduct(t, l, "p1").Stock)

		ret, err = l.ResolveReturn("RET-1", true)
		require.NoError(t, err)
		assert.Equal(t, domain.ReturnProcessed, ret.Status)
		assert.Equal(t, 5, mustProduct(t, l, "p1").Stock)

		_, err = l.ResolveReturn("RET-1", false)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		_, err = l.ProcessReturn(domain.Return{ID: "RET-1", OrderID: "ORD-1", Items: []domain.ReturnItem{{ProductID: "p1", Quantity: 1}}})
		assert.ErrorIs(t, err, domain.ErrDuplicateOperation)
	})

	t.Run("pending then rejected", func(t *testing.T) {
		l := setup(t)
		_, err := l.ProcessReturn(domain.Return{
			ID: "RET-2", OrderID: "ORD-1", Status: domain.ReturnPending,
			Items: []domain.ReturnItem{{ProductID: "p1", Quantity: 2, Action: domain.ActionRestock}},
		})
		require.NoError(t, err)
		ret, err := l.ResolveReturn("RET-2", false)
		require.NoError(t, err)
		assert.Equal(t, domain.ReturnRejected, ret.Status)
		assert.Equal(t, 3, mustProduct(t, l, "p1").Stock)
	})
}

func TestWriteOffProduct(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 12, 5)},
		locations: []domain.Location{warehouse("L1"), store("L2")},
		stocks: []domain.LocationStock{
			{ProductID: "p1", LocationID: "L1", Quantity: 4},
			{ProductID: "p1", LocationID: "L2", Quantity: 8},
		},
	})

	assert.ErrorIs(t, l.WriteOffProduct("p1", 13, "lost"), domain.ErrInsufficientStock)
	assert.ErrorIs(t, l.WriteOffProduct("p1", 0, "lost"), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, l.WriteOffProduct("px", 1, "lost"), domain.ErrUnknownEntity)
	assert.Equal(t, 12, mustProduct(t, l, "p1").Stock)

	require.NoError(t, l.WriteOffProduct("p1", 9, "water damage"))

	p := mustProduct(t, l, "p1")
	assert.Equal(t, 3, p.Stock)
	assert.Equal(t, domain.StatusLowStock, p.Status)
	assert.Equal(t, 0, qtyAt(l, "p1", "L2"))
	assert.Equal(t, 3, qtyAt(l, "p1", "L1"))

	acts := l.Activities()
	require.Len(t, acts, 1)
	assert.Equal(t, "Write-off: 9 units of Product p1. Reason: water damage", acts[0].Message)
	require.Len(t, l.Notifications(), 1)
}

func TestAddProduct_Defaults(t *testing.T) {
	l := newLedger(t, fixture{locations: []domain.Location{store("S1"), warehouse("W1")}})

	p, err := l.AddProduct(domain.Product{
		ID: "p9", Name: "Desk Lamp", SKU: "LMP-1", Price: decimal.NewFromFloat(45.5), Stock: 40, ReorderLevel: 10,
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromFloat(27.3).Equal(p.Cost), "cost was %s", p.Cost)
	require.NotNil(t, p.LastRestockDate)
	assert.Equal(t, startOfDay(fixedNow), *p.LastRestockDate)
	assert.Equal(t, domain.StatusInStock, p.Status)
	assert.Equal(t, []domain.LocationStock{{ProductID: "p9", LocationID: "S1", Quantity: 40}}, l.LocationStocks("p9"))

	_, err = l.AddProduct(domain.Product{ID: "p10", Name: "Other", SKU: "lmp-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateOperation)
	_, err = l.AddProduct(domain.Product{ID: "p9", Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrDuplicateOperation)
	_, err = l.AddProduct(domain.Product{Name: "Bad", Stock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestUpdateProduct_TrimsPartition(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 30, 5)},
		locations: []domain.Location{warehouse("L1"), store("L2")},
		stocks: []domain.LocationStock{
			{ProductID: "p1", LocationID: "L1", Quantity: 10},
			{ProductID: "p1", LocationID: "L2", Quantity: 20},
		},
	})

	p := mustProduct(t, l, "p1")
	p.Stock = 4
	p.Cost = decimal.Zero
	updated, err := l.UpdateProduct(p)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusLowStock, updated.Status)
	assert.True(t, decimal.NewFromInt(60).Equal(updated.Cost))
	assert.Equal(t, 4, qtyAt(l, "p1", "L1"))
	assert.Equal(t, 0, qtyAt(l, "p1", "L2"))
	assert.Empty(t, l.PartitionDrift())
	require.Len(t, l.Notifications(), 1)

	_, err = l.UpdateProduct(domain.Product{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
}

func TestDeleteProduct_RemovesPartition(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 10, 1), product("p2", 3, 1)},
		locations: []domain.Location{warehouse("L1")},
		stocks: []domain.LocationStock{
			{ProductID: "p1", LocationID: "L1", Quantity: 10},
			{ProductID: "p2", LocationID: "L1", Quantity: 3},
		},
	})

	require.NoError(t, l.DeleteProduct("p1"))
	assert.Len(t, l.Products(), 1)
	assert.Equal(t, []domain.LocationStock{{ProductID: "p2", LocationID: "L1", Quantity: 3}}, l.LocationStocks(""))
	assert.ErrorIs(t, l.DeleteProduct("p1"), domain.ErrUnknownEntity)
}

func TestStockConservation(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 40, 10)},
		locations: []domain.Location{warehouse("W"), store("S")},
		stocks: []domain.LocationStock{
			{ProductID: "p1", LocationID: "W", Quantity: 25},
			{ProductID: "p1", LocationID: "S", Quantity: 15},
		},
		pos: []domain.PurchaseOrder{{
			ID: "PO-1", SupplierName: "X", Date: fixedNow, Status: domain.POPending,
			Items: []domain.PurchaseOrderItem{{ProductID: "p1", Quantity: 18}},
		}},
	})

	_, err := l.FulfillOrder(orderFor("O1", "p1", 12))
	require.NoError(t, err)
	_, err = l.FulfillOrder(orderFor("O2", "p1", 20))
	require.NoError(t, err)
	assertInvariants(t, l)
	_, err = l.ReceivePurchaseOrder("PO-1")
	require.NoError(t, err)
	_, err = l.ProcessReturn(domain.Return{OrderID: "O1", Items: []domain.ReturnItem{{ProductID: "p1", Quantity: 3, Action: domain.ActionRestock}}})
	require.NoError(t, err)
	require.NoError(t, l.WriteOffProduct("p1", 5, "expired"))
	require.NoError(t, l.TransferStock("p1", "W", "S", 2, ""))

	assert.Equal(t, 40-12-20+18+3-5, mustProduct(t, l, "p1").Stock)
	assert.Empty(t, l.PartitionDrift())
	assertInvariants(t, l)
}

func TestSubscribeReceivesCommittedEvents(t *testing.T) {
	l := newLedger(t, fixture{
		products:  []domain.Product{product("p1", 5, 10)},
		locations: []domain.Location{warehouse("L1")},
	})

	var events []domain.Event
	l.Subscribe(func(e domain.Event) { events = append(events, e) })

	_, err := l.FulfillOrder(orderFor("O1", "p1", 99))
	require.Error(t, err)
	assert.Empty(t, events)

	_, err = l.FulfillOrder(orderFor("O1", "p1", 2))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "fulfill_order", events[0].Op)
	assert.Len(t, events[0].Activities, 1)
	assert.Equal(t, fixedNow, events[0].At)
}

func TestNotificationActions(t *testing.T) {
	l := New(WithClock(func() time.Time { return fixedNow }))
	first := l.Notify("Heads up", "one", "", "")
	second := l.Notify("Heads up", "two", domain.NotificationWarning, domain.LinkProducts)

	assert.Equal(t, domain.NotificationInfo, first.Type)
	require.NoError(t, l.MarkNotificationRead(first.ID))
	assert.ErrorIs(t, l.MarkNotificationRead("missing"), domain.ErrUnknownEntity)

	notes := l.Notifications()
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.False(t, notes[0].Read)
	assert.True(t, notes[1].Read)

	assert.Equal(t, 1, l.MarkAllNotificationsRead())
	assert.Equal(t, 0, l.MarkAllNotificationsRead())

	require.NoError(t, l.DeleteNotification(first.ID))
	assert.Len(t, l.Notifications(), 1)
	assert.ErrorIs(t, l.DeleteNotification(first.ID), domain.ErrUnknownEntity)
}

func TestRestore(t *testing.T) {
	l := New()

	err := l.Restore(&domain.Snapshot{Schema: "other/v0"})
	assert.Error(t, err)

	stale := product("p1", 2, 10)
	stale.Status = domain.StatusInStock
	require.NoError(t, l.Restore(&domain.Snapshot{Schema: domain.SnapshotSchema, Products: []domain.Product{stale}}))
	assert.Equal(t, domain.StatusLowStock, mustProduct(t, l, "p1").Status)

	err = l.Restore(&domain.Snapshot{
		Schema:         domain.SnapshotSchema,
		LocationStocks: []domain.LocationStock{{ProductID: "p1", LocationID: "L1", Quantity: -1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Len(t, l.Products(), 1)
}

func TestLocationsAndSuppliers(t *testing.T) {
	l := New(WithClock(func() time.Time { return fixedNow }))

	loc, err := l.AddLocation(domain.Location{ID: "L1", Name: "Main Warehouse"})
	require.NoError(t, err)
	assert.Equal(t, domain.LocationWarehouse, loc.Type)

	_, err = l.AddLocation(domain.Location{ID: "L1", Name: "Dup"})
	assert.ErrorIs(t, err, domain.ErrDuplicateOperation)
	_, err = l.AddLocation(domain.Location{Name: "Bad", Type: "Garage"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	loc.Name = "Central Warehouse"
	_, err = l.UpdateLocation(loc)
	require.NoError(t, err)
	assert.Equal(t, "Central Warehouse", l.Locations()[0].Name)

	s, err := l.AddSupplier(domain.Supplier{Name: "Acme", Email: "sales@acme.test"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	s.Contact = "Jane"
	_, err = l.UpdateSupplier(s)
	require.NoError(t, err)
	require.NoError(t, l.DeleteSupplier(s.ID))
	assert.Empty(t, l.Suppliers())
	assert.ErrorIs(t, l.DeleteSupplier(s.ID), domain.ErrUnknownEntity)
}

func TestMutate_PanicReleasesLock(t *testing.T) {
	l := newLedger(t, fixture{products: []domain.Product{product("p1", 5, 1)}})

	assert.Panics(t, func() {
		_ = l.mutate("explode", func(tx *txn) error {
			tx.activity(domain.ActivitySystem, "never committed")
			panic("boom")
		})
	})

	assert.Empty(t, l.Activities())
	_, err := l.AddLocation(warehouse("W1"))
	require.NoError(t, err)
	assert.Len(t, l.Locations(), 1)
}

func TestTasks(t *testing.T) {
	l := newLedger(t, fixture{})
	var events []domain.Event
	l.Subscribe(func(ev domain.Event) { events = append(events, ev) })

	task, err := l.AddTask(domain.Task{Title: "Review Q3 Inventory", Assignee: "Jane Doe"})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, domain.TaskPending, task.Status)
	assert.Equal(t, startOfDay(fixedNow), task.DueDate)
	assert.Equal(t, "New task assigned: Review Q3 Inventory", l.Activities()[0].Message)
	assert.Equal(t, domain.ActivitySystem, l.Activities()[0].Type)

	_, err = l.AddTask(domain.Task{ID: task.ID, Title: "Again"})
	assert.ErrorIs(t, err, domain.ErrDuplicateOperation)
	_, err = l.AddTask(domain.Task{Title: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.AddTask(domain.Task{Title: "Odd", Priority: "Urgent"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	task.Status = domain.TaskInProgress
	task.DueDate = time.Time{}
	updated, err := l.UpdateTask(task)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, updated.Status)
	assert.Equal(t, startOfDay(fixedNow), updated.DueDate)
	assert.Len(t, l.Activities(), 1)

	_, err = l.UpdateTask(domain.Task{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)

	snap := l.Snapshot()
	require.Len(t, snap.Tasks, 1)

	require.NoError(t, l.DeleteTask(task.ID))
	assert.Empty(t, l.Tasks())
	assert.ErrorIs(t, l.DeleteTask(task.ID), domain.ErrUnknownEntity)
	assert.Len(t, events, 3)

	require.NoError(t, l.Restore(snap))
	assert.Len(t, l.Tasks(), 1)
}

func TestDismissInsight(t *testing.T) {
	l := newLedger(t, fixture{})
	var events []domain.Event
	l.Subscribe(func(ev domain.Event) { events = append(events, ev) })

	require.NoError(t, l.DismissInsight("reorder-p1"))
	require.NoError(t, l.DismissInsight(" reorder-p1 "))
	assert.ErrorIs(t, l.DismissInsight(""), domain.ErrInvalidInput)

	assert.Equal(t, []string{"reorder-p1"}, l.DismissedInsights())
	assert.Len(t, events, 1)
	assert.Empty(t, l.Activities())

	snap := l.Snapshot()
	assert.Equal(t, []string{"reorder-p1"}, snap.DismissedInsights)

	require.NoError(t, l.Restore(&domain.Snapshot{Schema: domain.SnapshotSchema}))
	assert.Empty(t, l.DismissedInsights())
	require.NoError(t, l.Restore(snap))
	assert.Equal(t, []string{"reorder-p1"}, l.DismissedInsights())
}
