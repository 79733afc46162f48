package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/stockledger/internal/cache"
	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/insight"
	"github.com/andresuchdata/stockledger/internal/ledger"
	"github.com/andresuchdata/stockledger/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)

func newSeededService(t *testing.T) (*LedgerService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	l := ledger.New(ledger.WithClock(func() time.Time { return now }))
	s := NewLedgerService(l, store, WithCache(cache.NewMemoryAnalyticsCache()))

	seeded, err := s.Bootstrap(context.Background(), true)
	require.NoError(t, err)
	require.True(t, seeded)
	return s, store
}

func orderFor(productID string, qty int) domain.Order {
	return domain.Order{
		Customer: "Acme Corp",
		Items:    []domain.OrderItem{{ProductID: productID, Quantity: qty, Price: decimal.NewFromInt(10)}},
	}
}

func TestBootstrap_SeedsThenRestores(t *testing.T) {
	s, store := newSeededService(t)
	assert.Equal(t, 1, store.Saves())
	assert.Len(t, s.Ledger().Products(), 7)

	other := NewLedgerService(ledger.New(ledger.WithClock(func() time.Time { return now })), store)
	seeded, err := other.Bootstrap(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Len(t, other.Ledger().Products(), 7)
}

func TestBootstrap_EmptyWithoutSeed(t *testing.T) {
	s := NewLedgerService(ledger.New(), repository.NewMemoryStore())
	seeded, err := s.Bootstrap(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Empty(t, s.Ledger().Products())
}

type failingStore struct {
	repository.SnapshotStore
}

func (failingStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	return nil, errors.New("connection refused")
}

func TestBootstrap_LoadError(t *testing.T) {
	s := NewLedgerService(ledger.New(), failingStore{})
	_, err := s.Bootstrap(context.Background(), true)
	assert.ErrorContains(t, err, "connection refused")
}

func TestMutation_WritesThroughAndInvalidatesCache(t *testing.T) {
	s, store := newSeededService(t)
	ctx := context.Background()

	before, err := s.Dashboard(ctx)
	require.NoError(t, err)

	_, err = s.FulfillOrder(ctx, orderFor("3", 10))
	require.NoError(t, err)
	assert.Equal(t, 2, store.Saves())

	after, err := s.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.TotalUnits-10, after.TotalUnits)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	kb, ok := saved.ProductByID("3")
	require.True(t, ok)
	assert.Equal(t, 110, kb.Stock)
}

type flakyStore struct {
	*repository.MemoryStore
	failSave bool
}

func (f *flakyStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.MemoryStore.Save(ctx, snap)
}

func TestMutation_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: repository.NewMemoryStore()}
	s := NewLedgerService(ledger.New(ledger.WithClock(func() time.Time { return now })), store,
		WithCache(cache.NewMemoryAnalyticsCache()))
	_, err := s.Bootstrap(ctx, true)
	require.NoError(t, err)

	before, err := s.Dashboard(ctx)
	require.NoError(t, err)
	notes := len(s.Ledger().Notifications())
	orders := len(s.Ledger().Orders())

	store.failSave = true
	_, err = s.FulfillOrder(ctx, orderFor("3", 10))
	require.ErrorContains(t, err, "disk full")
	assert.False(t, Outcome(err, "Order placed.").Success)

	p, err := s.Ledger().Product("3")
	require.NoError(t, err)
	assert.Equal(t, 120, p.Stock)
	assert.Len(t, s.Ledger().Orders(), orders)
	assert.Len(t, s.Ledger().Notifications(), notes)
	assert.Empty(t, s.Ledger().PartitionDrift())

	after, err := s.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.TotalUnits, after.TotalUnits)

	store.failSave = false
	_, err = s.FulfillOrder(ctx, orderFor("3", 10))
	require.NoError(t, err)

	p, err = s.Ledger().Product("3")
	require.NoError(t, err)
	assert.Equal(t, 110, p.Stock, "a retry deducts once")

	after, err = s.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.TotalUnits-10, after.TotalUnits)
}

func TestImport_SaveFailureKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: repository.NewMemoryStore()}
	s := NewLedgerService(ledger.New(ledger.WithClock(func() time.Time { return now })), store)
	_, err := s.Bootstrap(ctx, true)
	require.NoError(t, err)

	store.failSave = true
	err = s.Import(ctx, &domain.Snapshot{Schema: domain.SnapshotSchema})
	require.Error(t, err)
	assert.Len(t, s.Ledger().Products(), 7)
}

func TestMutation_FailureRaisesAlert(t *testing.T) {
	s, store := newSeededService(t)
	ctx := context.Background()

	_, err := s.FulfillOrder(ctx, orderFor("4", 5))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	res := Outcome(err, "Order placed.")
	assert.False(t, res.Success)
	assert.Equal(t, "Insufficient stock: USB-C Docking Station: requested 5, available 2", res.Message)

	latest := s.Ledger().Notifications()[0]
	assert.Equal(t, "Order Failed", latest.Title)
	assert.Equal(t, domain.NotificationAlert, latest.Type)
	assert.Equal(t, res.Message, latest.Message)
	assert.Equal(t, 2, store.Saves(), "the failure notice is persisted")

	p, err := s.Ledger().Product("4")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
}

func TestTransferFailure_SingleNotice(t *testing.T) {
	s, _ := newSeededService(t)
	ctx := context.Background()
	count := len(s.Ledger().Notifications())

	err := s.TransferStock(ctx, "2", "L1", "L2", 50, "")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	notes := s.Ledger().Notifications()
	require.Len(t, notes, count+1)
	assert.Equal(t, "Transfer Failed", notes[0].Title)
}

func TestMutation_NoChangeSkipsSave(t *testing.T) {
	s, store := newSeededService(t)
	ctx := context.Background()

	err := s.DeleteProduct(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrUnknownEntity)
	assert.Equal(t, 1, store.Saves())
	assert.Equal(t, "product missing not found.", Outcome(err, "").Message)
}

func TestOutcome_Success(t *testing.T) {
	assert.Equal(t, domain.OperationResult{Success: true, Message: "Done."}, Outcome(nil, "Done."))
}

func TestExportImport(t *testing.T) {
	s, _ := newSeededService(t)
	ctx := context.Background()

	snap := s.Export()
	snap.Products = snap.Products[:1]
	snap.LocationStocks = nil

	store := repository.NewMemoryStore()
	target := NewLedgerService(ledger.New(), store)
	require.NoError(t, target.Import(ctx, snap))
	assert.Len(t, target.Ledger().Products(), 1)
	assert.Equal(t, 1, store.Saves())

	bad := s.Export()
	bad.Schema = "other/v0"
	assert.Error(t, target.Import(ctx, bad))
}

func TestCheckOverdue(t *testing.T) {
	s, _ := newSeededService(t)
	ctx := context.Background()

	_, err := s.AddPurchaseOrder(ctx, domain.PurchaseOrder{
		ID:           "PO-900",
		SupplierID:   "5",
		Date:         now.AddDate(0, 0, -10),
		Items:        []domain.PurchaseOrderItem{{ProductID: "4", Quantity: 10, UnitCost: decimal.NewFromInt(90)}},
		SupplierName: "Connex",
	})
	require.NoError(t, err)

	n, err := s.CheckOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.CheckOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGenerateReport_ArchivesBundle(t *testing.T) {
	s, _ := newSeededService(t)
	ctx := context.Background()

	r, res, err := s.GenerateReport(ctx, "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "AI Inventory Report 2025-03-10", r.Title)
	assert.Equal(t, "application/json", r.Mime)

	list, err := s.Archive().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, data, err := s.Archive().Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"source": "mock"`)
}

func TestInsights_UseGenerator(t *testing.T) {
	s, _ := newSeededService(t)
	b, err := s.Insights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, insight.SourceMock, b.Inventory.Source)
	assert.Len(t, b.Financial.Data.StrategicRecommendations, 3)
}

func TestAnalyticsViews(t *testing.T) {
	s, _ := newSeededService(t)
	ctx := context.Background()

	a, err := s.ProductAnalysis(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Wireless Headphones", a.Product.Name)

	_, err = s.ProductAnalysis(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)

	suppliers, err := s.SupplierPerformance(ctx)
	require.NoError(t, err)
	assert.Len(t, suppliers, 5)

	fin, err := s.Financials(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, fin.Trend, 3)

	_, err = s.SalesVelocity("missing", 30)
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
}

func TestCopilotInsights_DismissPersists(t *testing.T) {
	s, store := newSeededService(t)
	ctx := context.Background()

	ids := func() []string {
		insights, err := s.CopilotInsights(ctx)
		require.NoError(t, err)
		out := make([]string, 0, len(insights))
		for _, in := range insights {
			out = append(out, in.ID)
		}
		return out
	}

	assert.Contains(t, ids(), "reorder-4")
	require.NoError(t, s.DismissCopilotInsight(ctx, "reorder-4"))
	assert.NotContains(t, ids(), "reorder-4")
	assert.Contains(t, ids(), "reorder-5")

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"reorder-4"}, saved.DismissedInsights)

	assert.ErrorIs(t, s.DismissCopilotInsight(ctx, " "), domain.ErrInvalidInput)
}
