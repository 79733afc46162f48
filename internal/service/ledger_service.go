package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andresuchdata/stockledger/internal/analytics"
	"github.com/andresuchdata/stockledger/internal/cache"
	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/insight"
	"github.com/andresuchdata/stockledger/internal/ledger"
	"github.com/andresuchdata/stockledger/internal/reports"
	"github.com/andresuchdata/stockledger/internal/repository"
	"github.com/andresuchdata/stockledger/internal/seed"
	"github.com/andresuchdata/stockledger/internal/storage"
	"github.com/rs/zerolog/log"
)

// LedgerService is the operation boundary in front of the ledger. Mutations
// are serialized, written through to the snapshot store and invalidate the
// analytics cache.
type LedgerService struct {
	mu      sync.RWMutex
	ledger  *ledger.Ledger
	store   repository.SnapshotStore
	cache   cache.AnalyticsCache
	params  analytics.Params
	ai      insight.Generator
	archive *reports.Archive

	changed atomic.Bool
}

type Option func(*LedgerService)

func WithCache(c cache.AnalyticsCache) Option {
	return func(s *LedgerService) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithParams(p analytics.Params) Option {
	return func(s *LedgerService) { s.params = p }
}

func WithGenerator(g insight.Generator) Option {
	return func(s *LedgerService) {
		if g != nil {
			s.ai = g
		}
	}
}

func WithArchive(a *reports.Archive) Option {
	return func(s *LedgerService) {
		if a != nil {
			s.archive = a
		}
	}
}

// NewLedgerService wires l to store. Missing collaborators fall back to the
// noop cache, the mock generator and an in-memory report archive.
func NewLedgerService(l *ledger.Ledger, store repository.SnapshotStore, opts ...Option) *LedgerService {
	if store == nil {
		store = repository.NewMemoryStore()
	}
	s := &LedgerService{
		ledger:  l,
		store:   store,
		cache:   cache.NewNoopAnalyticsCache(),
		params:  analytics.DefaultParams(),
		ai:      insight.NewMockGenerator(),
		archive: reports.NewArchive(storage.NewMemoryStorage(0)),
	}
	for _, opt := range opts {
		opt(s)
	}

	l.Subscribe(func(ev domain.Event) {
		s.changed.Store(true)
		for _, n := range ev.Notifications {
			log.Debug().Str("op", ev.Op).Str("type", string(n.Type)).Str("title", n.Title).Msg(n.Message)
		}
	})
	return s
}

func (s *LedgerService) Ledger() *ledger.Ledger {
	return s.ledger
}

func (s *LedgerService) Archive() *reports.Archive {
	return s.archive
}

// Bootstrap restores the last saved snapshot. An empty store is seeded with
// the demo dataset when seedDemo is set, otherwise the ledger starts empty.
// It reports whether the demo data was loaded.
func (s *LedgerService) Bootstrap(ctx context.Context, seedDemo bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load(ctx)
	switch {
	case err == nil:
		if err := s.ledger.Restore(snap); err != nil {
			return false, fmt.Errorf("restore snapshot: %w", err)
		}
		log.Info().
			Int("products", len(snap.Products)).
			Int("orders", len(snap.Orders)).
			Time("taken_at", snap.TakenAt).
			Msg("ledger restored from snapshot")
		return false, nil
	case !errors.Is(err, domain.ErrSnapshotNotFound):
		return false, fmt.Errorf("load snapshot: %w", err)
	}

	if !seedDemo {
		log.Info().Msg("no snapshot found, starting with an empty ledger")
		return false, nil
	}

	if err := s.ledger.Restore(seed.Snapshot(s.ledger.Now())); err != nil {
		return false, fmt.Errorf("seed demo data: %w", err)
	}
	if err := s.store.Save(ctx, s.ledger.Snapshot()); err != nil {
		return true, fmt.Errorf("save seeded snapshot: %w", err)
	}
	log.Info().Msg("ledger seeded with demo data")
	return true, nil
}

// apply runs one ledger mutation and persists the result when the ledger
// reported a change, including failure notifications. When the snapshot
// cannot be saved the ledger is rolled back to its state before fn, so the
// reported failure matches what callers observe afterwards.
func (s *LedgerService) apply(ctx context.Context, op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ledger.Snapshot()
	err := fn()
	if err != nil {
		s.raiseFailure(op, err)
		log.Warn().Err(err).Str("op", op).Msg("ledger operation rejected")
	}

	if s.changed.Swap(false) {
		if perr := s.persist(ctx, before); perr != nil {
			return errors.Join(err, perr)
		}
	}
	return err
}

// persist writes the current state through to the store. On failure the
// ledger is restored to before. The analytics cache is invalidated either
// way since the ledger moved at least once.
func (s *LedgerService) persist(ctx context.Context, before *domain.Snapshot) error {
	defer s.invalidate(ctx)

	if err := s.store.Save(ctx, s.ledger.Snapshot()); err != nil {
		log.Error().Err(err).Msg("failed to persist ledger snapshot, rolling back")
		if rerr := s.ledger.Restore(before); rerr != nil {
			log.Error().Err(rerr).Msg("ledger rollback failed")
			return errors.Join(fmt.Errorf("persist snapshot: %w", err), rerr)
		}
		s.changed.Store(false)
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

func (s *LedgerService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("analytics cache invalidation failed")
	}
}

// failureTitles lists the operations whose failures are surfaced in the
// notification feed. Transfers are absent because the ledger raises its own
// failure notice.
var failureTitles = map[string]string{
	"fulfill_order":          "Order Failed",
	"update_order_status":    "Order Update Failed",
	"process_return":         "Return Failed",
	"resolve_return":         "Return Failed",
	"write_off":              "Write-off Failed",
	"add_purchase_order":     "Purchase Order Failed",
	"receive_purchase_order": "Purchase Order Failed",
	"mark_po_delayed":        "Purchase Order Failed",
}

var failureLinks = map[string]string{
	"fulfill_order":          "/orders",
	"update_order_status":    "/orders",
	"process_return":         domain.LinkReturns,
	"resolve_return":         domain.LinkReturns,
	"write_off":              domain.LinkProducts,
	"add_purchase_order":     domain.LinkPurchaseOrders,
	"receive_purchase_order": domain.LinkPurchaseOrders,
	"mark_po_delayed":        domain.LinkPurchaseOrders,
}

func (s *LedgerService) raiseFailure(op string, err error) {
	title, ok := failureTitles[op]
	if !ok {
		return
	}
	s.ledger.Notify(title, domain.Message(err), domain.NotificationAlert, failureLinks[op])
}

// Outcome converts an operation error into the user-facing result shape.
func Outcome(err error, success string) domain.OperationResult {
	if err != nil {
		return domain.OperationResult{Success: false, Message: domain.Message(err)}
	}
	return domain.OperationResult{Success: true, Message: success}
}

// Export returns a copy of the full ledger state.
func (s *LedgerService) Export() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Snapshot()
}

// Import replaces the ledger state with snap and persists it.
func (s *LedgerService) Import(ctx context.Context, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ledger.Snapshot()
	if err := s.ledger.Restore(snap); err != nil {
		return err
	}
	s.changed.Store(false)
	return s.persist(ctx, before)
}

// CheckOverdue raises overdue purchase order warnings.
func (s *LedgerService) CheckOverdue(ctx context.Context) (int, error) {
	var raised int
	err := s.apply(ctx, "check_overdue", func() error {
		var err error
		raised, err = s.ledger.CheckOverduePurchaseOrders(s.params.OverduePOAfterDays)
		return err
	})
	return raised, err
}

// RunOverdueMonitor checks for overdue purchase orders on every tick until
// ctx is done.
func (s *LedgerService) RunOverdueMonitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := s.CheckOverdue(ctx); err != nil {
			log.Error().Err(err).Msg("overdue purchase order check failed")
		} else if n > 0 {
			log.Info().Int("raised", n).Msg("overdue purchase orders flagged")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *LedgerService) Close() error {
	return s.store.Close()
}
