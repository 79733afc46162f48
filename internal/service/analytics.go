package service

import (
	"context"
	"strconv"

	"github.com/andresuchdata/stockledger/internal/analytics"
	"github.com/andresuchdata/stockledger/internal/cache"
	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// calculator snapshots the ledger for one analytics computation.
func (s *LedgerService) calculator() *analytics.Calculator {
	return analytics.NewCalculator(s.ledger.Snapshot(), s.ledger.Now(), s.params)
}

// cached serves q from the analytics cache, computing and storing it on a
// miss. The read lock keeps a mutation from landing between compute and set.
func cached[T any](ctx context.Context, s *LedgerService, q cache.Query, compute func(*analytics.Calculator) (T, error)) (T, error) {
	var out T
	if hit, err := s.cache.Get(ctx, q, &out); err == nil && hit {
		return out, nil
	} else if err != nil {
		log.Warn().Err(err).Str("view", q.View).Msg("analytics: cache get failed")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out, err := compute(s.calculator())
	if err != nil {
		return out, err
	}
	if err := s.cache.Set(ctx, q, out); err != nil {
		log.Warn().Err(err).Str("view", q.View).Msg("analytics: cache set failed")
	}
	return out, nil
}

func (s *LedgerService) Dashboard(ctx context.Context) (domain.DashboardSummary, error) {
	return cached(ctx, s, cache.Query{View: "dashboard"}, func(c *analytics.Calculator) (domain.DashboardSummary, error) {
		return c.Dashboard(), nil
	})
}

func (s *LedgerService) ProductAnalysis(ctx context.Context, productID string) (domain.ProductAnalysis, error) {
	q := cache.Query{View: "product_analysis", Params: map[string]string{"product_id": productID}}
	return cached(ctx, s, q, func(c *analytics.Calculator) (domain.ProductAnalysis, error) {
		return c.ProductAnalysis(productID)
	})
}

func (s *LedgerService) Aging(ctx context.Context) ([]domain.AgingItem, error) {
	return cached(ctx, s, cache.Query{View: "aging"}, func(c *analytics.Calculator) ([]domain.AgingItem, error) {
		return c.Aging(), nil
	})
}

func (s *LedgerService) ReorderSuggestions(ctx context.Context) ([]domain.ReorderSuggestion, error) {
	return cached(ctx, s, cache.Query{View: "reorder"}, func(c *analytics.Calculator) ([]domain.ReorderSuggestion, error) {
		return c.ReorderSuggestions(), nil
	})
}

func (s *LedgerService) SupplierPerformance(ctx context.Context) ([]domain.SupplierPerformance, error) {
	return cached(ctx, s, cache.Query{View: "suppliers"}, func(c *analytics.Calculator) ([]domain.SupplierPerformance, error) {
		return c.SupplierPerformance(), nil
	})
}

func (s *LedgerService) OpenPurchaseOrders(ctx context.Context) ([]domain.POAging, error) {
	return cached(ctx, s, cache.Query{View: "po_aging"}, func(c *analytics.Calculator) ([]domain.POAging, error) {
		return c.OpenPurchaseOrders(), nil
	})
}

func (s *LedgerService) StatusSummary(ctx context.Context) ([]domain.StockStatusSummary, error) {
	return cached(ctx, s, cache.Query{View: "status_summary"}, func(c *analytics.Calculator) ([]domain.StockStatusSummary, error) {
		return c.StatusSummary(), nil
	})
}

func (s *LedgerService) Financials(ctx context.Context, months int) (domain.FinancialSummary, error) {
	q := cache.Query{View: "financials", Params: map[string]string{"months": strconv.Itoa(months)}}
	return cached(ctx, s, q, func(c *analytics.Calculator) (domain.FinancialSummary, error) {
		return c.Financials(months), nil
	})
}

// CopilotInsights honours the dismissals recorded in the ledger.
func (s *LedgerService) CopilotInsights(ctx context.Context) ([]domain.CopilotInsight, error) {
	return cached(ctx, s, cache.Query{View: "copilot"}, func(c *analytics.Calculator) ([]domain.CopilotInsight, error) {
		return c.CopilotInsights(), nil
	})
}

// SalesVelocity is computed on demand; the window is caller-chosen.
func (s *LedgerService) SalesVelocity(productID string, windowDays int) (domain.SalesVelocity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.ledger.Product(productID); err != nil {
		return domain.SalesVelocity{}, err
	}
	return s.calculator().SalesVelocity(productID, windowDays), nil
}
