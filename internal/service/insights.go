package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/insight"
	"github.com/andresuchdata/stockledger/internal/reports"
)

const insightTrendMonths = 6

func (s *LedgerService) insightInput() insight.Input {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.ledger.Snapshot()
	c := s.calculator()
	return insight.Input{
		Products:   snap.Products,
		Orders:     snap.Orders,
		Financials: c.Financials(insightTrendMonths),
	}
}

// Insights runs every generator against the current ledger state. The ledger
// lock is only held while the input is copied.
func (s *LedgerService) Insights(ctx context.Context) (insight.Bundle, error) {
	return insight.GenerateAll(ctx, s.ai, s.insightInput())
}

func (s *LedgerService) QuickInsights(ctx context.Context) (insight.Result[insight.QuickInsights], error) {
	return s.ai.QuickInsights(ctx, s.ledger.Products())
}

// GenerateReport produces the full AI bundle and archives it as a JSON
// document.
func (s *LedgerService) GenerateReport(ctx context.Context, title string) (reports.Report, domain.OperationResult, error) {
	bundle, err := s.Insights(ctx)
	if err != nil {
		return reports.Report{}, Outcome(err, ""), err
	}

	payload, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return reports.Report{}, Outcome(err, ""), fmt.Errorf("encode report: %w", err)
	}

	now := s.ledger.Now()
	if title == "" {
		title = "AI Inventory Report " + now.Format(time.DateOnly)
	}
	filename := fmt.Sprintf("ai-report-%s.json", now.Format("20060102-150405"))
	return s.archive.SaveReport(ctx, title, filename, "application/json", payload)
}
