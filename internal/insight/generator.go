// Package insight produces AI-written inventory and financial narratives.
// Generators never touch the ledger; callers hand them a snapshot view.
package insight

import (
	"context"

	"github.com/andresuchdata/stockledger/internal/config"
	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Generator interface {
	AnalyzeInventory(ctx context.Context, products []domain.Product, orders []domain.Order) (Result[InventoryAnalysis], error)
	FinancialReport(ctx context.Context, summary domain.FinancialSummary) (Result[FinancialReport], error)
	QuickInsights(ctx context.Context, products []domain.Product) (Result[QuickInsights], error)
}

// NewGenerator returns the OpenAI generator when a key is configured and the
// mock generator otherwise.
func NewGenerator(cfg config.AIConfig) Generator {
	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, AI insights will use canned payloads")
		return NewMockGenerator()
	}
	return NewOpenAIGenerator(cfg)
}

// Input is everything GenerateAll needs from the ledger.
type Input struct {
	Products   []domain.Product
	Orders     []domain.Order
	Financials domain.FinancialSummary
}

type Bundle struct {
	Inventory Result[InventoryAnalysis] `json:"inventory"`
	Financial Result[FinancialReport]   `json:"financial"`
	Quick     Result[QuickInsights]     `json:"quick"`
}

// GenerateAll runs the three generators concurrently.
func GenerateAll(ctx context.Context, g Generator, in Input) (Bundle, error) {
	var b Bundle
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		r, err := g.AnalyzeInventory(ctx, in.Products, in.Orders)
		b.Inventory = r
		return err
	})
	eg.Go(func() error {
		r, err := g.FinancialReport(ctx, in.Financials)
		b.Financial = r
		return err
	})
	eg.Go(func() error {
		r, err := g.QuickInsights(ctx, in.Products)
		b.Quick = r
		return err
	})

	if err := eg.Wait(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}
