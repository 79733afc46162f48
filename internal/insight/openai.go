package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/stockledger/internal/config"
	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
	"github.com/rs/zerolog/log"
)

const recentOrderLimit = 20

// OpenAIGenerator asks the Responses API for schema-constrained JSON. Any
// failure falls back to the canned payload so callers always get a result.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIGenerator(cfg config.AIConfig, opts ...option.RequestOption) *OpenAIGenerator {
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}, opts...)
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = string(shared.ChatModelGPT4o)
	}
	return &OpenAIGenerator{
		client:  &client,
		model:   model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

func (g *OpenAIGenerator) AnalyzeInventory(ctx context.Context, products []domain.Product, orders []domain.Order) (Result[InventoryAnalysis], error) {
	type productView struct {
		Name    string             `json:"name"`
		Stock   int                `json:"stock"`
		Reorder int                `json:"reorder"`
		Status  domain.StockStatus `json:"status"`
	}
	type orderView struct {
		Date  string `json:"date"`
		Total string `json:"total"`
	}

	pv := make([]productView, 0, len(products))
	for _, p := range products {
		pv = append(pv, productView{Name: p.Name, Stock: p.Stock, Reorder: p.ReorderLevel, Status: p.Status})
	}
	ov := make([]orderView, 0, recentOrderLimit)
	for _, o := range recentOrders(orders, recentOrderLimit) {
		ov = append(ov, orderView{Date: o.Date.Format(time.DateOnly), Total: o.Total.StringFixed(2)})
	}

	prompt := fmt.Sprintf(`You are an expert Inventory Analyst. Analyze the provided inventory and order data.
Summarize overall health, list items by stock status, call out critical issues, rank reorder priorities
(Immediate, High, Moderate) and describe sales trends. Finish with one concise wrap-up paragraph on
risks and missed revenue opportunities.

Current Inventory: %s
Recent Orders: %s`, mustJSON(pv), mustJSON(ov))

	data, err := structured[InventoryAnalysis](ctx, g, "inventory_analysis", "Inventory health analysis", prompt)
	if err != nil {
		if ctx.Err() != nil {
			return Result[InventoryAnalysis]{}, ctx.Err()
		}
		log.Error().Err(err).Msg("inventory analysis failed, using fallback")
		return Result[InventoryAnalysis]{Data: mockInventoryAnalysis, Source: SourceMock}, nil
	}
	return Result[InventoryAnalysis]{Data: data, Source: SourceOpenAI}, nil
}

func (g *OpenAIGenerator) FinancialReport(ctx context.Context, summary domain.FinancialSummary) (Result[FinancialReport], error) {
	trend := summary.Trend
	if len(trend) > 6 {
		trend = trend[len(trend)-6:]
	}
	type trendView struct {
		Month  string `json:"month"`
		Rev    string `json:"rev"`
		Profit string `json:"profit"`
	}
	tv := make([]trendView, 0, len(trend))
	for _, m := range trend {
		tv = append(tv, trendView{Month: m.Month, Rev: m.Revenue.StringFixed(2), Profit: m.Profit.StringFixed(2)})
	}

	prompt := fmt.Sprintf(`You are a CFO / Financial Analyst. Analyze this financial summary. All monetary values are in Indian Rupee (INR/₹).

Metrics:
Gross Revenue: ₹%s
Returns: ₹%s
Net Revenue: ₹%s
COGS: ₹%s
Gross Profit: ₹%s
Margin: %.1f%%

Monthly Trend (Last 6 months):
%s

Give three strategic recommendations with priorities High, Medium and Low, with expected impact in INR.`,
		summary.GrossRevenue.StringFixed(2),
		summary.Returns.StringFixed(2),
		summary.NetRevenue.StringFixed(2),
		summary.COGS.StringFixed(2),
		summary.GrossProfit.StringFixed(2),
		summary.GrossMarginPct,
		mustJSON(tv))

	data, err := structured[FinancialReport](ctx, g, "financial_report", "Financial health report", prompt)
	if err != nil {
		if ctx.Err() != nil {
			return Result[FinancialReport]{}, ctx.Err()
		}
		log.Error().Err(err).Msg("financial report failed, using fallback")
		return Result[FinancialReport]{Data: mockFinancialReport, Source: SourceMock}, nil
	}
	return Result[FinancialReport]{Data: data, Source: SourceOpenAI}, nil
}

func (g *OpenAIGenerator) QuickInsights(ctx context.Context, products []domain.Product) (Result[QuickInsights], error) {
	type productView struct {
		N string `json:"n"`
		S int    `json:"s"`
		R int    `json:"r"`
	}
	pv := make([]productView, 0, len(products))
	for _, p := range products {
		pv = append(pv, productView{N: p.Name, S: p.Stock, R: p.ReorderLevel})
	}

	prompt := fmt.Sprintf(`Analyze this inventory data.
1. Provide one short, actionable tip (max 15 words) to improve efficiency.
2. Provide one short urgent alert (max 10 words) about stock levels.

Data: %s`, mustJSON(pv))

	data, err := structured[QuickInsights](ctx, g, "quick_insights", "Dashboard tip and alert", prompt)
	if err != nil {
		if ctx.Err() != nil {
			return Result[QuickInsights]{}, ctx.Err()
		}
		log.Error().Err(err).Msg("quick insights failed, using fallback")
		return Result[QuickInsights]{Data: mockQuickInsights, Source: SourceMock}, nil
	}
	return Result[QuickInsights]{Data: data, Source: SourceOpenAI}, nil
}

func structured[T any](ctx context.Context, g *OpenAIGenerator, name, description, prompt string) (T, error) {
	var out T

	schema, err := schemaFor[T]()
	if err != nil {
		return out, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(g.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        name,
					Strict:      param.NewOpt(true),
					Schema:      schema,
					Description: param.NewOpt(description),
				},
			},
		},
	}

	resp, err := g.client.Responses.New(ctx, params)
	if err != nil {
		return out, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return out, fmt.Errorf("empty response content")
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return out, fmt.Errorf("failed to parse completion: %w", err)
	}
	return out, nil
}

// schemaFor reflects T into the map form the Responses API expects.
func schemaFor[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schemaJSON, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}

func recentOrders(orders []domain.Order, limit int) []domain.Order {
	sorted := make([]domain.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
