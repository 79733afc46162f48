package insight

import (
	"context"

	"github.com/andresuchdata/stockledger/internal/domain"
)

var mockInventoryAnalysis = InventoryAnalysis{
	HeroOverview: HeroOverview{
		Summary: "Inventory levels are generally healthy, with 85% of SKUs in stock. However, a critical shortage in the 'Electronics' category requires immediate attention to prevent lost revenue.",
	},
	StatusBreakdown: StatusBreakdown{
		InStock:    []string{"Mechanical Keyboard", "Webcam 1080p"},
		LowStock:   []string{"Ergonomic Office Chair"},
		OutOfStock: []string{"27-inch 4K Monitor"},
	},
	CriticalIssues: []CriticalIssue{
		{Name: "27-inch 4K Monitor", Stock: 0, ReorderLevel: 5, Status: "Out of Stock", Reason: "High demand item currently completely stocked out."},
	},
	ReorderPriorities: []ReorderPriority{
		{Level: "Immediate", Items: "27-inch 4K Monitor", Explanation: "Zero stock with pending backorders."},
		{Level: "High", Items: "Ergonomic Office Chair", Explanation: "Stock below reorder level (8 < 10)."},
	},
	SalesTrends: SalesTrends{
		MonthlyPerformance: []PeriodPerformance{{Period: "Last 30 Days", Details: "Strong performance in Accessories."}},
		Observations:       []string{"Webcam sales spiked 20% this month.", "Furniture category is moving slower than Q3 average."},
	},
	FinalInsights: "Prioritize restocking the 4K Monitor immediately. Consider a promotional bundle for Office Chairs to clear aging stock.",
}

var mockFinancialReport = FinancialReport{
	ExecutiveSummary: "The business is showing a healthy Gross Revenue trajectory with a stable Gross Margin of ~42%. However, Returns have ticked up slightly (5%), impacting Net Revenue. COGS management remains efficient. The primary focus for the next quarter should be optimizing the return process and clearing slow-moving inventory.",
	KeyPerformanceIndicators: KeyPerformanceIndicators{
		RevenueAnalysis:       "Gross Revenue is strong, but Returns are eroding 8% of top-line value.",
		ProfitabilityAnalysis: "Gross Profit remains healthy. Net Profit is positive but can be improved by reducing returns.",
		CostEfficiency:        "COGS is well-controlled at 58% of revenue, indicating good supplier pricing.",
	},
	StrategicRecommendations: []StrategicRecommendation{
		{Title: "Reduce Return Rate", Action: "Analyze return reasons for 'Wireless Headphones' and improve product description/packaging.", ExpectedImpact: "Recover ~₹1,500 in lost revenue monthly.", Priority: "High"},
		{Title: "Clear Slow Movers", Action: "Run a 15% discount campaign on 'USB-C Docking Station'.", ExpectedImpact: "Unlock ₹800 in tied-up working capital.", Priority: "Medium"},
		{Title: "Bulk Purchase Negotiation", Action: "Negotiate 5% discount on next 'Webcam' bulk order.", ExpectedImpact: "Improve category margin by 2%.", Priority: "Low"},
	},
	RiskAssessment: "Moderate risk associated with 'Out of Stock' high-value items (Monitors). Return rate trend warrants monitoring.",
}

var mockQuickInsights = QuickInsights{
	Tip:   "Bundle slow-moving accessories with high-demand electronics.",
	Alert: "27-inch 4K Monitor is out of stock.",
}

// noKeyQuickInsights is shown on the dashboard when no API key is configured.
var noKeyQuickInsights = QuickInsights{
	Tip:   "Add API Key for AI insights.",
	Alert: "Monitor stock manually.",
}

// MockGenerator serves canned payloads. It is used when no API key is set.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) AnalyzeInventory(ctx context.Context, products []domain.Product, orders []domain.Order) (Result[InventoryAnalysis], error) {
	if err := ctx.Err(); err != nil {
		return Result[InventoryAnalysis]{}, err
	}
	return Result[InventoryAnalysis]{Data: mockInventoryAnalysis, Source: SourceMock}, nil
}

func (m *MockGenerator) FinancialReport(ctx context.Context, summary domain.FinancialSummary) (Result[FinancialReport], error) {
	if err := ctx.Err(); err != nil {
		return Result[FinancialReport]{}, err
	}
	return Result[FinancialReport]{Data: mockFinancialReport, Source: SourceMock}, nil
}

func (m *MockGenerator) QuickInsights(ctx context.Context, products []domain.Product) (Result[QuickInsights], error) {
	if err := ctx.Err(); err != nil {
		return Result[QuickInsights]{}, err
	}
	return Result[QuickInsights]{Data: noKeyQuickInsights, Source: SourceMock}, nil
}
