package insight

// InventoryAnalysis is the structured inventory health review.
type InventoryAnalysis struct {
	HeroOverview      HeroOverview      `json:"heroOverview"`
	StatusBreakdown   StatusBreakdown   `json:"statusBreakdown"`
	CriticalIssues    []CriticalIssue   `json:"criticalIssues"`
	ReorderPriorities []ReorderPriority `json:"reorderPriorities"`
	SalesTrends       SalesTrends       `json:"salesTrends"`
	FinalInsights     string            `json:"finalInsights"`
}

type HeroOverview struct {
	Summary string `json:"summary" jsonschema:"description=One concise paragraph on overall inventory health with specific percentages or quantities"`
}

type StatusBreakdown struct {
	InStock    []string `json:"inStock"`
	LowStock   []string `json:"lowStock"`
	OutOfStock []string `json:"outOfStock"`
}

type CriticalIssue struct {
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorderLevel"`
	Status       string `json:"status"`
	Reason       string `json:"reason"`
}

type ReorderPriority struct {
	Level       string `json:"level" jsonschema:"enum=Immediate,enum=High,enum=Moderate"`
	Items       string `json:"items"`
	Explanation string `json:"explanation"`
}

type SalesTrends struct {
	MonthlyPerformance []PeriodPerformance `json:"monthlyPerformance"`
	Observations       []string            `json:"observations"`
}

type PeriodPerformance struct {
	Period  string `json:"period"`
	Details string `json:"details"`
}

// FinancialReport is the CFO-style narrative over a FinancialSummary.
type FinancialReport struct {
	ExecutiveSummary         string                    `json:"executiveSummary"`
	KeyPerformanceIndicators KeyPerformanceIndicators  `json:"keyPerformanceIndicators"`
	StrategicRecommendations []StrategicRecommendation `json:"strategicRecommendations"`
	RiskAssessment           string                    `json:"riskAssessment"`
}

type KeyPerformanceIndicators struct {
	RevenueAnalysis       string `json:"revenueAnalysis"`
	ProfitabilityAnalysis string `json:"profitabilityAnalysis"`
	CostEfficiency        string `json:"costEfficiency"`
}

type StrategicRecommendation struct {
	Title          string `json:"title"`
	Action         string `json:"action"`
	ExpectedImpact string `json:"expectedImpact"`
	Priority       string `json:"priority" jsonschema:"enum=High,enum=Medium,enum=Low"`
}

// QuickInsights is the one-line tip and alert shown on the dashboard.
type QuickInsights struct {
	Tip   string `json:"tip" jsonschema:"description=One short actionable tip of at most 15 words"`
	Alert string `json:"alert" jsonschema:"description=One short urgent stock alert of at most 10 words"`
}

// Source tells whether a payload came from the model or the built-in fallback.
type Source string

const (
	SourceOpenAI Source = "openai"
	SourceMock   Source = "mock"
)

type Result[T any] struct {
	Data   T      `json:"data"`
	Source Source `json:"source"`
}
