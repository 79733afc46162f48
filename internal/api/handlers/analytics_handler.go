package handlers

import (
	"net/http"

	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the read-only metric views and AI insights.
type AnalyticsHandler struct {
	svc *service.LedgerService
}

func NewAnalyticsHandler(svc *service.LedgerService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	summary, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) GetProductAnalysis(c *gin.Context) {
	analysis, err := h.svc.ProductAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *AnalyticsHandler) GetAging(c *gin.Context) {
	items, err := h.svc.Aging(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, items))
}

func (h *AnalyticsHandler) GetReorderSuggestions(c *gin.Context) {
	items, err := h.svc.ReorderSuggestions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *AnalyticsHandler) GetSupplierPerformance(c *gin.Context) {
	rows, err := h.svc.SupplierPerformance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, rows))
}

func (h *AnalyticsHandler) GetPOAging(c *gin.Context) {
	rows, err := h.svc.OpenPurchaseOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, rows))
}

func (h *AnalyticsHandler) GetStatusSummary(c *gin.Context) {
	rows, err := h.svc.StatusSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetFinancials accepts ?months=3|6|12, defaulting to 6.
func (h *AnalyticsHandler) GetFinancials(c *gin.Context) {
	months := parsePositiveIntWithDefault(c.Query("months"), 6)
	if months > 24 {
		months = 24
	}
	summary, err := h.svc.Financials(c.Request.Context(), months)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) GetInsights(c *gin.Context) {
	bundle, err := h.svc.Insights(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

func (h *AnalyticsHandler) GetQuickInsights(c *gin.Context) {
	quick, err := h.svc.QuickInsights(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quick)
}

func (h *AnalyticsHandler) GetCopilotInsights(c *gin.Context) {
	items, err := h.svc.CopilotInsights(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *AnalyticsHandler) DismissCopilotInsight(c *gin.Context) {
	if err := h.svc.DismissCopilotInsight(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Insight dismissed.", nil)
}
