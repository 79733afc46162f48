package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/gin-gonic/gin"
)

// OrderHandler serves customer orders, purchase orders and returns.
type OrderHandler struct {
	svc *service.LedgerService
}

func NewOrderHandler(svc *service.LedgerService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	orders := h.svc.Ledger().Orders()
	filtered := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && !strings.EqualFold(string(o.Status), status) {
			continue
		}
		filtered = append(filtered, o)
	}
	c.JSON(http.StatusOK, paginate(c, filtered))
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req domain.Order
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid order payload")
		return
	}
	o, err := h.svc.FulfillOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, fmt.Sprintf("Order #%s received.", o.ID), o)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	o, err := h.svc.UpdateOrderStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("Order #%s is now %s.", o.ID, o.Status), o)
}

func (h *OrderHandler) ListPurchaseOrders(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	pos := h.svc.Ledger().PurchaseOrders()
	filtered := make([]domain.PurchaseOrder, 0, len(pos))
	for _, po := range pos {
		if status != "" && !strings.EqualFold(string(po.Status), status) {
			continue
		}
		filtered = append(filtered, po)
	}
	c.JSON(http.StatusOK, paginate(c, filtered))
}

func (h *OrderHandler) CreatePurchaseOrder(c *gin.Context) {
	var req domain.PurchaseOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid purchase order payload")
		return
	}
	po, err := h.svc.AddPurchaseOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, fmt.Sprintf("Purchase Order #%s created for %s.", po.ID, po.SupplierName), po)
}

func (h *OrderHandler) ReceivePurchaseOrder(c *gin.Context) {
	po, err := h.svc.ReceivePurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("Inventory updated from PO #%s.", po.ID), po)
}

func (h *OrderHandler) DelayPurchaseOrder(c *gin.Context) {
	po, err := h.svc.MarkPurchaseOrderDelayed(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("PO #%s marked as delayed.", po.ID), po)
}

func (h *OrderHandler) CheckOverdue(c *gin.Context) {
	n, err := h.svc.CheckOverdue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("%d overdue purchase orders flagged.", n), gin.H{"raised": n})
}

func (h *OrderHandler) ListReturns(c *gin.Context) {
	c.JSON(http.StatusOK, paginate(c, h.svc.Ledger().Returns()))
}

func (h *OrderHandler) CreateReturn(c *gin.Context) {
	var req domain.Return
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid return payload")
		return
	}
	r, err := h.svc.ProcessReturn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, fmt.Sprintf("Return #%s recorded.", r.ID), r)
}

type resolveRequest struct {
	Approve bool `json:"approve"`
}

func (h *OrderHandler) ResolveReturn(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid resolve payload")
		return
	}
	r, err := h.svc.ResolveReturn(c.Request.Context(), c.Param("id"), req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("Return #%s %s.", r.ID, strings.ToLower(string(r.Status))), r)
}
