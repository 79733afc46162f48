package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/gin-gonic/gin"
)

// InventoryHandler serves products, locations, suppliers and stock movements.
type InventoryHandler struct {
	svc *service.LedgerService
}

func NewInventoryHandler(svc *service.LedgerService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListProducts supports ?status= and ?category= filters.
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	category := strings.TrimSpace(c.Query("category"))

	products := h.svc.Ledger().Products()
	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if status != "" && !strings.EqualFold(string(p.Status), status) {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		filtered = append(filtered, p)
	}
	c.JSON(http.StatusOK, paginate(c, filtered))
}

func (h *InventoryHandler) GetProduct(c *gin.Context) {
	p, err := h.svc.Ledger().Product(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req domain.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid product payload")
		return
	}
	p, err := h.svc.AddProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, fmt.Sprintf("%s added to inventory.", p.Name), p)
}

func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	var req domain.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid product payload")
		return
	}
	req.ID = c.Param("id")
	p, err := h.svc.UpdateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Product updated.", p)
}

func (h *InventoryHandler) DeleteProduct(c *gin.Context) {
	if err := h.svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Product deleted.", nil)
}

func (h *InventoryHandler) ProductVelocity(c *gin.Context) {
	window := parsePositiveIntWithDefault(c.Query("window"), 30)
	v, err := h.svc.SalesVelocity(c.Param("id"), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *InventoryHandler) ListLocations(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Ledger().Locations())
}

func (h *InventoryHandler) CreateLocation(c *gin.Context) {
	var req domain.Location
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid location payload")
		return
	}
	loc, err := h.svc.AddLocation(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Location added.", loc)
}

func (h *InventoryHandler) UpdateLocation(c *gin.Context) {
	var req domain.Location
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid location payload")
		return
	}
	req.ID = c.Param("id")
	loc, err := h.svc.UpdateLocation(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Location updated.", loc)
}

func (h *InventoryHandler) DeleteLocation(c *gin.Context) {
	if err := h.svc.DeleteLocation(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Location deleted.", nil)
}

// StockPartition lists location stock entries, optionally for one product.
func (h *InventoryHandler) StockPartition(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Ledger().LocationStocks(strings.TrimSpace(c.Query("product_id"))))
}

func (h *InventoryHandler) PartitionDrift(c *gin.Context) {
	drift := h.svc.Ledger().PartitionDrift()
	if drift == nil {
		drift = []domain.PartitionDrift{}
	}
	c.JSON(http.StatusOK, drift)
}

type transferRequest struct {
	ProductID      string `json:"product_id" binding:"required"`
	FromLocationID string `json:"from_location_id" binding:"required"`
	ToLocationID   string `json:"to_location_id" binding:"required"`
	Quantity       int    `json:"quantity"`
	Reason         string `json:"reason"`
}

func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "product_id, from_location_id and to_location_id are required")
		return
	}
	err := h.svc.TransferStock(c.Request.Context(), req.ProductID, req.FromLocationID, req.ToLocationID, req.Quantity, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("Successfully transferred %d units.", req.Quantity), nil)
}

type writeOffRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

func (h *InventoryHandler) WriteOff(c *gin.Context) {
	var req writeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "product_id is required")
		return
	}
	if err := h.svc.WriteOffProduct(c.Request.Context(), req.ProductID, req.Quantity, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("Wrote off %d units.", req.Quantity), nil)
}

func (h *InventoryHandler) ListSuppliers(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Ledger().Suppliers())
}

func (h *InventoryHandler) CreateSupplier(c *gin.Context) {
	var req domain.Supplier
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid supplier payload")
		return
	}
	s, err := h.svc.AddSupplier(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Supplier added.", s)
}

func (h *InventoryHandler) UpdateSupplier(c *gin.Context) {
	var req domain.Supplier
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid supplier payload")
		return
	}
	req.ID = c.Param("id")
	s, err := h.svc.UpdateSupplier(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Supplier updated.", s)
}

func (h *InventoryHandler) DeleteSupplier(c *gin.Context) {
	if err := h.svc.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Supplier deleted.", nil)
}
