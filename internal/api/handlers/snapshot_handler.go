package handlers

import (
	"net/http"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/gin-gonic/gin"
)

type SnapshotHandler struct {
	svc *service.LedgerService
}

func NewSnapshotHandler(svc *service.LedgerService) *SnapshotHandler {
	return &SnapshotHandler{svc: svc}
}

func (h *SnapshotHandler) Export(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Export())
}

// Import replaces the whole ledger state with the posted snapshot.
func (h *SnapshotHandler) Import(c *gin.Context) {
	var snap domain.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		badRequest(c, "invalid snapshot payload")
		return
	}
	if err := snap.CheckSchema(); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.svc.Import(c.Request.Context(), &snap); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Snapshot imported.", gin.H{"products": len(snap.Products), "orders": len(snap.Orders)})
}
