package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/stockledger/internal/reports"
	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler manages the archive of generated AI reports.
type ReportHandler struct {
	svc *service.LedgerService
}

func NewReportHandler(svc *service.LedgerService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

type reportView struct {
	reports.Report
	SizeLabel string `json:"size_label"`
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	list, err := h.svc.Archive().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]reportView, 0, len(list))
	for _, r := range list {
		out = append(out, reportView{Report: r, SizeLabel: reports.FormatFileSize(r.Size)})
	}
	c.JSON(http.StatusOK, out)
}

type generateRequest struct {
	Title string `json:"title"`
}

func (h *ReportHandler) GenerateReport(c *gin.Context) {
	var req generateRequest
	_ = c.ShouldBindJSON(&req)

	r, result, err := h.svc.GenerateReport(c.Request.Context(), strings.TrimSpace(req.Title))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result.Message, reportView{Report: r, SizeLabel: reports.FormatFileSize(r.Size)})
}

// DownloadReport streams the stored payload. Metadata-only reports answer
// 410 since their content was never kept.
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	r, data, err := h.svc.Archive().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if data == nil {
		c.JSON(http.StatusGone, gin.H{"success": false, "message": "Report content was not stored."})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+r.Filename+`"`)
	c.Data(http.StatusOK, r.Mime, data)
}

type renameRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *ReportHandler) RenameReport(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required")
		return
	}
	if err := h.svc.Archive().Rename(c.Request.Context(), c.Param("id"), req.Title); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Report renamed.", nil)
}

func (h *ReportHandler) DeleteReport(c *gin.Context) {
	if err := h.svc.Archive().Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Report deleted.", nil)
}

func (h *ReportHandler) ClearReports(c *gin.Context) {
	if err := h.svc.Archive().Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Report log cleared.", nil)
}
