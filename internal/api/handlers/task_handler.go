package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.LedgerService
}

func NewTaskHandler(svc *service.LedgerService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// ListTasks returns tasks newest first, optionally filtered by status and
// assignee.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	assignee := strings.TrimSpace(c.Query("assignee"))

	tasks := h.svc.Ledger().Tasks()
	filtered := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if status != "" && !strings.EqualFold(string(t.Status), status) {
			continue
		}
		if assignee != "" && !strings.EqualFold(t.Assignee, assignee) {
			continue
		}
		filtered = append(filtered, t)
	}
	c.JSON(http.StatusOK, paginate(c, filtered))
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req domain.Task
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid task payload")
		return
	}
	t, err := h.svc.AddTask(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Task created.", t)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req domain.Task
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid task payload")
		return
	}
	req.ID = c.Param("id")
	t, err := h.svc.UpdateTask(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Task updated.", t)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.svc.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Task deleted.", nil)
}
