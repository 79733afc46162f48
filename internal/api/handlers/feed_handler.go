package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/gin-gonic/gin"
)

// FeedHandler serves the activity log and the notification feed.
type FeedHandler struct {
	svc *service.LedgerService
}

func NewFeedHandler(svc *service.LedgerService) *FeedHandler {
	return &FeedHandler{svc: svc}
}

func (h *FeedHandler) ListActivities(c *gin.Context) {
	c.JSON(http.StatusOK, paginate(c, h.svc.Ledger().Activities()))
}

// ListNotifications returns the feed newest first; ?unread=true keeps unread
// entries only.
func (h *FeedHandler) ListNotifications(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	notes := h.svc.Ledger().Notifications()
	out := make([]domain.Notification, 0, len(notes))
	unread := 0
	for _, n := range notes {
		if !n.Read {
			unread++
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	c.Header("X-Unread-Count", strconv.Itoa(unread))
	c.JSON(http.StatusOK, paginate(c, out))
}

type notifyRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}

func (h *FeedHandler) CreateNotification(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title and message are required")
		return
	}
	n, err := h.svc.Notify(c.Request.Context(), req.Title, req.Message, domain.NotificationType(req.Type), req.Link)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Notification added.", n)
}

func (h *FeedHandler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkNotificationRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Notification marked as read.", nil)
}

func (h *FeedHandler) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllNotificationsRead(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, fmt.Sprintf("%d notifications marked as read.", n), gin.H{"updated": n})
}

func (h *FeedHandler) DeleteNotification(c *gin.Context) {
	if err := h.svc.DeleteNotification(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Notification deleted.", nil)
}
