package message

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/handler"
	"github.com/servipro/marketplace-api/internal/middleware"
	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/service/messaging"
	"github.com/servipro/marketplace-api/pkg/httputil"
)

type Handler struct {
	svc *messaging.Service
}

func NewHandler(svc *messaging.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/messages", h.send)
	r.GET("/conversations", h.listConversations)
	r.GET("/conversations/:peer_id", h.listConversation)
	r.PUT("/conversations/:peer_id/read", h.markRead)
}

func (h *Handler) send(c *gin.Context) {
	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, err)
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.Created(c, msg)
}

func (h *Handler) listConversations(c *gin.Context) {
	summaries, err := h.svc.ListConversations(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, summaries)
}

func (h *Handler) listConversation(c *gin.Context) {
	peerID, ok := h.peerID(c)
	if !ok {
		return
	}
	page, pageSize := handler.Pagination(c)

	messages, total, err := h.svc.ListConversation(c.Request.Context(), middleware.CurrentUser(c).ID, peerID, page, pageSize)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.Paginated(c, messages, page, pageSize, total)
}

func (h *Handler) markRead(c *gin.Context) {
	peerID, ok := h.peerID(c)
	if !ok {
		return
	}

	n, err := h.svc.MarkRead(c.Request.Context(), middleware.CurrentUser(c).ID, peerID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, gin.H{"marked_read": n})
}

func (h *Handler) peerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("peer_id"))
	if err != nil {
		httputil.BadRequest(c, "invalid peer id")
		return uuid.Nil, false
	}
	return id, true
}
