package booking

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/handler"
	"github.com/servipro/marketplace-api/internal/middleware"
	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/service/booking"
	"github.com/servipro/marketplace-api/pkg/httputil"
)

type Handler struct {
	svc *booking.Service
}

func NewHandler(svc *booking.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/bookings", h.create)
	r.GET("/bookings", h.list)
	r.GET("/bookings/:id", h.get)
	r.PUT("/bookings/:id/status", h.updateStatus)
	r.POST("/bookings/:id/confirm", h.confirm)
	r.POST("/bookings/:id/complete", h.complete)
	r.POST("/bookings/:id/cancel", h.cancel)
}

func (h *Handler) create(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, err)
		return
	}

	b, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.Created(c, b)
}

func (h *Handler) list(c *gin.Context) {
	page, pageSize := handler.Pagination(c)
	status := model.BookingStatus(c.Query("status"))

	bookings, total, err := h.svc.List(c.Request.Context(), middleware.CurrentUser(c), status, page, pageSize)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.Paginated(c, bookings, page, pageSize, total)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.svc.Get(c.Request.Context(), id, middleware.CurrentUser(c))
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, b)
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req model.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, err)
		return
	}

	b, err := h.svc.UpdateStatus(c.Request.Context(), id, middleware.CurrentUser(c).ID, &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, b)
}

func (h *Handler) confirm(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.svc.Confirm(c.Request.Context(), id, middleware.CurrentUser(c).ID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, b)
}

func (h *Handler) complete(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	b, err := h.svc.Complete(c.Request.Context(), id, middleware.CurrentUser(c).ID)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, b)
}

func (h *Handler) cancel(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	// The reason body is optional; a bare POST cancels without one.
	var req model.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.Fail(c, err)
			return
		}
	}

	b, err := h.svc.Cancel(c.Request.Context(), id, middleware.CurrentUser(c).ID, req.Reason)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, b)
}

func (h *Handler) bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid booking id")
		return uuid.Nil, false
	}
	return id, true
}
