package review

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/handler"
	"github.com/servipro/marketplace-api/internal/middleware"
	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/service/review"
	"github.com/servipro/marketplace-api/pkg/httputil"
)

type Handler struct {
	svc *review.Service
}

func NewHandler(svc *review.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts review listings; ratings are public data.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/reviews", h.list)
	r.GET("/professionals/:id/reviews", h.listForProfessional)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reviews", h.create)
}

func (h *Handler) create(c *gin.Context) {
	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, err)
		return
	}

	rv, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.Created(c, rv)
}

func (h *Handler) list(c *gin.Context) {
	page, pageSize := handler.Pagination(c)
	filters := &model.ReviewFilters{Page: page, PageSize: pageSize}

	if v := c.Query("professional_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.BadRequest(c, "invalid professional_id")
			return
		}
		filters.ProfessionalID = id
	}
	if v := c.Query("service_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.BadRequest(c, "invalid service_id")
			return
		}
		filters.ServiceID = id
	}

	h.respondList(c, filters, page, pageSize)
}

func (h *Handler) listForProfessional(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid professional id")
		return
	}

	page, pageSize := handler.Pagination(c)
	h.respondList(c, &model.ReviewFilters{
		ProfessionalID: professionalID,
		Page:           page,
		PageSize:       pageSize,
	}, page, pageSize)
}

func (h *Handler) respondList(c *gin.Context, filters *model.ReviewFilters, page, pageSize int) {
	reviews, total, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.Paginated(c, reviews, page, pageSize, total)
}
