package catalog

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/handler"
	"github.com/servipro/marketplace-api/internal/middleware"
	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/service/catalog"
	"github.com/servipro/marketplace-api/pkg/httputil"
)

type Handler struct {
	svc *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts catalog search and detail; no auth required.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/services", h.list)
	r.GET("/services/:id", h.get)
}

// RegisterRoutes mounts the professional-facing catalog management.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/services", h.create)
	// Not nested under /services/:id to keep the route tree wildcard-free
	// at that segment.
	r.GET("/my/services", h.listMine)
	r.PUT("/services/:id", h.update)
	r.DELETE("/services/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, err)
		return
	}

	svc, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.Created(c, svc)
}

func (h *Handler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid service id")
		return
	}

	svc, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, svc)
}

func (h *Handler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid service id")
		return
	}

	var req model.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, err)
		return
	}

	svc, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, svc)
}

func (h *Handler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid service id")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, gin.H{"deleted": true})
}

func (h *Handler) list(c *gin.Context) {
	page, pageSize := handler.Pagination(c)
	filters := &model.ServiceFilters{
		Category: model.ServiceCategory(c.Query("category")),
		Query:    c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	}
	if v := c.Query("professional_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.BadRequest(c, "invalid professional_id")
			return
		}
		filters.ProfessionalID = id
	}
	if v := c.Query("min_price"); v != "" {
		filters.MinPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v := c.Query("max_price"); v != "" {
		filters.MaxPrice, _ = strconv.ParseFloat(v, 64)
	}

	services, total, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.Paginated(c, services, page, pageSize, total)
}

func (h *Handler) listMine(c *gin.Context) {
	page, pageSize := handler.Pagination(c)

	services, total, err := h.svc.ListMine(c.Request.Context(), middleware.CurrentUser(c), page, pageSize)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.Paginated(c, services, page, pageSize, total)
}
