package user

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/handler"
	"github.com/servipro/marketplace-api/internal/middleware"
	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/service/user"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
	"github.com/servipro/marketplace-api/pkg/httputil"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the professional directory; no auth required.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/professionals", h.listProfessionals)
	r.GET("/professionals/:id", h.getProfessional)
}

// RegisterRoutes mounts the authenticated account endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.me)
	r.PUT("/me", h.update)
	r.DELETE("/me", h.deactivate)
}

func (h *Handler) me(c *gin.Context) {
	httputil.OK(c, middleware.CurrentUser(c))
}

func (h *Handler) update(c *gin.Context) {
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.Fail(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, updated)
}

func (h *Handler) deactivate(c *gin.Context) {
	if err := h.svc.Deactivate(c.Request.Context(), middleware.CurrentUser(c).ID); err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.OK(c, gin.H{"deactivated": true})
}

func (h *Handler) listProfessionals(c *gin.Context) {
	page, pageSize := handler.Pagination(c)
	filters := &model.ProfessionalFilters{
		Profession: model.ServiceCategory(c.Query("profession")),
		City:       c.Query("city"),
		Page:       page,
		PageSize:   pageSize,
	}

	professionals, total, err := h.svc.ListProfessionals(c.Request.Context(), filters)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	httputil.Paginated(c, professionals, page, pageSize, total)
}

func (h *Handler) getProfessional(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.BadRequest(c, "invalid professional id")
		return
	}

	professional, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.Fail(c, err)
		return
	}
	// The directory only exposes professional accounts.
	if professional.Role != model.UserRoleProfessional || !professional.IsActive {
		httputil.Fail(c, apperrors.NotFound("professional", nil))
		return
	}
	httputil.OK(c, professional)
}
