package save

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/pkg/pagination"
	"github.com/panotour/core/internal/pkg/response"
)

type ToggleDTO struct {
	ProjectID int64 `json:"projectId" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/save", authMW)
	g.POST("/", h.toggle)
	g.GET("/", h.list)
	g.GET("/status/:projectId", h.status)
}

func (h *Handler) toggle(c *gin.Context) {
	var dto ToggleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	saved, err := h.svc.Toggle(c.Request.Context(), middleware.CurrentUserID(c), dto.ProjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if saved {
		response.Created(c, "Tour saved", gin.H{"saved": true})
		return
	}
	response.OK(c, "Tour removed from saved list", gin.H{"saved": false})
}

func (h *Handler) status(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("projectId"), 10, 64)
	if err != nil || projectID <= 0 {
		response.BadRequest(c, "Invalid projectId")
		return
	}
	saved, err := h.svc.Status(c.Request.Context(), middleware.CurrentUserID(c), projectID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, "", gin.H{"saved": saved})
}

func (h *Handler) list(c *gin.Context) {
	items, pag, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, "", gin.H{"listProject": items}, pag)
}
