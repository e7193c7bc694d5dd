package comment

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/pkg/response"
)

type CreateCommentDTO struct {
	ProjectID int64  `json:"projectId" binding:"required"`
	Content   string `json:"content"   binding:"required"`
}

type UpdateCommentDTO struct {
	Content string `json:"content" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/comment")
	g.GET("/:projectId", h.list)

	a := g.Group("", authMW)
	a.POST("/", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	cm, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), dto.ProjectID, dto.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Comment created", gin.H{"comment": cm})
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	cm, err := h.svc.Update(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), dto.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Comment updated", gin.H{"comment": cm})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Comment deleted", nil)
}

func (h *Handler) list(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("projectId"), 10, 64)
	if err != nil || projectID <= 0 {
		response.BadRequest(c, "Invalid projectId")
		return
	}
	comments, err := h.svc.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, "", gin.H{"comments": comments})
}
