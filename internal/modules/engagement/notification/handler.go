package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/pkg/response"
)

type BookTourDTO struct {
	ProjectID int64  `json:"projectId" binding:"required"`
	Message   string `json:"message"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/notification", authMW)
	g.POST("/bookTour", h.bookTour)
	g.POST("/getNoti", h.list)
	g.GET("/getNoti", h.list)
	g.PATCH("/:id/read", h.markRead)
	g.POST("/read-all", h.markAllRead)
}

func (h *Handler) bookTour(c *gin.Context) {
	var dto BookTourDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	n, err := h.svc.Book(c.Request.Context(), middleware.CurrentUserID(c), dto.ProjectID, dto.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Booking request sent", gin.H{"notification": n})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListForRecipient(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, "", gin.H{"notifications": items})
}

func (h *Handler) markRead(c *gin.Context) {
	n, err := h.svc.MarkRead(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"notification": n})
}

func (h *Handler) markAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, "", gin.H{"updated": n})
}
