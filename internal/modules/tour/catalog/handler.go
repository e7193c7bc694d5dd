package catalog

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/modules/tour/project"
	"github.com/panotour/core/internal/pkg/pagination"
	"github.com/panotour/core/internal/pkg/response"
)

type ListProjectDTO struct {
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
	Type  *int `json:"type"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc) {
	g := rg.Group("/project")
	g.POST("/getListProject", h.listProjects)
	g.GET("/search", h.search)
	g.GET("/mine", authMW, h.mine)
	g.GET("/:projectId", optionalAuthMW, h.detail)
}

func (h *Handler) listProjects(c *gin.Context) {
	var dto ListProjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid body")
		return
	}
	q := pagination.Query{Page: dto.Page, Size: dto.Limit}.Normalize()
	ctx := c.Request.Context()

	if dto.Type != nil {
		kind := Kind(*dto.Type)
		if kind != KindDomestic && kind != KindForeign {
			response.BadRequest(c, "type must be 0 (domestic) or 1 (foreign)")
			return
		}
		page, err := h.svc.Partition(ctx, kind, q)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.Paged(c, "", gin.H{"listProject": page.Items}, page.Pagination)
		return
	}

	domestic, foreign, err := h.svc.Split(ctx, q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, "", gin.H{
		"domesticProjects":   domestic.Items,
		"foreignProjects":    foreign.Items,
		"domesticPagination": domestic.Pagination,
		"foreignPagination":  foreign.Pagination,
	})
}

func (h *Handler) search(c *gin.Context) {
	sq := SearchQuery{Keyword: c.Query("keyword")}
	if v := c.Query("departureCity"); v != "" {
		city, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(c, "Invalid departureCity")
			return
		}
		sq.DepartureCity = &city
	}
	if v := c.Query("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.BadRequest(c, "Invalid price")
			return
		}
		sq.Price = &price
	}
	if v := c.Query("isForeign"); v != "" {
		foreign, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "Invalid isForeign")
			return
		}
		sq.IsForeign = &foreign
	}

	items, err := h.svc.Search(c.Request.Context(), sq)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, "", gin.H{"listProject": items})
}

func (h *Handler) mine(c *gin.Context) {
	page, err := h.svc.ByOwner(c.Request.Context(), middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, "", gin.H{"listProject": page.Items}, page.Pagination)
}

func (h *Handler) detail(c *gin.Context) {
	id, ok := project.ParseProjectID(c)
	if !ok {
		return
	}
	d, err := h.svc.Detail(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"project": d.Project, "vote": d.Vote, "deadLinks": d.DeadLinks})
}
