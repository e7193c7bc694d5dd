package project

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/markdown"
	"github.com/panotour/core/internal/pkg/response"
)

var errNotOwner = apperr.New(apperr.Forbidden, "You do not own this project")

type Handler struct {
	svc              *Service
	enforceOwnership bool
}

func NewHandler(svc *Service, enforceOwnership bool) *Handler {
	return &Handler{svc: svc, enforceOwnership: enforceOwnership}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/project")
	g.GET("/:projectId/itinerary", h.itinerary)

	a := g.Group("", authMW)
	a.POST("/create", h.create)
	a.POST("/edit/:projectId", h.replace)
	a.PATCH("/:projectId", h.update)
	a.DELETE("/:projectId", h.delete)
}

// ParseProjectID reads the :projectId path parameter.
func ParseProjectID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("projectId"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid projectId")
		return 0, false
	}
	return id, true
}

// CanModify reports whether the caller may change p. Admins may always; other
// callers must own the project unless ownership enforcement is off.
func CanModify(c *gin.Context, p *models.ProjectModel, enforce bool) bool {
	if !enforce {
		return true
	}
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return false
	}
	return id.Role == models.RoleAdmin || id.UserID == p.OwnerUserID
}

func (h *Handler) authorize(c *gin.Context, projectID int64) bool {
	p, err := h.svc.Get(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, err)
		return false
	}
	if !CanModify(c, p, h.enforceOwnership) {
		response.Error(c, errNotOwner)
		return false
	}
	return true
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateProjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		if apperr.KindOf(err) == apperr.Conflict {
			response.BadRequest(c, apperr.MessageOf(err, "Project already exists"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, "Project created", gin.H{"project": p})
}

func (h *Handler) replace(c *gin.Context) {
	id, ok := ParseProjectID(c)
	if !ok {
		return
	}
	var dto ReplaceProjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	if !h.authorize(c, id) {
		return
	}
	p, err := h.svc.Replace(c.Request.Context(), id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Project updated", gin.H{"project": p})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := ParseProjectID(c)
	if !ok {
		return
	}
	var dto UpdateProjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Invalid body")
		return
	}
	if !h.authorize(c, id) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Project updated", gin.H{"project": p})
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := ParseProjectID(c)
	if !ok {
		return
	}
	if !h.authorize(c, id) {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Project deleted", nil)
}

func (h *Handler) itinerary(c *gin.Context) {
	id, ok := ParseProjectID(c)
	if !ok {
		return
	}
	out, err := h.renderItinerary(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"itinerary": out})
}

func (h *Handler) renderItinerary(ctx context.Context, projectID int64) (*itineraryResponse, error) {
	p, err := h.svc.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	days := make([]itineraryDay, len(p.TourSteps))
	for i, step := range p.TourSteps {
		days[i] = itineraryDay{Day: step.Day, HTML: markdown.Render(step.Content)}
	}
	return &itineraryResponse{ProjectID: p.ProjectID, Title: p.Title, Days: days}, nil
}
