package media

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/modules/tour/project"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/response"
)

var errNotOwner = apperr.New(apperr.Forbidden, "You do not own this project")

type DeleteImageDTO struct {
	ProjectID int64  `json:"projectId" form:"projectId" binding:"required"`
	SceneID   string `json:"sceneId"   form:"sceneId"   binding:"required"`
}

type Handler struct {
	svc              *Service
	enforceOwnership bool
}

func NewHandler(svc *Service, enforceOwnership bool) *Handler {
	return &Handler{svc: svc, enforceOwnership: enforceOwnership}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/image", authMW)
	g.POST("/sliceImage360", h.slice)
	g.POST("/deleteImage", h.deleteImage)

	rg.POST("/project/:projectId/convert", authMW, h.convert)
}

func (h *Handler) authorize(c *gin.Context, projectID int64) bool {
	p, err := h.svc.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, err)
		return false
	}
	if !project.CanModify(c, p, h.enforceOwnership) {
		response.Error(c, errNotOwner)
		return false
	}
	return true
}

func (h *Handler) slice(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.PostForm("projectId"), 10, 64)
	if err != nil || projectID <= 0 {
		response.BadRequest(c, "Invalid projectId")
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "No image uploaded")
		return
	}
	if !h.authorize(c, projectID) {
		return
	}
	scene, err := h.svc.SliceEquirect(c.Request.Context(), projectID, fh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Panorama processed", gin.H{"sceneId": scene.ID, "tilesPath": scene.TilesPath, "scene": scene})
}

func (h *Handler) convert(c *gin.Context) {
	projectID, ok := project.ParseProjectID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "No panorama uploaded")
		return
	}
	if !h.authorize(c, projectID) {
		return
	}
	scene, err := h.svc.ConvertCube(c.Request.Context(), projectID, fh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Panorama converted", gin.H{
		"projectId": projectID,
		"imageId":   scene.ID,
		"faces":     scene.CubePaths,
		"scene":     scene,
	})
}

func (h *Handler) deleteImage(c *gin.Context) {
	var dto DeleteImageDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	if !h.authorize(c, dto.ProjectID) {
		return
	}
	if err := h.svc.DeleteScene(c.Request.Context(), dto.ProjectID, dto.SceneID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Scene deleted", nil)
}
