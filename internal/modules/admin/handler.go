package admin

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/modules/tour/project"
	"github.com/panotour/core/internal/pkg/cron"
	"github.com/panotour/core/internal/pkg/pagination"
	"github.com/panotour/core/internal/pkg/response"
)

type Handler struct {
	svc   *Service
	sched *cron.Scheduler
}

func NewHandler(svc *Service, sched *cron.Scheduler) *Handler {
	return &Handler{svc: svc, sched: sched}
}

// RegisterRoutes mounts /admin behind guards, which must authenticate the
// caller and check the policy.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	g := rg.Group("/admin", guards...)
	g.GET("/users", h.listUsers)
	g.PATCH("/users/:userId", h.updateUser)
	g.DELETE("/users/:userId", h.deleteUser)
	g.GET("/projects", h.listProjects)
	g.DELETE("/projects/:projectId", h.deleteProject)
	g.POST("/projects/:projectId/lock", h.lockProject)
	g.GET("/cron", h.listJobs)
	g.POST("/cron/:name", h.runJob)
}

func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid userId")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) int64 {
	v, _ := strconv.ParseInt(c.Query(key), 10, 64)
	return v
}

func (h *Handler) listUsers(c *gin.Context) {
	typ := queryInt(c, "type")
	if typ == 0 {
		typ = queryInt(c, "userType")
	}
	f := UserFilter{
		UserID:   queryInt(c, "userId"),
		Account:  c.Query("account"),
		UserName: c.Query("userName"),
		Email:    c.Query("email"),
		Phone:    c.Query("phone"),
		Type:     int(typ),
	}
	users, pag, err := h.svc.ListUsers(c.Request.Context(), f, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, "", gin.H{"users": users, "totalCount": pag.Total}, pag)
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	var patch UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "Invalid body")
		return
	}
	u, err := h.svc.UpdateUser(c.Request.Context(), id, &patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User updated", gin.H{"user": u})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User deleted", nil)
}

func (h *Handler) listProjects(c *gin.Context) {
	f := ProjectFilter{
		ProjectID: queryInt(c, "projectId"),
		Title:     c.Query("title"),
	}
	switch c.Query("isLock") {
	case "true":
		v := true
		f.IsLock = &v
	case "false":
		v := false
		f.IsLock = &v
	}
	projects, pag, err := h.svc.ListProjects(c.Request.Context(), f, pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, "", gin.H{"projects": projects, "totalCount": pag.Total}, pag)
}

func (h *Handler) deleteProject(c *gin.Context) {
	id, ok := project.ParseProjectID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteProject(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Project deleted", nil)
}

func (h *Handler) lockProject(c *gin.Context) {
	id, ok := project.ParseProjectID(c)
	if !ok {
		return
	}
	var dto project.LockDTO
	if err := c.ShouldBindJSON(&dto); err != nil && err != io.EOF {
		response.BadRequest(c, "Invalid body")
		return
	}
	p, err := h.svc.SetLock(c.Request.Context(), id, dto.IsLock)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"isLock": p.IsLock, "project": p})
}

func (h *Handler) listJobs(c *gin.Context) {
	if h.sched == nil {
		response.OK(c, "", gin.H{"jobs": []cron.ListItem{}})
		return
	}
	response.OK(c, "", gin.H{"jobs": h.sched.List()})
}

func (h *Handler) runJob(c *gin.Context) {
	if h.sched == nil {
		response.NotFound(c, "Job not found")
		return
	}
	if err := h.sched.Run(c.Request.Context(), c.Param("name")); err != nil {
		response.NotFound(c, err.Error())
		return
	}
	response.OK(c, "Job finished", nil)
}
