package user

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts /user and the company profile routes under /users.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	for _, prefix := range []string{"/user", "/users"} {
		g := rg.Group(prefix)
		g.POST("/login", h.login)
		g.POST("/register", h.register)
	}

	a := rg.Group("/user", authMW)
	a.GET("/getInfor", h.getInfo)
	a.POST("/getInfor", h.getInfo)
	a.PUT("/update", h.update)
	a.PUT("/change-password", h.changePassword)
	a.POST("/avatar", h.avatar)

	rg.POST("/users/company/updateInfor", authMW, h.updateCompany)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	token, _, err := h.svc.Login(c.Request.Context(), dto.Account, dto.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	redirect := c.DefaultQuery("redirect", "/")
	response.OK(c, "Login successful", gin.H{"token": token, "redirect": redirect})
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	token, _, err := h.svc.Register(c.Request.Context(), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Registration successful", gin.H{"token": token})
}

func (h *Handler) getInfo(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", gin.H{"userInfor": u})
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Invalid body")
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Profile updated", gin.H{"user": u})
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c), &dto); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Password changed", nil)
}

func (h *Handler) avatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "No file uploaded")
		return
	}
	url, err := h.svc.SetAvatar(c.Request.Context(), middleware.CurrentUserID(c), fh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Avatar updated", gin.H{"avatar": url})
}

func (h *Handler) updateCompany(c *gin.Context) {
	var dto CompanyDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	var images []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		images = form.File["image"]
	}
	u, err := h.svc.UpdateCompany(c.Request.Context(), middleware.CurrentUserID(c), &dto, images)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Profile updated", gin.H{"user": u})
}
