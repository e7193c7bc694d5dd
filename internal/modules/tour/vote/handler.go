package vote

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/pkg/response"
)

type SubmitVoteDTO struct {
	ProjectID int64 `json:"projectId" binding:"required"`
	Rating    *int  `json:"rating"    binding:"required"`
}

type Handler struct{ ledger *Ledger }

func NewHandler(ledger *Ledger) *Handler { return &Handler{ledger: ledger} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc) {
	g := rg.Group("/vote")
	g.POST("/submit", authMW, h.submit)
	g.GET("/:projectId", optionalAuthMW, h.stats)
}

func (h *Handler) submit(c *gin.Context) {
	var dto SubmitVoteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Missing data")
		return
	}
	v, err := h.ledger.Cast(c.Request.Context(), dto.ProjectID, middleware.CurrentUserID(c), *dto.Rating)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Vote recorded", gin.H{"vote": v})
}

func (h *Handler) stats(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("projectId"), 10, 64)
	if err != nil || projectID <= 0 {
		response.BadRequest(c, "Invalid projectId")
		return
	}
	ctx := c.Request.Context()
	stats, err := h.ledger.StatsFor(ctx, projectID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	votes, err := h.ledger.Votes(ctx, projectID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	userVote, err := h.ledger.UserVote(ctx, projectID, middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	sum := stats.Summary(PolicyVoteEndpoint)
	response.OK(c, "", gin.H{
		"totalVotes":    sum.TotalVotes,
		"averageRating": sum.AverageRating,
		"distribution":  sum.Distribution,
		"votes":         votes,
		"userVote":      userVote,
	})
}
