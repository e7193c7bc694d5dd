package project

import (
	"time"

	"github.com/panotour/core/internal/models"
)

// CreateProjectDTO is the full project body. ProjectID is optional on create
// and allocated when omitted.
type CreateProjectDTO struct {
	ProjectID     int64             `json:"projectId"`
	Title         string            `json:"title"         binding:"required"`
	Description   string            `json:"description"`
	DepartureCity int               `json:"departureCity"`
	DepartureDate *time.Time        `json:"departureDate"`
	CoverImage    string            `json:"coverImage"`
	Price         float64           `json:"price"`
	Sale          float64           `json:"sale"`
	IsForeign     bool              `json:"isForeign"`
	TourSteps     []models.TourStep `json:"tourSteps"`
	Scenes        []models.Scene    `json:"scenes"`
}

// ReplaceProjectDTO overwrites every editable field.
type ReplaceProjectDTO = CreateProjectDTO

// UpdateProjectDTO merges only the fields present in the request.
type UpdateProjectDTO struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	DepartureCity *int               `json:"departureCity"`
	DepartureDate *time.Time         `json:"departureDate"`
	CoverImage    *string            `json:"coverImage"`
	Price         *float64           `json:"price"`
	Sale          *float64           `json:"sale"`
	IsForeign     *bool              `json:"isForeign"`
	TourSteps     *[]models.TourStep `json:"tourSteps"`
	Scenes        *[]models.Scene    `json:"scenes"`
}

type LockDTO struct {
	IsLock *bool `json:"isLock"`
}

type itineraryDay struct {
	Day  string `json:"day"`
	HTML string `json:"html"`
}

type itineraryResponse struct {
	ProjectID int64          `json:"projectId"`
	Title     string         `json:"title"`
	Days      []itineraryDay `json:"days"`
}
