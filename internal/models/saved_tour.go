package models

// SavedTourModel marks a project as favorited by a user. Absence means not saved.
type SavedTourModel struct {
	Base
	UserID    int64 `json:"userId"    gorm:"not null;uniqueIndex:idx_saved_user_project,priority:1"`
	ProjectID int64 `json:"projectId" gorm:"not null;uniqueIndex:idx_saved_user_project,priority:2;index"`
}

func (SavedTourModel) TableName() string { return "saved_tours" }
