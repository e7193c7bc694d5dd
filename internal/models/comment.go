package models

// CommentModel is a comment left on a project.
type CommentModel struct {
	Base
	ProjectID int64  `json:"projectId" gorm:"not null;index"`
	UserID    int64  `json:"userId"    gorm:"not null;index"`
	Content   string `json:"content"   gorm:"type:text;not null"`
}

func (CommentModel) TableName() string { return "comments" }
