package models

// VoteModel is one user's rating of one project. The (project_id, user_id)
// unique index makes re-votes overwrite instead of duplicate.
type VoteModel struct {
	Base
	ProjectID int64 `json:"projectId" gorm:"not null;uniqueIndex:idx_vote_project_user,priority:1"`
	UserID    int64 `json:"userId"    gorm:"not null;uniqueIndex:idx_vote_project_user,priority:2;index"`
	Rating    int   `json:"rating"    gorm:"not null"`
}

func (VoteModel) TableName() string { return "votes" }

const (
	MinRating = 1
	MaxRating = 5
)
